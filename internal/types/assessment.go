// Package types contains the shared domain types for the assessment engine:
// the Assessment aggregate and the structures computed by each pipeline stage.
package types

import (
	"time"

	"github.com/google/uuid"
)

// SystemType describes the air handling regime of the drying chamber.
// Closed systems recirculate air and have less drying headroom than open ones.
type SystemType string

const (
	SystemOpen   SystemType = "open"
	SystemClosed SystemType = "closed"
)

// WaterSource enumerates the declared origin of the water intrusion.
type WaterSource string

const (
	SourceCleanSupply       WaterSource = "clean_supply"
	SourceApplianceOverflow WaterSource = "appliance_overflow"
	SourceGreywater         WaterSource = "greywater"
	SourceSewage            WaterSource = "sewage"
	SourceRisingFlood       WaterSource = "rising_flood"
	SourceStormIngress      WaterSource = "storm_ingress"
)

// MeasurementSet holds the canonical metric measurements for one inspection
// area. All lengths are metres, areas m², volumes m³. Derived fields are
// computed by the normalizer and never entered by hand.
type MeasurementSet struct {
	Label             string  `json:"label"`
	Length            float64 `json:"length_m"`
	Width             float64 `json:"width_m"`
	Height            float64 `json:"height_m"`
	WetPercentage     float64 `json:"wet_percentage"`
	FloorArea         float64 `json:"floor_area_m2"`
	Volume            float64 `json:"volume_m3"`
	AffectedFloorArea float64 `json:"affected_floor_area_m2"`
	AffectedVolume    float64 `json:"affected_volume_m3"`
}

// PsychrometricReading is the single ambient condition recorded for the
// assessment. One reading per assessment; read-only after data entry.
type PsychrometricReading struct {
	TemperatureC     float64    `json:"temperature_c"`
	RelativeHumidity float64    `json:"relative_humidity"`
	System           SystemType `json:"system"`
}

// DryingStatus is the verdict band derived from the drying index.
type DryingStatus string

const (
	DryingGood DryingStatus = "GOOD"
	DryingFair DryingStatus = "FAIR"
	DryingPoor DryingStatus = "POOR"
)

// PsychrometricResult carries the derived psychrometric quantities and the
// drying-potential verdict.
type PsychrometricResult struct {
	DewPointC        float64      `json:"dew_point_c"`
	VaporPressureHPa float64      `json:"vapor_pressure_hpa"`
	VaporDeficitHPa  float64      `json:"vapor_deficit_hpa"`
	GPP              float64      `json:"gpp"`
	GPPDepression    float64      `json:"gpp_depression"`
	DryingIndex      int          `json:"drying_index"`
	Status           DryingStatus `json:"status"`
	Recommendation   string       `json:"recommendation"`
}

// WaterExposureFacts records what is known about the water event itself.
// Immutable once classification has run.
type WaterExposureFacts struct {
	Sources                     []WaterSource `json:"sources"`
	SourceDescription           string        `json:"source_description"`
	HoursSinceLoss              float64       `json:"hours_since_loss"`
	StandingWater               bool          `json:"standing_water"`
	CleanSourceVerified         bool          `json:"clean_source_verified"`
	SewageObserved              bool          `json:"sewage_observed"`
	SpecialtyMaterialsSaturated bool          `json:"specialty_materials_saturated"`
	PreSeventiesConstruction    bool          `json:"pre_seventies_construction"`
}

// Classification is the derived IICRC water category and class. It is
// regenerated from its inputs whenever they change and never hand-edited.
type Classification struct {
	Category  int      `json:"category"` // 1..3, contamination level
	Class     int      `json:"class"`    // 1..4, evaporation load
	Rationale []string `json:"rationale"`
}

// SelectionLine pairs a catalog entry with a chosen quantity.
type SelectionLine struct {
	CatalogEntryID string  `json:"catalog_entry_id"`
	Name           string  `json:"name"`
	Group          string  `json:"group"`
	Quantity       int     `json:"quantity"`
	CapacityLPD    float64 `json:"capacity_lpd"`
	AirflowCFM     float64 `json:"airflow_cfm"`
	DailyRateCents int64   `json:"daily_rate_cents"`
	AmpDraw        float64 `json:"amp_draw"`
}

// EquipmentSelection is the equipment loadout for one assessment. Override
// marks a manual, human-entered selection; recomputation must never replace
// an override, only flag it when it fails the capacity check.
type EquipmentSelection struct {
	Lines               []SelectionLine `json:"lines"`
	TotalDailyCostCents int64           `json:"total_daily_cost_cents"`
	TotalAmpDraw        float64         `json:"total_amp_draw"`
	TotalCapacityLPD    float64         `json:"total_capacity_lpd"`
	TotalAirflowCFM     float64         `json:"total_airflow_cfm"`
	EstimatedDryingDays int             `json:"estimated_drying_days"`
	Override            bool            `json:"override"`
	UnderProvisioned    bool            `json:"under_provisioned,omitempty"`
}

// CostCategory buckets a cost line item.
type CostCategory string

const (
	CostLabor     CostCategory = "labor"
	CostEquipment CostCategory = "equipment"
	CostMaterial  CostCategory = "material"
	CostTreatment CostCategory = "treatment"
	CostFee       CostCategory = "fee"
)

// CostLineItem is a single priced line. LineTotalCents is rounded at line
// level; sums over lines are exact integer arithmetic.
type CostLineItem struct {
	Category       CostCategory `json:"category"`
	Description    string       `json:"description"`
	Quantity       float64      `json:"quantity"`
	UnitRateCents  int64        `json:"unit_rate_cents"`
	LineTotalCents int64        `json:"line_total_cents"`
}

// CostSummary aggregates line items with a single terminal tax rounding.
type CostSummary struct {
	Items              []CostLineItem         `json:"items"`
	CategoryTotals     map[CostCategory]int64 `json:"category_totals"`
	SubtotalExTaxCents int64                  `json:"subtotal_ex_tax_cents"`
	TaxRate            float64                `json:"tax_rate"`
	TaxAmountCents     int64                  `json:"tax_amount_cents"`
	TotalIncTaxCents   int64                  `json:"total_inc_tax_cents"`
}

// Warning is a non-fatal condition attached to an assessment. It travels
// with the assessment into every stakeholder view.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WarnOverrideConflict flags a manual equipment override that no longer
// meets the computed capacity or airflow requirement.
const WarnOverrideConflict = "OVERRIDE_CONFLICT"

// Assessment is the aggregate root. It owns one measurement collection, one
// psychrometric reading, one set of exposure facts, and the derived results
// of each pipeline stage. Once frozen no derived field may be recomputed;
// only the view projector may still read it.
type Assessment struct {
	ID             uuid.UUID             `json:"id"`
	SiteAddress    string                `json:"site_address,omitempty"`
	Areas          []MeasurementSet      `json:"areas"`
	Ambient        PsychrometricReading  `json:"ambient"`
	Exposure       WaterExposureFacts    `json:"exposure"`
	Psychrometrics PsychrometricResult   `json:"psychrometrics"`
	Classification Classification        `json:"classification"`
	Equipment      *EquipmentSelection   `json:"equipment,omitempty"`
	Costs          *CostSummary          `json:"costs,omitempty"`
	Warnings       []Warning             `json:"warnings,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	Frozen         bool                  `json:"frozen"`
}

// TotalFloorArea sums the floor area over all measured areas.
func (a *Assessment) TotalFloorArea() float64 {
	var sum float64
	for i := range a.Areas {
		sum += a.Areas[i].FloorArea
	}
	return sum
}

// TotalAffectedFloorArea sums the wet-weighted floor area over all areas.
func (a *Assessment) TotalAffectedFloorArea() float64 {
	var sum float64
	for i := range a.Areas {
		sum += a.Areas[i].AffectedFloorArea
	}
	return sum
}

// TotalAffectedVolume sums the wet-weighted volume over all areas.
func (a *Assessment) TotalAffectedVolume() float64 {
	var sum float64
	for i := range a.Areas {
		sum += a.Areas[i].AffectedVolume
	}
	return sum
}

// AffectedAreaRatio is the aggregate wet fraction of the measured floor
// area, the main driver of the evaporation-load class.
func (a *Assessment) AffectedAreaRatio() float64 {
	total := a.TotalFloorArea()
	if total == 0 {
		return 0
	}
	return a.TotalAffectedFloorArea() / total
}

// HasWarning reports whether a warning with the given code is attached.
func (a *Assessment) HasWarning(code string) bool {
	for _, w := range a.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
