// Package engine orchestrates the assessment pipeline: normalization,
// psychrometrics, classification, equipment selection, and costing run
// synchronously per assessment, failing fast on the first error. The
// engine is pure computation; it owns no persistence and no I/O beyond
// reading the cached catalog snapshot.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfairbank/restocalc/internal/catalog"
	"github.com/mfairbank/restocalc/internal/selector"
	"github.com/mfairbank/restocalc/internal/types"
	"github.com/mfairbank/restocalc/pkg/config"
	"github.com/mfairbank/restocalc/pkg/costing"
	"github.com/mfairbank/restocalc/pkg/iicrc"
	"github.com/mfairbank/restocalc/pkg/psychro"
	"github.com/mfairbank/restocalc/pkg/units"
	"go.uber.org/zap"
)

// CatalogSource provides the current equipment catalog snapshot. Both
// catalog.Store and test fixtures satisfy it.
type CatalogSource interface {
	Snapshot() []catalog.Entry
}

// Input is the raw bundle a caller submits for one assessment.
type Input struct {
	AssessmentID    uuid.UUID                  `json:"assessment_id,omitempty"`
	SiteAddress     string                     `json:"site_address,omitempty"`
	Areas           []units.RawArea            `json:"areas"`
	Ambient         types.PsychrometricReading `json:"ambient"`
	Exposure        types.WaterExposureFacts   `json:"exposure"`
	LaborHours      float64                    `json:"labor_hours,omitempty"`
	ExtraLineItems  []costing.LineInput        `json:"extra_line_items,omitempty"`
	ManualSelection *types.EquipmentSelection  `json:"manual_selection,omitempty"`
}

// Engine runs the assessment pipeline with a fixed policy set.
type Engine struct {
	cfg     config.EngineData
	catalog CatalogSource
	logger  *zap.SugaredLogger

	dryingPolicy   psychro.Policy
	classPolicy    iicrc.Policy
	selectorPolicy selector.Policy
}

// New creates an engine from loaded configuration and a catalog source.
func New(cfg config.EngineData, source CatalogSource, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		cfg:     cfg,
		catalog: source,
		logger:  logger,
		dryingPolicy: psychro.Policy{
			FullScaleGPP:       cfg.Drying.FullScaleGPP,
			ClosedSystemFactor: cfg.Drying.ClosedSystemFactor,
			GoodThreshold:      cfg.Drying.GoodThreshold,
			FairThreshold:      cfg.Drying.FairThreshold,
		},
		classPolicy: iicrc.Policy{
			Class2Ratio:       cfg.Classification.Class2Ratio,
			Class3Ratio:       cfg.Classification.Class3Ratio,
			AutoEscalateHours: cfg.Classification.AutoEscalateHours,
		},
		selectorPolicy: selector.Policy{
			CapacityPerM3ByClass:  cfg.Sizing.CapacityPerM3ByClass,
			AirflowPerM2:          cfg.Sizing.AirflowPerM2,
			MaxUnitsPerEntry:      cfg.Sizing.MaxUnitsPerEntry,
			BaseDryingDaysByClass: cfg.Sizing.BaseDryingDaysByClass,
		},
	}
}

// Run executes the full pipeline on one raw input bundle. The first stage
// to fail aborts the rest; no partial assessment is returned.
func (e *Engine) Run(ctx context.Context, in Input) (*types.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	areas, err := units.NormalizeAll(in.Areas)
	if err != nil {
		return nil, err
	}

	id := in.AssessmentID
	if id == uuid.Nil {
		id = uuid.New()
	}

	a := &types.Assessment{
		ID:          id,
		SiteAddress: in.SiteAddress,
		Areas:       areas,
		Ambient:     in.Ambient,
		Exposure:    in.Exposure,
		CreatedAt:   time.Now().UTC(),
	}

	psych, err := psychro.Calculate(in.Ambient, e.dryingPolicy)
	if err != nil {
		return nil, err
	}
	a.Psychrometrics = psych

	classification, err := iicrc.Classify(in.Exposure, a.AffectedAreaRatio(), e.classPolicy)
	if err != nil {
		return nil, err
	}
	a.Classification = classification

	req := selector.ComputeRequirements(a, e.selectorPolicy)

	if in.ManualSelection != nil {
		sel := *in.ManualSelection
		sel.Lines = append([]types.SelectionLine(nil), in.ManualSelection.Lines...)
		sel.Override = true
		if err := selector.ValidateOverride(&sel, e.catalog.Snapshot(), req, e.selectorPolicy); err != nil {
			return nil, err
		}
		a.Equipment = &sel
		if sel.UnderProvisioned {
			a.Warnings = append(a.Warnings, types.Warning{
				Code: types.WarnOverrideConflict,
				Message: fmt.Sprintf(
					"manual equipment selection provides %.1f L/day and %.0f CFM against floors of %.1f L/day and %.0f CFM",
					sel.TotalCapacityLPD, sel.TotalAirflowCFM, req.CapacityLPD, req.AirflowCFM),
			})
			e.logger.Warnw("manual equipment override under-provisioned",
				"assessment", a.ID, "capacity", sel.TotalCapacityLPD, "required", req.CapacityLPD)
		}
	} else {
		sel, err := selector.Select(e.catalog.Snapshot(), req, e.selectorPolicy)
		if err != nil {
			return nil, err
		}
		a.Equipment = sel
	}

	summary, err := costing.Summarize(e.assembleLineItems(a, in), e.cfg.TaxRate)
	if err != nil {
		return nil, err
	}
	a.Costs = summary

	e.logger.Infow("assessment computed",
		"assessment", a.ID,
		"category", a.Classification.Category,
		"class", a.Classification.Class,
		"drying_index", a.Psychrometrics.DryingIndex,
		"equipment_daily_cents", a.Equipment.TotalDailyCostCents,
		"total_inc_tax_cents", a.Costs.TotalIncTaxCents,
	)

	return a, nil
}

// assembleLineItems builds the standard cost lines: labor, equipment hire
// over the drying duration, antimicrobial treatment for contaminated
// categories, the callout fee, and any caller-supplied extras.
func (e *Engine) assembleLineItems(a *types.Assessment, in Input) []costing.LineInput {
	var items []costing.LineInput

	if in.LaborHours > 0 {
		items = append(items, costing.LineInput{
			Category:      types.CostLabor,
			Description:   "Technician labor",
			Quantity:      in.LaborHours,
			UnitRateCents: e.cfg.Labor.HourlyRateCents,
		})
	}

	days := a.Equipment.EstimatedDryingDays
	if days < 1 {
		days = 1
	}
	for _, line := range a.Equipment.Lines {
		items = append(items, costing.LineInput{
			Category:      types.CostEquipment,
			Description:   fmt.Sprintf("%s hire, %d day(s)", line.Name, days),
			Quantity:      float64(line.Quantity * days),
			UnitRateCents: line.DailyRateCents,
		})
	}

	if a.Classification.Category >= 2 {
		items = append(items, costing.LineInput{
			Category:      types.CostTreatment,
			Description:   "Antimicrobial treatment of affected surfaces",
			Quantity:      a.TotalAffectedFloorArea(),
			UnitRateCents: e.cfg.Labor.TreatmentRateCentsPerM2,
		})
	}

	items = append(items, costing.LineInput{
		Category:      types.CostFee,
		Description:   "Attendance and assessment fee",
		Quantity:      1,
		UnitRateCents: e.cfg.Labor.CalloutFeeCents,
	})

	items = append(items, in.ExtraLineItems...)
	return items
}

// Recompute reruns the derived stages of an existing assessment in place,
// for example after a catalog refresh. Frozen assessments are refused; a
// manual equipment override is never replaced, only revalidated.
func (e *Engine) Recompute(ctx context.Context, a *types.Assessment) error {
	if a.Frozen {
		return fmt.Errorf("assessment %s is frozen; recomputation is not permitted", a.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	psych, err := psychro.Calculate(a.Ambient, e.dryingPolicy)
	if err != nil {
		return err
	}
	a.Psychrometrics = psych

	classification, err := iicrc.Classify(a.Exposure, a.AffectedAreaRatio(), e.classPolicy)
	if err != nil {
		return err
	}
	a.Classification = classification

	req := selector.ComputeRequirements(a, e.selectorPolicy)

	a.Warnings = nil
	if a.Equipment != nil && a.Equipment.Override {
		if err := selector.ValidateOverride(a.Equipment, e.catalog.Snapshot(), req, e.selectorPolicy); err != nil {
			return err
		}
		if a.Equipment.UnderProvisioned {
			a.Warnings = append(a.Warnings, types.Warning{
				Code: types.WarnOverrideConflict,
				Message: fmt.Sprintf(
					"manual equipment selection provides %.1f L/day and %.0f CFM against floors of %.1f L/day and %.0f CFM",
					a.Equipment.TotalCapacityLPD, a.Equipment.TotalAirflowCFM, req.CapacityLPD, req.AirflowCFM),
			})
		}
	} else {
		sel, err := selector.Select(e.catalog.Snapshot(), req, e.selectorPolicy)
		if err != nil {
			return err
		}
		a.Equipment = sel
	}

	return nil
}

// Finalize freezes the assessment. Derived fields can no longer change;
// only the view projector may read it from here on.
func (e *Engine) Finalize(a *types.Assessment) {
	a.Frozen = true
}
