// Package config defines the engine's configuration surface and the
// providers that load it. Policy constants (tax rate, drying cutoffs,
// class boundaries, sizing factors) live here so deployments can tune
// them without a rebuild; every value has a shipped default.
package config

// ConfigProvider defines the interface for configuration data sources.
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure.
type ConfigData struct {
	Engine  EngineData      `json:"engine"`
	Catalog CatalogData     `json:"catalog,omitempty"`
	REST    *RESTServerData `json:"rest,omitempty"`
	Logging LoggingData     `json:"logging,omitempty"`
}

// EngineData holds the policy constants for the computation pipeline.
type EngineData struct {
	TaxRate           float64            `json:"tax_rate,omitempty"`
	TargetMarginRatio float64            `json:"target_margin_ratio,omitempty"`
	ContactPhone      string             `json:"contact_phone,omitempty"`
	ContactEmail      string             `json:"contact_email,omitempty"`
	Drying            DryingData         `json:"drying,omitempty"`
	Classification    ClassificationData `json:"classification,omitempty"`
	Sizing            SizingData         `json:"sizing,omitempty"`
	Labor             LaborData          `json:"labor,omitempty"`
}

// DryingData holds the drying-index cutoffs.
type DryingData struct {
	FullScaleGPP       float64 `json:"full_scale_gpp,omitempty"`
	ClosedSystemFactor float64 `json:"closed_system_factor,omitempty"`
	GoodThreshold      int     `json:"good_threshold,omitempty"`
	FairThreshold      int     `json:"fair_threshold,omitempty"`
}

// ClassificationData holds the class-boundary policy. The exact ratio
// cutoffs between Class 1/2/3 are product policy, deliberately
// configuration rather than literals.
type ClassificationData struct {
	Class2Ratio       float64 `json:"class2_ratio,omitempty"`
	Class3Ratio       float64 `json:"class3_ratio,omitempty"`
	AutoEscalateHours float64 `json:"auto_escalate_hours,omitempty"`
}

// SizingData holds the equipment sizing factors.
type SizingData struct {
	CapacityPerM3ByClass  map[int]float64 `json:"capacity_per_m3_by_class,omitempty"`
	AirflowPerM2          float64         `json:"airflow_per_m2,omitempty"`
	MaxUnitsPerEntry      int             `json:"max_units_per_entry,omitempty"`
	BaseDryingDaysByClass map[int]int     `json:"base_drying_days_by_class,omitempty"`
}

// LaborData holds the standing labor and fee rates used to assemble cost
// line items.
type LaborData struct {
	HourlyRateCents         int64 `json:"hourly_rate_cents,omitempty"`
	CalloutFeeCents         int64 `json:"callout_fee_cents,omitempty"`
	TreatmentRateCentsPerM2 int64 `json:"treatment_rate_cents_per_m2,omitempty"`
}

// CatalogData describes where the equipment catalog comes from.
type CatalogData struct {
	// Backend is "postgres", "sqlite", or "static" (built-in reference
	// catalog). Defaults to static.
	Backend          string `json:"backend,omitempty"`
	ConnectionString string `json:"connection_string,omitempty"`
	SQLitePath       string `json:"sqlite_path,omitempty"`
	RefreshMinutes   int    `json:"refresh_minutes,omitempty"`
}

// RESTServerData holds the configuration for the HTTP adapter.
type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	HTTPPort   int    `json:"http_port,omitempty"`
}

// LoggingData holds the optional rotating-file log sink settings.
type LoggingData struct {
	FilePath   string `json:"file_path,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
}

// ApplyDefaults fills every unset value with the shipped default.
func (c *ConfigData) ApplyDefaults() {
	if c.Engine.TaxRate == 0 {
		c.Engine.TaxRate = 0.10
	}
	if c.Engine.TargetMarginRatio == 0 {
		c.Engine.TargetMarginRatio = 0.35
	}
	if c.Engine.Drying.FullScaleGPP == 0 {
		c.Engine.Drying.FullScaleGPP = 80.0
	}
	if c.Engine.Drying.ClosedSystemFactor == 0 {
		c.Engine.Drying.ClosedSystemFactor = 0.85
	}
	if c.Engine.Drying.GoodThreshold == 0 {
		c.Engine.Drying.GoodThreshold = 60
	}
	if c.Engine.Drying.FairThreshold == 0 {
		c.Engine.Drying.FairThreshold = 30
	}
	if c.Engine.Classification.Class2Ratio == 0 {
		c.Engine.Classification.Class2Ratio = 0.30
	}
	if c.Engine.Classification.Class3Ratio == 0 {
		c.Engine.Classification.Class3Ratio = 0.85
	}
	if c.Engine.Classification.AutoEscalateHours == 0 {
		c.Engine.Classification.AutoEscalateHours = 72
	}
	if len(c.Engine.Sizing.CapacityPerM3ByClass) == 0 {
		c.Engine.Sizing.CapacityPerM3ByClass = map[int]float64{1: 3.0, 2: 4.5, 3: 5.5, 4: 7.0}
	}
	if c.Engine.Sizing.AirflowPerM2 == 0 {
		c.Engine.Sizing.AirflowPerM2 = 300.0
	}
	if c.Engine.Sizing.MaxUnitsPerEntry == 0 {
		c.Engine.Sizing.MaxUnitsPerEntry = 20
	}
	if len(c.Engine.Sizing.BaseDryingDaysByClass) == 0 {
		c.Engine.Sizing.BaseDryingDaysByClass = map[int]int{1: 2, 2: 3, 3: 5, 4: 7}
	}
	if c.Engine.Labor.HourlyRateCents == 0 {
		c.Engine.Labor.HourlyRateCents = 9500
	}
	if c.Engine.Labor.CalloutFeeCents == 0 {
		c.Engine.Labor.CalloutFeeCents = 15000
	}
	if c.Engine.Labor.TreatmentRateCentsPerM2 == 0 {
		c.Engine.Labor.TreatmentRateCentsPerM2 = 450
	}
	if c.Catalog.Backend == "" {
		c.Catalog.Backend = "static"
	}
	if c.Catalog.RefreshMinutes == 0 {
		c.Catalog.RefreshMinutes = 15
	}
}
