package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files.
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into a temporary struct with YAML tags
	var yamlConfig struct {
		Engine struct {
			TaxRate           float64 `yaml:"tax_rate,omitempty"`
			TargetMarginRatio float64 `yaml:"target_margin_ratio,omitempty"`
			ContactPhone      string  `yaml:"contact_phone,omitempty"`
			ContactEmail      string  `yaml:"contact_email,omitempty"`
			Drying            struct {
				FullScaleGPP       float64 `yaml:"full_scale_gpp,omitempty"`
				ClosedSystemFactor float64 `yaml:"closed_system_factor,omitempty"`
				GoodThreshold      int     `yaml:"good_threshold,omitempty"`
				FairThreshold      int     `yaml:"fair_threshold,omitempty"`
			} `yaml:"drying,omitempty"`
			Classification struct {
				Class2Ratio       float64 `yaml:"class2_ratio,omitempty"`
				Class3Ratio       float64 `yaml:"class3_ratio,omitempty"`
				AutoEscalateHours float64 `yaml:"auto_escalate_hours,omitempty"`
			} `yaml:"classification,omitempty"`
			Sizing struct {
				CapacityPerM3ByClass  map[int]float64 `yaml:"capacity_per_m3_by_class,omitempty"`
				AirflowPerM2          float64         `yaml:"airflow_per_m2,omitempty"`
				MaxUnitsPerEntry      int             `yaml:"max_units_per_entry,omitempty"`
				BaseDryingDaysByClass map[int]int     `yaml:"base_drying_days_by_class,omitempty"`
			} `yaml:"sizing,omitempty"`
			Labor struct {
				HourlyRateCents         int64 `yaml:"hourly_rate_cents,omitempty"`
				CalloutFeeCents         int64 `yaml:"callout_fee_cents,omitempty"`
				TreatmentRateCentsPerM2 int64 `yaml:"treatment_rate_cents_per_m2,omitempty"`
			} `yaml:"labor,omitempty"`
		} `yaml:"engine"`
		Catalog struct {
			Backend          string `yaml:"backend,omitempty"`
			ConnectionString string `yaml:"connection_string,omitempty"`
			SQLitePath       string `yaml:"sqlite_path,omitempty"`
			RefreshMinutes   int    `yaml:"refresh_minutes,omitempty"`
		} `yaml:"catalog,omitempty"`
		REST *struct {
			ListenAddr string `yaml:"listen_addr,omitempty"`
			HTTPPort   int    `yaml:"http_port,omitempty"`
		} `yaml:"rest,omitempty"`
		Logging struct {
			FilePath   string `yaml:"file_path,omitempty"`
			MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
			MaxBackups int    `yaml:"max_backups,omitempty"`
			MaxAgeDays int    `yaml:"max_age_days,omitempty"`
		} `yaml:"logging,omitempty"`
	}

	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Engine: EngineData{
			TaxRate:           yamlConfig.Engine.TaxRate,
			TargetMarginRatio: yamlConfig.Engine.TargetMarginRatio,
			ContactPhone:      yamlConfig.Engine.ContactPhone,
			ContactEmail:      yamlConfig.Engine.ContactEmail,
			Drying: DryingData{
				FullScaleGPP:       yamlConfig.Engine.Drying.FullScaleGPP,
				ClosedSystemFactor: yamlConfig.Engine.Drying.ClosedSystemFactor,
				GoodThreshold:      yamlConfig.Engine.Drying.GoodThreshold,
				FairThreshold:      yamlConfig.Engine.Drying.FairThreshold,
			},
			Classification: ClassificationData{
				Class2Ratio:       yamlConfig.Engine.Classification.Class2Ratio,
				Class3Ratio:       yamlConfig.Engine.Classification.Class3Ratio,
				AutoEscalateHours: yamlConfig.Engine.Classification.AutoEscalateHours,
			},
			Sizing: SizingData{
				CapacityPerM3ByClass:  yamlConfig.Engine.Sizing.CapacityPerM3ByClass,
				AirflowPerM2:          yamlConfig.Engine.Sizing.AirflowPerM2,
				MaxUnitsPerEntry:      yamlConfig.Engine.Sizing.MaxUnitsPerEntry,
				BaseDryingDaysByClass: yamlConfig.Engine.Sizing.BaseDryingDaysByClass,
			},
			Labor: LaborData{
				HourlyRateCents:         yamlConfig.Engine.Labor.HourlyRateCents,
				CalloutFeeCents:         yamlConfig.Engine.Labor.CalloutFeeCents,
				TreatmentRateCentsPerM2: yamlConfig.Engine.Labor.TreatmentRateCentsPerM2,
			},
		},
		Catalog: CatalogData{
			Backend:          yamlConfig.Catalog.Backend,
			ConnectionString: yamlConfig.Catalog.ConnectionString,
			SQLitePath:       yamlConfig.Catalog.SQLitePath,
			RefreshMinutes:   yamlConfig.Catalog.RefreshMinutes,
		},
		Logging: LoggingData{
			FilePath:   yamlConfig.Logging.FilePath,
			MaxSizeMB:  yamlConfig.Logging.MaxSizeMB,
			MaxBackups: yamlConfig.Logging.MaxBackups,
			MaxAgeDays: yamlConfig.Logging.MaxAgeDays,
		},
	}

	if yamlConfig.REST != nil {
		config.REST = &RESTServerData{
			ListenAddr: yamlConfig.REST.ListenAddr,
			HTTPPort:   yamlConfig.REST.HTTPPort,
		}
	}

	config.ApplyDefaults()
	return config, nil
}

// IsReadOnly returns true; YAML files are not managed through the engine.
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers.
func (y *YAMLProvider) Close() error {
	return nil
}
