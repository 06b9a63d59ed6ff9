package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database
// configuration. The database holds a single active settings row plus the
// catalog source description, managed by administrative tooling.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	if err := s.loadEngineSettings(config); err != nil {
		return nil, fmt.Errorf("failed to load engine settings: %w", err)
	}
	if err := s.loadCatalogSource(config); err != nil {
		return nil, fmt.Errorf("failed to load catalog source: %w", err)
	}
	if err := s.loadRESTServer(config); err != nil {
		return nil, fmt.Errorf("failed to load rest server settings: %w", err)
	}

	config.ApplyDefaults()
	return config, nil
}

func (s *SQLiteProvider) loadEngineSettings(config *ConfigData) error {
	query := `
		SELECT tax_rate, target_margin_ratio, contact_phone, contact_email,
		       full_scale_gpp, closed_system_factor, good_threshold, fair_threshold,
		       class2_ratio, class3_ratio, auto_escalate_hours,
		       airflow_per_m2, max_units_per_entry,
		       capacity_class1, capacity_class2, capacity_class3, capacity_class4,
		       base_days_class1, base_days_class2, base_days_class3, base_days_class4,
		       labor_hourly_rate_cents, callout_fee_cents, treatment_rate_cents_per_m2
		FROM engine_settings
		WHERE active = 1
		LIMIT 1
	`

	var (
		contactPhone, contactEmail                     sql.NullString
		taxRate, marginRatio                           sql.NullFloat64
		fullScale, closedFactor                        sql.NullFloat64
		goodThreshold, fairThreshold                   sql.NullInt64
		class2Ratio, class3Ratio, escalateHours        sql.NullFloat64
		airflowPerM2                                   sql.NullFloat64
		maxUnits                                       sql.NullInt64
		cap1, cap2, cap3, cap4                         sql.NullFloat64
		days1, days2, days3, days4                     sql.NullInt64
		hourlyRate, calloutFee, treatmentRate          sql.NullInt64
	)

	err := s.db.QueryRow(query).Scan(
		&taxRate, &marginRatio, &contactPhone, &contactEmail,
		&fullScale, &closedFactor, &goodThreshold, &fairThreshold,
		&class2Ratio, &class3Ratio, &escalateHours,
		&airflowPerM2, &maxUnits,
		&cap1, &cap2, &cap3, &cap4,
		&days1, &days2, &days3, &days4,
		&hourlyRate, &calloutFee, &treatmentRate,
	)
	if err == sql.ErrNoRows {
		// No row means all defaults; ApplyDefaults handles it.
		return nil
	}
	if err != nil {
		return err
	}

	if taxRate.Valid {
		config.Engine.TaxRate = taxRate.Float64
	}
	if marginRatio.Valid {
		config.Engine.TargetMarginRatio = marginRatio.Float64
	}
	if contactPhone.Valid {
		config.Engine.ContactPhone = contactPhone.String
	}
	if contactEmail.Valid {
		config.Engine.ContactEmail = contactEmail.String
	}
	if fullScale.Valid {
		config.Engine.Drying.FullScaleGPP = fullScale.Float64
	}
	if closedFactor.Valid {
		config.Engine.Drying.ClosedSystemFactor = closedFactor.Float64
	}
	if goodThreshold.Valid {
		config.Engine.Drying.GoodThreshold = int(goodThreshold.Int64)
	}
	if fairThreshold.Valid {
		config.Engine.Drying.FairThreshold = int(fairThreshold.Int64)
	}
	if class2Ratio.Valid {
		config.Engine.Classification.Class2Ratio = class2Ratio.Float64
	}
	if class3Ratio.Valid {
		config.Engine.Classification.Class3Ratio = class3Ratio.Float64
	}
	if escalateHours.Valid {
		config.Engine.Classification.AutoEscalateHours = escalateHours.Float64
	}
	if airflowPerM2.Valid {
		config.Engine.Sizing.AirflowPerM2 = airflowPerM2.Float64
	}
	if maxUnits.Valid {
		config.Engine.Sizing.MaxUnitsPerEntry = int(maxUnits.Int64)
	}
	if cap1.Valid && cap2.Valid && cap3.Valid && cap4.Valid {
		config.Engine.Sizing.CapacityPerM3ByClass = map[int]float64{
			1: cap1.Float64, 2: cap2.Float64, 3: cap3.Float64, 4: cap4.Float64,
		}
	}
	if days1.Valid && days2.Valid && days3.Valid && days4.Valid {
		config.Engine.Sizing.BaseDryingDaysByClass = map[int]int{
			1: int(days1.Int64), 2: int(days2.Int64), 3: int(days3.Int64), 4: int(days4.Int64),
		}
	}
	if hourlyRate.Valid {
		config.Engine.Labor.HourlyRateCents = hourlyRate.Int64
	}
	if calloutFee.Valid {
		config.Engine.Labor.CalloutFeeCents = calloutFee.Int64
	}
	if treatmentRate.Valid {
		config.Engine.Labor.TreatmentRateCentsPerM2 = treatmentRate.Int64
	}

	return nil
}

func (s *SQLiteProvider) loadCatalogSource(config *ConfigData) error {
	query := `
		SELECT backend, connection_string, sqlite_path, refresh_minutes
		FROM catalog_source
		WHERE active = 1
		LIMIT 1
	`

	var backend, connectionString, sqlitePath sql.NullString
	var refreshMinutes sql.NullInt64

	err := s.db.QueryRow(query).Scan(&backend, &connectionString, &sqlitePath, &refreshMinutes)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	if backend.Valid {
		config.Catalog.Backend = backend.String
	}
	if connectionString.Valid {
		config.Catalog.ConnectionString = connectionString.String
	}
	if sqlitePath.Valid {
		config.Catalog.SQLitePath = sqlitePath.String
	}
	if refreshMinutes.Valid {
		config.Catalog.RefreshMinutes = int(refreshMinutes.Int64)
	}

	return nil
}

func (s *SQLiteProvider) loadRESTServer(config *ConfigData) error {
	query := `
		SELECT listen_addr, http_port
		FROM rest_server
		WHERE active = 1
		LIMIT 1
	`

	var listenAddr sql.NullString
	var httpPort sql.NullInt64

	err := s.db.QueryRow(query).Scan(&listenAddr, &httpPort)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	rest := &RESTServerData{}
	if listenAddr.Valid {
		rest.ListenAddr = listenAddr.String
	}
	if httpPort.Valid {
		rest.HTTPPort = int(httpPort.Int64)
	}
	config.REST = rest

	return nil
}

// IsReadOnly returns false; SQLite configuration can be managed through
// administrative tooling.
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection.
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
