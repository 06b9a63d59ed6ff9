package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteRepository reads catalog entries from a local SQLite database,
// typically one produced by the catalog-seed tool.
type SQLiteRepository struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteRepository opens the catalog database at dbPath.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}
	return &SQLiteRepository{db: db, dbPath: dbPath}, nil
}

// All returns every catalog entry ordered by ID.
func (r *SQLiteRepository) All(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT id, equip_group, name, capacity_lpd, airflow_cfm, daily_rate_cents, amp_draw
		FROM equipment_catalog
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var capacity, airflow, ampDraw sql.NullFloat64

		if err := rows.Scan(&e.ID, &e.Group, &e.Name, &capacity, &airflow, &e.DailyRateCents, &ampDraw); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		if capacity.Valid {
			e.CapacityLPD = capacity.Float64
		}
		if airflow.Valid {
			e.AirflowCFM = airflow.Float64
		}
		if ampDraw.Valid {
			e.AmpDraw = ampDraw.Float64
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}

	return entries, nil
}

// Close closes the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Seed creates the catalog table if needed and inserts the given entries,
// replacing any existing row with the same ID. Used by cmd/catalog-seed.
func Seed(dbPath string, entries []Entry) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog database: %w", err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE IF NOT EXISTS equipment_catalog (
			id TEXT PRIMARY KEY,
			equip_group TEXT NOT NULL,
			name TEXT NOT NULL,
			capacity_lpd REAL,
			airflow_cfm REAL,
			daily_rate_cents INTEGER NOT NULL,
			amp_draw REAL
		)
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO equipment_catalog
		(id, equip_group, name, capacity_lpd, airflow_cfm, daily_rate_cents, amp_draw)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare seed statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.ID, e.Group, e.Name, e.CapacityLPD, e.AirflowCFM, e.DailyRateCents, e.AmpDraw); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert catalog entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}
