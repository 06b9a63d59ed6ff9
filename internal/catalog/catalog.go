// Package catalog provides the equipment reference catalog: the read-only
// lookup table of dehumidifiers, air movers, and scrubbers that the
// selector draws from. Catalog rows are administrative data, seeded and
// updated out of band; assessments never own or mutate them.
package catalog

import (
	"context"
	"sort"
)

// Equipment groups.
const (
	GroupDehumidifier = "dehumidifier"
	GroupAirMover     = "air_mover"
	GroupAirScrubber  = "air_scrubber"
)

// Entry is one equipment type available for deployment. CapacityLPD is the
// rated water removal in litres per day (dehumidifiers); AirflowCFM the
// rated airflow (air movers and scrubbers). DailyRateCents is the hire
// rate per unit per day.
type Entry struct {
	ID             string  `gorm:"primaryKey;column:id" json:"id"`
	Group          string  `gorm:"column:equip_group;not null" json:"group"`
	Name           string  `gorm:"column:name;not null" json:"name"`
	CapacityLPD    float64 `gorm:"column:capacity_lpd" json:"capacity_lpd"`
	AirflowCFM     float64 `gorm:"column:airflow_cfm" json:"airflow_cfm"`
	DailyRateCents int64   `gorm:"column:daily_rate_cents;not null" json:"daily_rate_cents"`
	AmpDraw        float64 `gorm:"column:amp_draw" json:"amp_draw"`
}

// TableName sets the catalog table name for GORM.
func (Entry) TableName() string {
	return "equipment_catalog"
}

// Repository is the read-only source of catalog entries. Implementations
// must return entries in a stable order so selection stays deterministic.
type Repository interface {
	All(ctx context.Context) ([]Entry, error)
	Close() error
}

// Static is a fixed in-memory repository, used for tests and as the
// built-in fallback when no catalog database is configured.
type Static struct {
	Entries []Entry
}

// All returns a copy of the entries sorted by ID.
func (s *Static) All(_ context.Context) ([]Entry, error) {
	out := make([]Entry, len(s.Entries))
	copy(out, s.Entries)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements Repository.
func (s *Static) Close() error { return nil }

// ReferenceEntries is the shipped catalog loadout. It seeds new catalog
// databases and backs the Static repository out of the box.
func ReferenceEntries() []Entry {
	return []Entry{
		{ID: "DH-LGR-70", Group: GroupDehumidifier, Name: "LGR Dehumidifier 70L", CapacityLPD: 70, DailyRateCents: 11000, AmpDraw: 6.5},
		{ID: "DH-LGR-130", Group: GroupDehumidifier, Name: "LGR Dehumidifier 130L", CapacityLPD: 130, DailyRateCents: 17500, AmpDraw: 8.8},
		{ID: "DH-CONV-50", Group: GroupDehumidifier, Name: "Conventional Dehumidifier 50L", CapacityLPD: 50, DailyRateCents: 9500, AmpDraw: 5.2},
		{ID: "DH-DES-200", Group: GroupDehumidifier, Name: "Desiccant Dehumidifier 200L", CapacityLPD: 200, DailyRateCents: 27000, AmpDraw: 11.0},
		{ID: "AM-CENT-1500", Group: GroupAirMover, Name: "Centrifugal Air Mover 1500CFM", AirflowCFM: 1500, DailyRateCents: 7000, AmpDraw: 1.9},
		{ID: "AM-AX-3000", Group: GroupAirMover, Name: "Axial Air Mover 3000CFM", AirflowCFM: 3000, DailyRateCents: 14500, AmpDraw: 2.3},
		{ID: "AS-HEPA-500", Group: GroupAirScrubber, Name: "HEPA Air Scrubber 500CFM", AirflowCFM: 500, DailyRateCents: 8500, AmpDraw: 4.0},
	}
}
