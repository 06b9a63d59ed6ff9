// Package selector computes the dehumidification and airflow requirements
// for an assessment and picks the minimum-cost equipment loadout from the
// catalog that meets them.
package selector

import (
	"math"

	"github.com/mfairbank/restocalc/internal/types"
)

// Policy holds the configurable sizing factors. Capacity factors are in
// litres per day per cubic metre of affected volume, stepped by class;
// airflow is CFM per square metre of affected floor. These are product
// policy numbers (cmd/drying-calibrate fits the duration baselines from
// completed-job history), not physical constants.
type Policy struct {
	CapacityPerM3ByClass  map[int]float64 `yaml:"capacity_per_m3_by_class" json:"capacity_per_m3_by_class"`
	AirflowPerM2          float64         `yaml:"airflow_per_m2" json:"airflow_per_m2"`
	MaxUnitsPerEntry      int             `yaml:"max_units_per_entry" json:"max_units_per_entry"`
	BaseDryingDaysByClass map[int]int     `yaml:"base_drying_days_by_class" json:"base_drying_days_by_class"`
}

// DefaultPolicy returns the shipped sizing factors.
func DefaultPolicy() Policy {
	return Policy{
		CapacityPerM3ByClass:  map[int]float64{1: 3.0, 2: 4.5, 3: 5.5, 4: 7.0},
		AirflowPerM2:          300.0,
		MaxUnitsPerEntry:      20,
		BaseDryingDaysByClass: map[int]int{1: 2, 2: 3, 3: 5, 4: 7},
	}
}

// Requirements are the floors a selection must meet or exceed.
type Requirements struct {
	CapacityLPD float64 `json:"capacity_lpd"`
	AirflowCFM  float64 `json:"airflow_cfm"`
	Class       int     `json:"class"`
}

// ComputeRequirements derives the capacity and airflow floors from the
// assessment's affected volume and floor area, scaled by class.
func ComputeRequirements(a *types.Assessment, pol Policy) Requirements {
	factor, ok := pol.CapacityPerM3ByClass[a.Classification.Class]
	if !ok {
		factor = pol.CapacityPerM3ByClass[4]
	}
	return Requirements{
		CapacityLPD: a.TotalAffectedVolume() * factor,
		AirflowCFM:  a.TotalAffectedFloorArea() * pol.AirflowPerM2,
		Class:       a.Classification.Class,
	}
}

// estimateDryingDays maps capacity headroom to an expected drying duration.
// More headroom shortens the estimate; the function is monotonic
// decreasing in achieved capacity and never below one day.
func estimateDryingDays(req Requirements, achievedCapacity float64, pol Policy) int {
	base, ok := pol.BaseDryingDaysByClass[req.Class]
	if !ok {
		base = pol.BaseDryingDaysByClass[4]
	}
	if req.CapacityLPD <= 0 || achievedCapacity <= 0 {
		return base
	}
	days := int(math.Ceil(float64(base) * req.CapacityLPD / achievedCapacity))
	if days < 1 {
		days = 1
	}
	return days
}
