package selector

import (
	"fmt"
	"math"

	"github.com/mfairbank/restocalc/internal/catalog"
	"github.com/mfairbank/restocalc/internal/types"
)

// ValidationError reports a manual selection line that cannot be resolved
// against the catalog.
type ValidationError struct {
	Line       int
	Field      string
	Value      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manual selection line %d: %s = %q violates constraint %s", e.Line, e.Field, e.Value, e.Constraint)
}

// InfeasibleSelectionError means no combination of catalog entries, even
// at the maximum allowed quantity of every type, can meet the computed
// requirement. The caller must source equipment manually; the engine never
// approximates downward.
type InfeasibleSelectionError struct {
	RequiredCapacityLPD float64
	RequiredAirflowCFM  float64
	MaxCapacityLPD      float64
	MaxAirflowCFM       float64
}

func (e *InfeasibleSelectionError) Error() string {
	return fmt.Sprintf(
		"equipment selection infeasible: required %.1f L/day and %.0f CFM, catalog maximum is %.1f L/day and %.0f CFM",
		e.RequiredCapacityLPD, e.RequiredAirflowCFM, e.MaxCapacityLPD, e.MaxAirflowCFM)
}

// candidate is a working selection during search.
type candidate struct {
	quantities []int
	costCents  int64
	units      int
	ampDraw    float64
}

// better reports whether a beats b under the tie-break policy: lowest
// cost, then fewest units, then lowest amp draw, then the lexicographically
// smallest quantity vector for full determinism.
func (a *candidate) better(b *candidate) bool {
	if a.costCents != b.costCents {
		return a.costCents < b.costCents
	}
	if a.units != b.units {
		return a.units < b.units
	}
	if a.ampDraw != b.ampDraw {
		return a.ampDraw < b.ampDraw
	}
	for i := range a.quantities {
		if a.quantities[i] != b.quantities[i] {
			return a.quantities[i] < b.quantities[i]
		}
	}
	return false
}

// Select finds the minimum-cost multiset of catalog entries whose summed
// capacity and airflow meet or exceed the requirement. The search is a
// bounded exhaustive walk with cost pruning; catalogs are small (tens of
// entries) and per-entry quantities are capped, so the space is tractable.
// The same inputs always yield the same selection.
func Select(entries []catalog.Entry, req Requirements, pol Policy) (*types.EquipmentSelection, error) {
	if len(entries) == 0 {
		return nil, &InfeasibleSelectionError{
			RequiredCapacityLPD: req.CapacityLPD,
			RequiredAirflowCFM:  req.AirflowCFM,
		}
	}

	maxQ := pol.MaxUnitsPerEntry
	if maxQ <= 0 {
		maxQ = 20
	}

	var maxCapacity, maxAirflow float64
	for _, e := range entries {
		maxCapacity += e.CapacityLPD * float64(maxQ)
		maxAirflow += e.AirflowCFM * float64(maxQ)
	}
	if maxCapacity < req.CapacityLPD || maxAirflow < req.AirflowCFM {
		return nil, &InfeasibleSelectionError{
			RequiredCapacityLPD: req.CapacityLPD,
			RequiredAirflowCFM:  req.AirflowCFM,
			MaxCapacityLPD:      maxCapacity,
			MaxAirflowCFM:       maxAirflow,
		}
	}

	var best *candidate
	current := &candidate{quantities: make([]int, len(entries))}

	// suffix maxima let the search abandon branches that can no longer
	// reach the floors with the entries that remain.
	suffixCapacity := make([]float64, len(entries)+1)
	suffixAirflow := make([]float64, len(entries)+1)
	for i := len(entries) - 1; i >= 0; i-- {
		suffixCapacity[i] = suffixCapacity[i+1] + entries[i].CapacityLPD*float64(maxQ)
		suffixAirflow[i] = suffixAirflow[i+1] + entries[i].AirflowCFM*float64(maxQ)
	}

	var walk func(idx int, remCapacity, remAirflow float64)
	walk = func(idx int, remCapacity, remAirflow float64) {
		if best != nil && current.costCents > best.costCents {
			return
		}
		if remCapacity <= 0 && remAirflow <= 0 {
			if best == nil || current.better(best) {
				snapshot := &candidate{
					quantities: append([]int(nil), current.quantities...),
					costCents:  current.costCents,
					units:      current.units,
					ampDraw:    current.ampDraw,
				}
				best = snapshot
			}
			return
		}
		if idx == len(entries) {
			return
		}
		if suffixCapacity[idx] < remCapacity || suffixAirflow[idx] < remAirflow {
			return
		}

		e := entries[idx]

		// Quantities beyond what closes both remaining gaps are wasted cost.
		limit := maxQ
		if e.CapacityLPD > 0 || e.AirflowCFM > 0 {
			need := 0
			if e.CapacityLPD > 0 && remCapacity > 0 {
				need = int(math.Ceil(remCapacity / e.CapacityLPD))
			}
			if e.AirflowCFM > 0 && remAirflow > 0 {
				if n := int(math.Ceil(remAirflow / e.AirflowCFM)); n > need {
					need = n
				}
			}
			if need < limit {
				limit = need
			}
		} else {
			limit = 0
		}

		for q := 0; q <= limit; q++ {
			current.quantities[idx] = q
			current.costCents += int64(q) * e.DailyRateCents
			current.units += q
			current.ampDraw += float64(q) * e.AmpDraw

			walk(idx+1, remCapacity-float64(q)*e.CapacityLPD, remAirflow-float64(q)*e.AirflowCFM)

			current.costCents -= int64(q) * e.DailyRateCents
			current.units -= q
			current.ampDraw -= float64(q) * e.AmpDraw
			current.quantities[idx] = 0
		}
	}

	walk(0, req.CapacityLPD, req.AirflowCFM)

	if best == nil {
		// Unreachable once the aggregate feasibility check passed, but a
		// selection below the floor must never escape regardless.
		return nil, &InfeasibleSelectionError{
			RequiredCapacityLPD: req.CapacityLPD,
			RequiredAirflowCFM:  req.AirflowCFM,
			MaxCapacityLPD:      maxCapacity,
			MaxAirflowCFM:       maxAirflow,
		}
	}

	sel := &types.EquipmentSelection{}
	for i, q := range best.quantities {
		if q == 0 {
			continue
		}
		e := entries[i]
		sel.Lines = append(sel.Lines, types.SelectionLine{
			CatalogEntryID: e.ID,
			Name:           e.Name,
			Group:          e.Group,
			Quantity:       q,
			CapacityLPD:    e.CapacityLPD,
			AirflowCFM:     e.AirflowCFM,
			DailyRateCents: e.DailyRateCents,
			AmpDraw:        e.AmpDraw,
		})
		sel.TotalDailyCostCents += int64(q) * e.DailyRateCents
		sel.TotalAmpDraw += float64(q) * e.AmpDraw
		sel.TotalCapacityLPD += float64(q) * e.CapacityLPD
		sel.TotalAirflowCFM += float64(q) * e.AirflowCFM
	}

	sel.EstimatedDryingDays = estimateDryingDays(req, sel.TotalCapacityLPD, pol)

	return sel, nil
}

// ValidateOverride resolves a manual selection against the catalog and
// recomputes its totals against the current requirement. A manual line is
// authoritative only for its entry ID and quantity; capacity, airflow,
// rate, and amp draw always come from the catalog so a caller can neither
// misprice a line nor fabricate capacity. The override itself is sticky:
// this never changes which entries or quantities were chosen, only
// reports whether they still meet the floors.
func ValidateOverride(sel *types.EquipmentSelection, entries []catalog.Entry, req Requirements, pol Policy) error {
	byID := make(map[string]catalog.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	for i := range sel.Lines {
		line := &sel.Lines[i]
		e, ok := byID[line.CatalogEntryID]
		if !ok {
			return &ValidationError{
				Line: i, Field: "catalog_entry_id", Value: line.CatalogEntryID,
				Constraint: "must reference a catalog entry",
			}
		}
		if line.Quantity < 1 {
			return &ValidationError{
				Line: i, Field: "quantity", Value: fmt.Sprintf("%d", line.Quantity),
				Constraint: ">= 1",
			}
		}
		line.Name = e.Name
		line.Group = e.Group
		line.CapacityLPD = e.CapacityLPD
		line.AirflowCFM = e.AirflowCFM
		line.DailyRateCents = e.DailyRateCents
		line.AmpDraw = e.AmpDraw
	}

	sel.TotalDailyCostCents = 0
	sel.TotalAmpDraw = 0
	sel.TotalCapacityLPD = 0
	sel.TotalAirflowCFM = 0
	for _, line := range sel.Lines {
		sel.TotalDailyCostCents += int64(line.Quantity) * line.DailyRateCents
		sel.TotalAmpDraw += float64(line.Quantity) * line.AmpDraw
		sel.TotalCapacityLPD += float64(line.Quantity) * line.CapacityLPD
		sel.TotalAirflowCFM += float64(line.Quantity) * line.AirflowCFM
	}
	sel.UnderProvisioned = sel.TotalCapacityLPD < req.CapacityLPD || sel.TotalAirflowCFM < req.AirflowCFM
	sel.EstimatedDryingDays = estimateDryingDays(req, sel.TotalCapacityLPD, pol)
	return nil
}
