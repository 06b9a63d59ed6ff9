package selector

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mfairbank/restocalc/internal/catalog"
	"github.com/mfairbank/restocalc/internal/types"
)

func referenceEntries(t *testing.T) []catalog.Entry {
	t.Helper()
	static := &catalog.Static{Entries: catalog.ReferenceEntries()}
	entries, err := static.All(nil)
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func selectionByID(sel *types.EquipmentSelection) map[string]int {
	out := make(map[string]int)
	for _, l := range sel.Lines {
		out[l.CatalogEntryID] = l.Quantity
	}
	return out
}

func TestSelectStandardResidential(t *testing.T) {
	entries := referenceEntries(t)
	pol := DefaultPolicy()
	req := Requirements{CapacityLPD: 348.3, AirflowCFM: 9675, Class: 2}

	sel, err := Select(entries, req, pol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]int{"DH-LGR-130": 3, "AM-CENT-1500": 7}
	if got := selectionByID(sel); !reflect.DeepEqual(got, want) {
		t.Errorf("selection = %v, want %v", got, want)
	}
	if sel.TotalDailyCostCents != 101500 {
		t.Errorf("TotalDailyCostCents = %d, want 101500 ($1,015.00)", sel.TotalDailyCostCents)
	}
	if sel.EstimatedDryingDays != 3 {
		t.Errorf("EstimatedDryingDays = %d, want 3", sel.EstimatedDryingDays)
	}
}

func TestSelectSewageClassThree(t *testing.T) {
	entries := referenceEntries(t)
	pol := DefaultPolicy()
	req := Requirements{CapacityLPD: 519.156, AirflowCFM: 10488, Class: 3}

	sel, err := Select(entries, req, pol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]int{"DH-LGR-130": 4, "AM-CENT-1500": 7}
	if got := selectionByID(sel); !reflect.DeepEqual(got, want) {
		t.Errorf("selection = %v, want %v", got, want)
	}
	if sel.TotalDailyCostCents != 119000 {
		t.Errorf("TotalDailyCostCents = %d, want 119000 ($1,190.00)", sel.TotalDailyCostCents)
	}
	if sel.EstimatedDryingDays != 5 {
		t.Errorf("EstimatedDryingDays = %d, want 5", sel.EstimatedDryingDays)
	}
}

func TestSelectInfeasible(t *testing.T) {
	entries := referenceEntries(t)
	pol := DefaultPolicy()

	// Beyond the whole catalog at 20 units of every type.
	req := Requirements{CapacityLPD: 100000, AirflowCFM: 5000, Class: 4}

	sel, err := Select(entries, req, pol)
	if sel != nil {
		t.Fatalf("expected no selection, got %+v", sel)
	}
	var ierr *InfeasibleSelectionError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *InfeasibleSelectionError, got %T: %v", err, err)
	}
	if ierr.RequiredCapacityLPD != 100000 {
		t.Errorf("error must carry the violated capacity threshold, got %v", ierr.RequiredCapacityLPD)
	}
}

func TestSelectNeverUnderProvisions(t *testing.T) {
	entries := referenceEntries(t)
	pol := DefaultPolicy()

	for _, req := range []Requirements{
		{CapacityLPD: 1, AirflowCFM: 1, Class: 1},
		{CapacityLPD: 63.2, AirflowCFM: 2200, Class: 1},
		{CapacityLPD: 348.3, AirflowCFM: 9675, Class: 2},
		{CapacityLPD: 519.156, AirflowCFM: 10488, Class: 3},
		{CapacityLPD: 900, AirflowCFM: 30000, Class: 4},
		{CapacityLPD: 0, AirflowCFM: 12000, Class: 2},
		{CapacityLPD: 420, AirflowCFM: 0, Class: 3},
	} {
		sel, err := Select(entries, req, pol)
		if err != nil {
			t.Fatalf("req %+v: unexpected error: %v", req, err)
		}
		if sel.TotalCapacityLPD < req.CapacityLPD {
			t.Errorf("req %+v: capacity %v under floor", req, sel.TotalCapacityLPD)
		}
		if sel.TotalAirflowCFM < req.AirflowCFM {
			t.Errorf("req %+v: airflow %v under floor", req, sel.TotalAirflowCFM)
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	entries := referenceEntries(t)
	pol := DefaultPolicy()
	req := Requirements{CapacityLPD: 275, AirflowCFM: 7300, Class: 2}

	first, err := Select(entries, req, pol)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := Select(entries, req, pol)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("selection differs across runs: %+v vs %+v", first, again)
		}
	}
}

func TestSelectTieBreakPrefersFewerUnits(t *testing.T) {
	entries := []catalog.Entry{
		{ID: "A", Group: catalog.GroupDehumidifier, Name: "Small", CapacityLPD: 50, DailyRateCents: 5000, AmpDraw: 3},
		{ID: "B", Group: catalog.GroupDehumidifier, Name: "Big", CapacityLPD: 100, DailyRateCents: 10000, AmpDraw: 6},
	}
	pol := DefaultPolicy()
	req := Requirements{CapacityLPD: 100, Class: 1}

	// 1xB and 2xA cost the same; fewer units wins.
	sel, err := Select(entries, req, pol)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"B": 1}
	if got := selectionByID(sel); !reflect.DeepEqual(got, want) {
		t.Errorf("selection = %v, want %v", got, want)
	}
}

func TestSelectTieBreakPrefersLowerAmpDraw(t *testing.T) {
	entries := []catalog.Entry{
		{ID: "A", Group: catalog.GroupDehumidifier, Name: "Hungry", CapacityLPD: 100, DailyRateCents: 10000, AmpDraw: 9},
		{ID: "B", Group: catalog.GroupDehumidifier, Name: "Efficient", CapacityLPD: 100, DailyRateCents: 10000, AmpDraw: 6},
	}
	pol := DefaultPolicy()
	req := Requirements{CapacityLPD: 100, Class: 1}

	sel, err := Select(entries, req, pol)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"B": 1}
	if got := selectionByID(sel); !reflect.DeepEqual(got, want) {
		t.Errorf("selection = %v, want %v", got, want)
	}
}

func TestCapacityMonotonicInWetPercentage(t *testing.T) {
	pol := DefaultPolicy()
	prev := -1.0
	for wet := 10.0; wet <= 100; wet += 5 {
		a := &types.Assessment{
			Areas: []types.MeasurementSet{{
				FloorArea:         45,
				Volume:            108,
				AffectedFloorArea: 45 * wet / 100,
				AffectedVolume:    108 * wet / 100,
				WetPercentage:     wet,
			}},
			Classification: types.Classification{Class: 2},
		}
		req := ComputeRequirements(a, pol)
		if req.CapacityLPD < prev {
			t.Fatalf("required capacity decreased at wet %v%%: %v < %v", wet, req.CapacityLPD, prev)
		}
		prev = req.CapacityLPD
	}
}

func TestMoreHeadroomShortensDuration(t *testing.T) {
	pol := DefaultPolicy()
	req := Requirements{CapacityLPD: 300, Class: 3}
	prev := estimateDryingDays(req, 300, pol)
	for achieved := 350.0; achieved <= 900; achieved += 50 {
		days := estimateDryingDays(req, achieved, pol)
		if days > prev {
			t.Fatalf("duration grew with more capacity: %d days at %v L/day", days, achieved)
		}
		prev = days
	}
}

func TestValidateOverride(t *testing.T) {
	entries := referenceEntries(t)
	pol := DefaultPolicy()
	req := Requirements{CapacityLPD: 400, AirflowCFM: 6000, Class: 3}

	// Manual lines carry only IDs and quantities; everything else resolves
	// from the catalog.
	sel := &types.EquipmentSelection{
		Override: true,
		Lines: []types.SelectionLine{
			{CatalogEntryID: "DH-LGR-130", Quantity: 2},
			{CatalogEntryID: "AM-CENT-1500", Quantity: 5},
		},
	}

	if err := ValidateOverride(sel, entries, req, pol); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sel.Override {
		t.Error("override flag must survive revalidation")
	}
	if sel.TotalCapacityLPD != 260 || sel.TotalAirflowCFM != 7500 {
		t.Errorf("resolved totals = %v L/day, %v CFM; want 260 and 7500 from catalog ratings",
			sel.TotalCapacityLPD, sel.TotalAirflowCFM)
	}
	if !sel.UnderProvisioned {
		t.Error("260 L/day against a 400 L/day floor must be flagged under-provisioned")
	}
	if sel.TotalDailyCostCents != 2*17500+5*7000 {
		t.Errorf("TotalDailyCostCents = %d", sel.TotalDailyCostCents)
	}
	if sel.Lines[0].Name == "" || sel.Lines[0].DailyRateCents != 17500 {
		t.Errorf("line must be filled in from its catalog entry: %+v", sel.Lines[0])
	}

	// Top it up past both floors and the flag clears.
	sel.Lines[0].Quantity = 4
	if err := ValidateOverride(sel, entries, req, pol); err != nil {
		t.Fatal(err)
	}
	if sel.UnderProvisioned {
		t.Error("520 L/day and 7500 CFM meet the floors; flag must clear")
	}
}

func TestValidateOverrideIgnoresCallerRatings(t *testing.T) {
	entries := referenceEntries(t)
	pol := DefaultPolicy()
	req := Requirements{CapacityLPD: 400, AirflowCFM: 0, Class: 3}

	// A fabricated capacity on the line must not pass the floor check.
	sel := &types.EquipmentSelection{
		Override: true,
		Lines: []types.SelectionLine{
			{CatalogEntryID: "DH-CONV-50", Quantity: 1, CapacityLPD: 99999, DailyRateCents: 1},
		},
	}
	if err := ValidateOverride(sel, entries, req, pol); err != nil {
		t.Fatal(err)
	}
	if sel.TotalCapacityLPD != 50 {
		t.Errorf("TotalCapacityLPD = %v, want the catalog rating 50", sel.TotalCapacityLPD)
	}
	if sel.TotalDailyCostCents != 9500 {
		t.Errorf("TotalDailyCostCents = %d, want the catalog rate 9500", sel.TotalDailyCostCents)
	}
	if !sel.UnderProvisioned {
		t.Error("50 L/day against a 400 L/day floor must be flagged regardless of the submitted rating")
	}
}

func TestValidateOverrideRejectsBadLines(t *testing.T) {
	entries := referenceEntries(t)
	pol := DefaultPolicy()
	req := Requirements{CapacityLPD: 100, Class: 1}

	tests := []struct {
		name  string
		lines []types.SelectionLine
	}{
		{"unknown entry", []types.SelectionLine{{CatalogEntryID: "DH-NOPE-1", Quantity: 1}}},
		{"zero quantity", []types.SelectionLine{{CatalogEntryID: "DH-LGR-70", Quantity: 0}}},
		{"negative quantity", []types.SelectionLine{{CatalogEntryID: "DH-LGR-70", Quantity: -2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := &types.EquipmentSelection{Override: true, Lines: tt.lines}
			err := ValidateOverride(sel, entries, req, pol)
			if err == nil {
				t.Fatal("expected error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
		})
	}
}
