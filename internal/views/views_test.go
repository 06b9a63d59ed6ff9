package views

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mfairbank/restocalc/internal/types"
)

func sampleAssessment(t *testing.T) *types.Assessment {
	t.Helper()
	return &types.Assessment{
		ID:          uuid.MustParse("6f1b0a52-8e0e-4b7e-9a93-2f6f3f1d8c11"),
		SiteAddress: "12 Riverbend Close",
		Areas: []types.MeasurementSet{
			{Label: "Living Room", FloorArea: 15, Volume: 36, AffectedFloorArea: 12.75, AffectedVolume: 30.6, WetPercentage: 85},
		},
		Psychrometrics: types.PsychrometricResult{DryingIndex: 44, Status: types.DryingFair, DewPointC: 15.1},
		Classification: types.Classification{
			Category:  1,
			Class:     2,
			Rationale: []string{`declared source "clean_supply" implies category 1`},
		},
		Equipment: &types.EquipmentSelection{
			Lines: []types.SelectionLine{
				{CatalogEntryID: "DH-LGR-130", Name: "LGR Dehumidifier 130L", Group: "dehumidifier", Quantity: 3, DailyRateCents: 17500, AmpDraw: 8.8},
				{CatalogEntryID: "AM-CENT-1500", Name: "Centrifugal Air Mover 1500CFM", Group: "air_mover", Quantity: 7, DailyRateCents: 7000, AmpDraw: 1.9},
			},
			TotalDailyCostCents: 101500,
			TotalAmpDraw:        39.7,
			EstimatedDryingDays: 3,
		},
		Costs: &types.CostSummary{
			Items: []types.CostLineItem{
				{Category: types.CostEquipment, Description: "Equipment hire", Quantity: 3, UnitRateCents: 101500, LineTotalCents: 304500},
				{Category: types.CostLabor, Description: "Technician hours", Quantity: 6, UnitRateCents: 9500, LineTotalCents: 57000},
			},
			CategoryTotals:     map[types.CostCategory]int64{types.CostEquipment: 304500, types.CostLabor: 57000},
			SubtotalExTaxCents: 361500,
			TaxRate:            0.10,
			TaxAmountCents:     36150,
			TotalIncTaxCents:   397650,
		},
	}
}

func TestProjectFiguresMatchAssessment(t *testing.T) {
	a := sampleAssessment(t)
	b, err := Project(a, DefaultProjectorConfig())
	if err != nil {
		t.Fatal(err)
	}

	if b.Adjuster.TotalIncTaxCents != a.Costs.TotalIncTaxCents {
		t.Errorf("adjuster total = %d, want %d", b.Adjuster.TotalIncTaxCents, a.Costs.TotalIncTaxCents)
	}
	if b.Client.TotalIncTaxCents != a.Costs.TotalIncTaxCents {
		t.Errorf("client total = %d, want %d", b.Client.TotalIncTaxCents, a.Costs.TotalIncTaxCents)
	}
	if len(b.Adjuster.LineItems) != len(a.Costs.Items) {
		t.Errorf("adjuster must carry full itemization")
	}
	if len(b.Adjuster.ClassificationBasis) == 0 {
		t.Error("adjuster must carry the classification rationale")
	}
	if len(b.Adjuster.ComplianceCitations) == 0 {
		t.Error("adjuster must carry compliance citations")
	}

	// suggestedPrice = directCost / (1 - 0.35)
	if want := int64(556154); b.Internal.SuggestedPriceCents != want {
		t.Errorf("SuggestedPriceCents = %d, want %d", b.Internal.SuggestedPriceCents, want)
	}
	if b.Internal.ProjectedProfitCents != b.Internal.SuggestedPriceCents-b.Internal.DirectCostCents {
		t.Error("projected profit must equal suggested price minus direct cost")
	}
	if !b.Internal.Confidential {
		t.Error("internal view must be marked confidential")
	}
}

// TestClientViewIsolation scans the serialized client view for internal
// financial tokens. None may appear under any spelling used in the
// internal view.
func TestClientViewIsolation(t *testing.T) {
	a := sampleAssessment(t)
	b, err := Project(a, DefaultProjectorConfig())
	if err != nil {
		t.Fatal(err)
	}

	raw, err := json.Marshal(b.Client)
	if err != nil {
		t.Fatal(err)
	}
	serialized := strings.ToLower(string(raw))

	for _, token := range []string{"profit", "margin", "direct_cost", "directcost", "suggested_price"} {
		if strings.Contains(serialized, token) {
			t.Errorf("client view leaks internal token %q: %s", token, serialized)
		}
	}
	if len(b.Client.NextSteps) == 0 {
		t.Error("client view must carry next steps")
	}
}

func TestWarningsReachAllViews(t *testing.T) {
	a := sampleAssessment(t)
	a.Warnings = []types.Warning{{Code: types.WarnOverrideConflict, Message: "manual selection below capacity floor"}}

	b, err := Project(a, DefaultProjectorConfig())
	if err != nil {
		t.Fatal(err)
	}
	for name, warnings := range map[string][]types.Warning{
		"adjuster": b.Adjuster.Warnings,
		"client":   b.Client.Warnings,
		"internal": b.Internal.Warnings,
	} {
		if len(warnings) != 1 || warnings[0].Code != types.WarnOverrideConflict {
			t.Errorf("%s view must carry the override warning, got %v", name, warnings)
		}
	}
}

func TestDeliveryStateMachine(t *testing.T) {
	p := NewProjector(DefaultProjectorConfig())
	a := sampleAssessment(t)

	// Draft views cannot be delivered.
	b, err := p.Project(a)
	if err != nil {
		t.Fatal(err)
	}
	if b.Client.Meta.State != StateDraft {
		t.Fatalf("state = %s, want DRAFT for mutable assessment", b.Client.Meta.State)
	}
	if err := p.Deliver(b, AudienceClient); err == nil {
		t.Fatal("delivering a DRAFT view must fail")
	}

	// Freeze, regenerate, deliver.
	a.Frozen = true
	b, err = p.Project(a)
	if err != nil {
		t.Fatal(err)
	}
	if b.Client.Meta.State != StateFinal {
		t.Fatalf("state = %s, want FINAL for frozen assessment", b.Client.Meta.State)
	}
	if err := p.Deliver(b, AudienceClient); err != nil {
		t.Fatal(err)
	}
	if !b.Client.Meta.Delivered {
		t.Error("delivered flag must be set")
	}

	// Once delivered, plain regeneration is refused.
	if _, err := p.Project(a); err == nil {
		t.Fatal("projecting over delivered views must fail without reissue")
	}

	// Reissue produces a higher revision.
	b2, err := p.Reissue(a)
	if err != nil {
		t.Fatal(err)
	}
	if b2.Client.Meta.Revision != 2 {
		t.Errorf("reissued revision = %d, want 2", b2.Client.Meta.Revision)
	}
}

func TestProjectRequiresCompletedAssessment(t *testing.T) {
	a := sampleAssessment(t)
	a.Costs = nil
	if _, err := Project(a, DefaultProjectorConfig()); err == nil {
		t.Fatal("projection without a cost summary must fail")
	}
}
