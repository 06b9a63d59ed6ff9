package costing

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/mfairbank/restocalc/internal/types"
)

func TestSummarize(t *testing.T) {
	inputs := []LineInput{
		{Category: types.CostLabor, Description: "Technician hours", Quantity: 6, UnitRateCents: 9500},
		{Category: types.CostEquipment, Description: "Equipment hire", Quantity: 3, UnitRateCents: 101500},
		{Category: types.CostMaterial, Description: "Antimicrobial treatment", Quantity: 32.25, UnitRateCents: 450},
		{Category: types.CostFee, Description: "Callout fee", Quantity: 1, UnitRateCents: 15000},
	}

	sum, err := Summarize(inputs, 0.10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 57000 + 304500 + round(14512.5)=14513 + 15000 = 391013
	if sum.SubtotalExTaxCents != 391013 {
		t.Errorf("SubtotalExTaxCents = %d, want 391013", sum.SubtotalExTaxCents)
	}
	if sum.TaxAmountCents != 39101 {
		t.Errorf("TaxAmountCents = %d, want 39101", sum.TaxAmountCents)
	}
	if sum.TotalIncTaxCents != sum.SubtotalExTaxCents+sum.TaxAmountCents {
		t.Errorf("TotalIncTaxCents = %d, want subtotal+tax", sum.TotalIncTaxCents)
	}
	if sum.CategoryTotals[types.CostLabor] != 57000 {
		t.Errorf("labor total = %d, want 57000", sum.CategoryTotals[types.CostLabor])
	}
}

func TestSummarizeRejectsNegatives(t *testing.T) {
	tests := []struct {
		name   string
		inputs []LineInput
	}{
		{"negative quantity", []LineInput{{Category: types.CostLabor, Quantity: -1, UnitRateCents: 100}}},
		{"negative rate", []LineInput{{Category: types.CostLabor, Quantity: 1, UnitRateCents: -100}}},
		{"unknown category", []LineInput{{Category: "discount", Quantity: 1, UnitRateCents: 100}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize(tt.inputs, 0.10)
			if err == nil {
				t.Fatal("expected error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
		})
	}
}

// TestTaxInvariantProperty exercises the tax invariant over randomized
// line-item sets with a fixed seed.
func TestTaxInvariantProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	categories := []types.CostCategory{
		types.CostLabor, types.CostEquipment, types.CostMaterial, types.CostTreatment, types.CostFee,
	}

	for run := 0; run < 1000; run++ {
		n := 1 + rng.Intn(20)
		inputs := make([]LineInput, n)
		for i := range inputs {
			inputs[i] = LineInput{
				Category:      categories[rng.Intn(len(categories))],
				Description:   "item",
				Quantity:      math.Round(rng.Float64()*10000) / 100, // up to 2dp quantities
				UnitRateCents: int64(rng.Intn(500000)),
			}
		}

		sum, err := Summarize(inputs, 0.10)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}

		wantTax := int64(math.Round(float64(sum.SubtotalExTaxCents) * 0.10))
		if sum.TaxAmountCents != wantTax {
			t.Fatalf("run %d: tax %d, want %d", run, sum.TaxAmountCents, wantTax)
		}
		if sum.TotalIncTaxCents != sum.SubtotalExTaxCents+sum.TaxAmountCents {
			t.Fatalf("run %d: total %d != subtotal %d + tax %d",
				run, sum.TotalIncTaxCents, sum.SubtotalExTaxCents, sum.TaxAmountCents)
		}

		var lineSum int64
		for _, item := range sum.Items {
			lineSum += item.LineTotalCents
		}
		if lineSum != sum.SubtotalExTaxCents {
			t.Fatalf("run %d: subtotal %d is not the exact line sum %d", run, sum.SubtotalExTaxCents, lineSum)
		}
	}
}

// TestNoCumulativeRoundingDrift sums many lines whose totals carry a
// half-cent each. Rounding happens once per line and once at tax time;
// intermediate sums are exact.
func TestNoCumulativeRoundingDrift(t *testing.T) {
	var inputs []LineInput
	for i := 0; i < 999; i++ {
		// 0.5 * 101 cents = 50.5 cents per line, rounds to 51.
		inputs = append(inputs, LineInput{
			Category: types.CostMaterial, Description: "strip", Quantity: 0.5, UnitRateCents: 101,
		})
	}

	sum, err := Summarize(inputs, 0.10)
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(999 * 51); sum.SubtotalExTaxCents != want {
		t.Errorf("SubtotalExTaxCents = %d, want %d", sum.SubtotalExTaxCents, want)
	}
	if want := int64(math.Round(999 * 51 * 0.10)); sum.TaxAmountCents != want {
		t.Errorf("TaxAmountCents = %d, want %d", sum.TaxAmountCents, want)
	}
}

func TestSummarizeRejectsBadTaxRate(t *testing.T) {
	if _, err := Summarize(nil, -0.1); err == nil {
		t.Error("negative tax rate must be rejected")
	}
	if _, err := Summarize(nil, 1.0); err == nil {
		t.Error("tax rate of 100% must be rejected")
	}
}
