// Package costing aggregates labor, equipment, material, treatment, and
// fee line items into a cost summary with a single terminal tax rounding.
//
// Money is integer cents throughout. Each line total is rounded once when
// the line is priced; sums over lines are exact integer arithmetic; tax is
// rounded once against the subtotal. Nothing in between is ever rounded,
// which keeps cumulative drift out of the totals.
package costing

import (
	"fmt"
	"math"

	"github.com/mfairbank/restocalc/internal/types"
)

// DefaultTaxRate is the standard GST rate applied when configuration does
// not supply one.
const DefaultTaxRate = 0.10

// ValidationError reports a malformed line item. The whole item set is
// rejected; nothing is partially applied.
type ValidationError struct {
	Index      int
	Field      string
	Value      float64
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cost line %d: %s = %v violates constraint %s", e.Index, e.Field, e.Value, e.Constraint)
}

// LineInput is a raw, unpriced line item.
type LineInput struct {
	Category      types.CostCategory `json:"category"`
	Description   string             `json:"description"`
	Quantity      float64            `json:"quantity"`
	UnitRateCents int64              `json:"unit_rate_cents"`
}

// roundCents rounds a fractional cent amount half away from zero.
func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// PriceLine computes the rounded line total for one input.
func PriceLine(in LineInput) types.CostLineItem {
	return types.CostLineItem{
		Category:       in.Category,
		Description:    in.Description,
		Quantity:       in.Quantity,
		UnitRateCents:  in.UnitRateCents,
		LineTotalCents: roundCents(in.Quantity * float64(in.UnitRateCents)),
	}
}

// Summarize validates and prices every line, then produces the summary.
// The tax invariant holds exactly: TaxAmount = round(subtotal * rate) and
// TotalIncTax = subtotal + TaxAmount.
func Summarize(inputs []LineInput, taxRate float64) (*types.CostSummary, error) {
	if taxRate < 0 || taxRate >= 1 {
		return nil, &ValidationError{Field: "tax_rate", Value: taxRate, Constraint: "0 <= rate < 1"}
	}

	for i, in := range inputs {
		if in.Quantity < 0 {
			return nil, &ValidationError{Index: i, Field: "quantity", Value: in.Quantity, Constraint: ">= 0"}
		}
		if in.UnitRateCents < 0 {
			return nil, &ValidationError{Index: i, Field: "unit_rate_cents", Value: float64(in.UnitRateCents), Constraint: ">= 0"}
		}
		switch in.Category {
		case types.CostLabor, types.CostEquipment, types.CostMaterial, types.CostTreatment, types.CostFee:
		default:
			return nil, &ValidationError{Index: i, Field: "category", Constraint: "labor|equipment|material|treatment|fee"}
		}
	}

	summary := &types.CostSummary{
		CategoryTotals: make(map[types.CostCategory]int64),
		TaxRate:        taxRate,
	}

	for _, in := range inputs {
		item := PriceLine(in)
		summary.Items = append(summary.Items, item)
		summary.CategoryTotals[item.Category] += item.LineTotalCents
		summary.SubtotalExTaxCents += item.LineTotalCents
	}

	summary.TaxAmountCents = roundCents(float64(summary.SubtotalExTaxCents) * taxRate)
	summary.TotalIncTaxCents = summary.SubtotalExTaxCents + summary.TaxAmountCents

	return summary, nil
}
