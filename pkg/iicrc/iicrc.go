// Package iicrc maps water exposure facts to an IICRC S500 water category
// (contamination level 1-3) and class (evaporation load 1-4), carrying a
// rationale entry for every fact that drove a decision.
package iicrc

import (
	"fmt"

	"github.com/mfairbank/restocalc/internal/types"
)

// categoryBySource maps each declared source to its baseline category.
var categoryBySource = map[types.WaterSource]int{
	types.SourceCleanSupply:       1,
	types.SourceApplianceOverflow: 2,
	types.SourceGreywater:         2,
	types.SourceSewage:            3,
	types.SourceRisingFlood:       3,
	types.SourceStormIngress:      3,
}

// Policy holds the configurable class cutoffs. The exact area-ratio
// boundaries between Class 1/2/3 are product policy rather than physics,
// so they ship as configuration with these defaults.
type Policy struct {
	Class2Ratio       float64 `yaml:"class2_ratio" json:"class2_ratio"`
	Class3Ratio       float64 `yaml:"class3_ratio" json:"class3_ratio"`
	AutoEscalateHours float64 `yaml:"auto_escalate_hours" json:"auto_escalate_hours"`
}

// DefaultPolicy returns the shipped classification cutoffs.
func DefaultPolicy() Policy {
	return Policy{
		Class2Ratio:       0.30,
		Class3Ratio:       0.85,
		AutoEscalateHours: 72,
	}
}

// ClassificationConflictError reports internally contradictory exposure
// facts. This is a data-entry-quality signal and always fails loudly;
// mere multiplicity of declared sources is handled by worst-wins instead.
type ClassificationConflictError struct {
	Detail string
}

func (e *ClassificationConflictError) Error() string {
	return "classification conflict: " + e.Detail
}

// Classify derives the category and class for the given exposure facts and
// aggregate affected-area ratio (0-1 across all measured areas).
func Classify(facts types.WaterExposureFacts, affectedRatio float64, pol Policy) (types.Classification, error) {
	if len(facts.Sources) == 0 {
		return types.Classification{}, &ClassificationConflictError{
			Detail: "no water source declared",
		}
	}
	if facts.CleanSourceVerified && facts.SewageObserved {
		return types.Classification{}, &ClassificationConflictError{
			Detail: "clean source verified but sewage contamination observed; facts must be corrected before classification",
		}
	}

	var rationale []string

	// Category: worst declared source wins. A clean declaration alongside a
	// contaminated one never downgrades the result.
	category := 0
	var worst types.WaterSource
	for _, src := range facts.Sources {
		cat, ok := categoryBySource[src]
		if !ok {
			return types.Classification{}, &ClassificationConflictError{
				Detail: fmt.Sprintf("unknown water source %q", src),
			}
		}
		if cat > category {
			category = cat
			worst = src
		}
	}
	rationale = append(rationale, fmt.Sprintf("declared source %q implies category %d", worst, category))
	if len(facts.Sources) > 1 {
		rationale = append(rationale, fmt.Sprintf("%d sources declared; worst contamination level governs", len(facts.Sources)))
	}

	if facts.SewageObserved && category < 3 {
		category = 3
		rationale = append(rationale, "sewage contamination observed on site escalates to category 3")
	}

	if facts.StandingWater && facts.HoursSinceLoss > pol.AutoEscalateHours && category < 3 {
		category = 3
		rationale = append(rationale, fmt.Sprintf("standing water beyond %.0f h escalates to category 3", pol.AutoEscalateHours))
	}

	// Class: area-ratio driven, with time escalation. Class 4 only ever
	// comes from the explicit specialty-materials flag; under-classifying
	// Class 4 is preferred over assigning it without direct evidence.
	class := 1
	switch {
	case affectedRatio >= pol.Class3Ratio:
		class = 3
		rationale = append(rationale, fmt.Sprintf("affected-area ratio %.2f >= %.2f implies class 3", affectedRatio, pol.Class3Ratio))
	case affectedRatio >= pol.Class2Ratio:
		class = 2
		rationale = append(rationale, fmt.Sprintf("affected-area ratio %.2f >= %.2f implies class 2", affectedRatio, pol.Class2Ratio))
	default:
		rationale = append(rationale, fmt.Sprintf("affected-area ratio %.2f below %.2f implies class 1", affectedRatio, pol.Class2Ratio))
	}

	if facts.HoursSinceLoss > pol.AutoEscalateHours && class < 3 {
		class = 3
		rationale = append(rationale, fmt.Sprintf("%.0f h since loss exceeds %.0f h; evaporation load escalated to class 3", facts.HoursSinceLoss, pol.AutoEscalateHours))
	}

	if facts.SpecialtyMaterialsSaturated {
		class = 4
		rationale = append(rationale, "deeply saturated specialty materials flagged; class 4")
	}

	if facts.PreSeventiesConstruction {
		rationale = append(rationale, "pre-1970 construction: suspected hazardous materials, specialist testing recommended")
	}

	return types.Classification{
		Category:  category,
		Class:     class,
		Rationale: rationale,
	}, nil
}
