// Package psychro derives dew point, vapor pressure, grains-per-pound, and
// a 0-100 drying index from an ambient temperature/humidity reading.
//
// Vapor pressure uses a Magnus-form approximation with the Sonntag
// coefficients, accurate to better than 0.1% over the habitable range.
package psychro

import (
	"fmt"
	"math"

	"github.com/mfairbank/restocalc/internal/types"
)

// Magnus coefficients (Sonntag 1990, over water).
const (
	magnusA = 17.62
	magnusB = 243.12 // °C
)

// Standard sea-level pressure used for humidity-ratio calculations.
const standardPressurePa = 101325.0

// grainsPerKgPerKg converts a mass humidity ratio (kg/kg) to grains of
// moisture per pound of dry air.
const grainsPerKgPerKg = 7000.0

// Policy holds the configurable cutoffs behind the drying verdict. These
// are product policy, not physics: FullScaleGPP anchors a GPP depression
// that counts as "maximum evaporation potential", and the system factors
// discount the index for recirculated-air chambers.
type Policy struct {
	FullScaleGPP       float64 `yaml:"full_scale_gpp" json:"full_scale_gpp"`
	ClosedSystemFactor float64 `yaml:"closed_system_factor" json:"closed_system_factor"`
	GoodThreshold      int     `yaml:"good_threshold" json:"good_threshold"`
	FairThreshold      int     `yaml:"fair_threshold" json:"fair_threshold"`
}

// DefaultPolicy returns the shipped drying-index cutoffs.
func DefaultPolicy() Policy {
	return Policy{
		FullScaleGPP:       80.0,
		ClosedSystemFactor: 0.85,
		GoodThreshold:      60,
		FairThreshold:      30,
	}
}

// Recommendation strings keyed by status. Fixed text, surfaced verbatim in
// generated reports.
var recommendations = map[types.DryingStatus]string{
	types.DryingGood: "Strong evaporation potential. Maintain current airflow and monitor daily.",
	types.DryingFair: "Moderate evaporation potential. Verify dehumidifier sizing and consider supplemental heat.",
	types.DryingPoor: "Air saturated or cold. Minimal evaporation. Action: Increase heat or dehumidification.",
}

// ValidationError reports an ambient reading outside the plausible range.
type ValidationError struct {
	Field      string
	Value      float64
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("psychrometric reading: %s = %v violates constraint %s", e.Field, e.Value, e.Constraint)
}

// SaturationVaporPressure returns the saturation vapor pressure in Pa at
// temperature t (°C).
func SaturationVaporPressure(t float64) float64 {
	return 611.2 * math.Exp(magnusA*t/(magnusB+t))
}

// DewPoint returns the dew point (°C) for temperature t (°C) and relative
// humidity rh (percent). At zero humidity the Magnus inversion collapses
// to its -B asymptote, which is returned directly to keep the result
// finite.
func DewPoint(t, rh float64) float64 {
	if rh <= 0 {
		return -magnusB
	}
	alpha := math.Log(rh/100.0) + magnusA*t/(magnusB+t)
	return magnusB * alpha / (magnusA - alpha)
}

// GrainsPerPound returns the humidity ratio in grains of moisture per pound
// of dry air for a given vapor pressure (Pa) at standard pressure.
func GrainsPerPound(vaporPressurePa float64) float64 {
	w := 0.62198 * vaporPressurePa / (standardPressurePa - vaporPressurePa)
	return w * grainsPerKgPerKg
}

// Calculate derives the full psychrometric result for one ambient reading.
func Calculate(r types.PsychrometricReading, pol Policy) (types.PsychrometricResult, error) {
	if r.TemperatureC < -20 || r.TemperatureC > 60 {
		return types.PsychrometricResult{}, &ValidationError{
			Field: "temperature_c", Value: r.TemperatureC, Constraint: "-20 <= t <= 60",
		}
	}
	if r.RelativeHumidity < 0 || r.RelativeHumidity > 100 {
		return types.PsychrometricResult{}, &ValidationError{
			Field: "relative_humidity", Value: r.RelativeHumidity, Constraint: "0 <= rh <= 100",
		}
	}
	switch r.System {
	case types.SystemOpen, types.SystemClosed:
	default:
		return types.PsychrometricResult{}, &ValidationError{
			Field: "system", Constraint: `system must be "open" or "closed"`,
		}
	}

	es := SaturationVaporPressure(r.TemperatureC)
	e := es * r.RelativeHumidity / 100.0

	gppSat := GrainsPerPound(es)
	gpp := GrainsPerPound(e)
	depression := gppSat - gpp

	factor := 1.0
	if r.System == types.SystemClosed {
		factor = pol.ClosedSystemFactor
	}

	raw := depression / pol.FullScaleGPP * 100.0
	if raw > 100 {
		raw = 100
	}
	if raw < 0 {
		raw = 0
	}
	index := int(math.Round(raw * factor))

	var status types.DryingStatus
	switch {
	case index >= pol.GoodThreshold:
		status = types.DryingGood
	case index >= pol.FairThreshold:
		status = types.DryingFair
	default:
		status = types.DryingPoor
	}

	return types.PsychrometricResult{
		DewPointC:        DewPoint(r.TemperatureC, r.RelativeHumidity),
		VaporPressureHPa: e / 100.0,
		VaporDeficitHPa:  (es - e) / 100.0,
		GPP:              gpp,
		GPPDepression:    depression,
		DryingIndex:      index,
		Status:           status,
		Recommendation:   recommendations[status],
	}, nil
}
