// Package units converts raw field measurements into canonical metric
// quantities and validates their ranges. Every downstream stage works in
// metres, square metres, and cubic metres; nothing past this package ever
// sees an imperial value.
package units

import (
	"fmt"

	"github.com/mfairbank/restocalc/internal/types"
)

// LengthUnit tags a raw dimension with the unit it was recorded in.
type LengthUnit string

const (
	Metres      LengthUnit = "m"
	Centimetres LengthUnit = "cm"
	Millimetres LengthUnit = "mm"
	Feet        LengthUnit = "ft"
	Inches      LengthUnit = "in"
)

// metresPer maps each supported unit to its length in metres.
var metresPer = map[LengthUnit]float64{
	Metres:      1.0,
	Centimetres: 0.01,
	Millimetres: 0.001,
	Feet:        0.3048,
	Inches:      0.0254,
}

// Dimension is a single raw length measurement.
type Dimension struct {
	Value float64    `json:"value"`
	Unit  LengthUnit `json:"unit"`
}

// RawArea is one inspection area exactly as the technician recorded it.
type RawArea struct {
	Label         string    `json:"label"`
	Length        Dimension `json:"length"`
	Width         Dimension `json:"width"`
	Height        Dimension `json:"height"`
	WetPercentage float64   `json:"wet_percentage"`
}

// ValidationError reports a raw input that falls outside its permitted
// range. The whole area entry is rejected; values are never clamped.
type ValidationError struct {
	Area       string
	Field      string
	Value      float64
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("area %q: field %s = %v violates constraint %s", e.Area, e.Field, e.Value, e.Constraint)
}

// ToMetres converts a dimension to metres.
func ToMetres(d Dimension) (float64, error) {
	factor, ok := metresPer[d.Unit]
	if !ok {
		return 0, fmt.Errorf("unknown length unit %q", d.Unit)
	}
	return d.Value * factor, nil
}

// Normalize converts one raw area into a canonical MeasurementSet,
// computing floor area, volume, and the wet-weighted affected quantities.
func Normalize(raw RawArea) (types.MeasurementSet, error) {
	var ms types.MeasurementSet

	dims := []struct {
		name string
		dim  Dimension
		dst  *float64
	}{
		{"length", raw.Length, &ms.Length},
		{"width", raw.Width, &ms.Width},
		{"height", raw.Height, &ms.Height},
	}

	for _, d := range dims {
		metres, err := ToMetres(d.dim)
		if err != nil {
			return types.MeasurementSet{}, &ValidationError{
				Area: raw.Label, Field: d.name, Value: d.dim.Value,
				Constraint: fmt.Sprintf("unit must be one of m, cm, mm, ft, in (got %q)", d.dim.Unit),
			}
		}
		if metres <= 0 {
			return types.MeasurementSet{}, &ValidationError{
				Area: raw.Label, Field: d.name, Value: d.dim.Value,
				Constraint: "> 0",
			}
		}
		*d.dst = metres
	}

	if raw.WetPercentage < 0 || raw.WetPercentage > 100 {
		return types.MeasurementSet{}, &ValidationError{
			Area: raw.Label, Field: "wet_percentage", Value: raw.WetPercentage,
			Constraint: "0 <= wet_percentage <= 100",
		}
	}

	ms.Label = raw.Label
	ms.WetPercentage = raw.WetPercentage
	ms.FloorArea = ms.Length * ms.Width
	ms.Volume = ms.FloorArea * ms.Height
	ms.AffectedFloorArea = ms.FloorArea * raw.WetPercentage / 100.0
	ms.AffectedVolume = ms.Volume * raw.WetPercentage / 100.0

	return ms, nil
}

// NormalizeAll normalizes every raw area, failing on the first invalid one.
func NormalizeAll(raws []RawArea) ([]types.MeasurementSet, error) {
	if len(raws) == 0 {
		return nil, &ValidationError{Field: "areas", Constraint: "at least one inspection area required"}
	}
	out := make([]types.MeasurementSet, 0, len(raws))
	for _, raw := range raws {
		ms, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ms)
	}
	return out, nil
}
