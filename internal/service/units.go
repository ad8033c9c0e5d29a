package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/beaux-riel/UltraEdge-sub000/internal/model"
)

type unitDef struct {
	toBaseUnit float64
}

// volume (base = ml)
var volumeTable = map[string]unitDef{
	"ml":    {toBaseUnit: 1},
	"l":     {toBaseUnit: 1000},
	"tsp":   {toBaseUnit: 4.92892159375},
	"tbsp":  {toBaseUnit: 14.78676478125},
	"cup":   {toBaseUnit: 236.5882365},
	"fl-oz": {toBaseUnit: 29.5735295625},
	"oz":    {toBaseUnit: 29.5735295625},
}

// rule thresholds (base = hours, km)
var measureTable = map[model.Unit]unitDef{
	model.UnitHours:      {toBaseUnit: 1},
	model.UnitMinutes:    {toBaseUnit: 1.0 / 60},
	model.UnitKilometers: {toBaseUnit: 1},
	model.UnitMiles:      {toBaseUnit: 1.609344},
}

func resolveVolumeUnit(unit string) (unitDef, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	def, ok := volumeTable[u]
	return def, ok
}

// ConvertVolume converts a hydration volume between units. An empty unit is
// read as millilitres.
func ConvertVolume(value float64, fromUnit, toUnit string) (float64, error) {
	if value < 0 {
		return 0, fmt.Errorf("volume must be >= 0")
	}
	if strings.TrimSpace(fromUnit) == "" {
		fromUnit = "ml"
	}
	if strings.TrimSpace(toUnit) == "" {
		toUnit = "ml"
	}
	from, ok := resolveVolumeUnit(fromUnit)
	if !ok {
		return 0, fmt.Errorf("unsupported volume unit %q", fromUnit)
	}
	to, ok := resolveVolumeUnit(toUnit)
	if !ok {
		return 0, fmt.Errorf("unsupported volume unit %q", toUnit)
	}
	return value * from.toBaseUnit / to.toBaseUnit, nil
}

// ConvertMeasure converts a rule threshold between two units of the same
// dimension.
func ConvertMeasure(value float64, from, to model.Unit) (float64, error) {
	if from == to {
		return value, nil
	}
	switch {
	case from == model.UnitFahrenheit && to == model.UnitCelsius:
		return (value - 32) * 5 / 9, nil
	case from == model.UnitCelsius && to == model.UnitFahrenheit:
		return value*9/5 + 32, nil
	}
	f, okFrom := measureTable[from]
	t, okTo := measureTable[to]
	if !okFrom || !okTo {
		return 0, fmt.Errorf("cannot convert %s to %s", from, to)
	}
	for _, d := range []model.Dimension{model.DimensionTime, model.DimensionDistance} {
		if d.AcceptsUnit(from) != d.AcceptsUnit(to) {
			return 0, fmt.Errorf("cannot convert %s to %s", from, to)
		}
	}
	return value * f.toBaseUnit / t.toBaseUnit, nil
}

// ConvertRule re-expresses a rule's threshold in another unit of its dimension.
// Terrain rules and rules already in the unit are returned unchanged.
func ConvertRule(r model.Rule, to model.Unit) (model.Rule, error) {
	if r.Condition.Terrain() || r.Unit == to {
		return r, nil
	}
	if !r.Dimension.AcceptsUnit(to) {
		return model.Rule{}, fmt.Errorf("unit %q is not valid for %s rules", to, r.Dimension)
	}
	low, err := ConvertMeasure(r.Value.Low, r.Unit, to)
	if err != nil {
		return model.Rule{}, err
	}
	high, err := ConvertMeasure(r.Value.High, r.Unit, to)
	if err != nil {
		return model.Rule{}, err
	}
	r.Value.Low, r.Value.High = round2(low), round2(high)
	r.Unit = to
	return r, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
