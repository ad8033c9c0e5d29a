package model

import (
	"fmt"
	"strings"
	"time"
)

// PlanKind selects which entry type a stored plan holds.
type PlanKind string

const (
	PlanKindNutrition PlanKind = "nutrition"
	PlanKindHydration PlanKind = "hydration"
)

func ParsePlanKind(s string) (PlanKind, error) {
	k := PlanKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case PlanKindNutrition, PlanKindHydration:
		return k, nil
	}
	return "", fmt.Errorf("unsupported plan kind %q (use nutrition or hydration)", s)
}

// Entry is implemented by the entry variants a plan can hold. MaxWith returns the
// receiver with each numeric field raised to the larger of the two values; every
// other field keeps the receiver's value.
type Entry[E any] interface {
	IdentityKey() string
	MaxWith(other E) E
}

type NutritionEntry struct {
	ID             string  `json:"id" yaml:"id"`
	FoodType       string  `json:"food_type" yaml:"food_type"`
	Calories       float64 `json:"calories,omitempty" yaml:"calories,omitempty"`
	Carbs          float64 `json:"carbs,omitempty" yaml:"carbs,omitempty"`
	Protein        float64 `json:"protein,omitempty" yaml:"protein,omitempty"`
	Fat            float64 `json:"fat,omitempty" yaml:"fat,omitempty"`
	Sodium         float64 `json:"sodium,omitempty" yaml:"sodium,omitempty"`
	Potassium      float64 `json:"potassium,omitempty" yaml:"potassium,omitempty"`
	Magnesium      float64 `json:"magnesium,omitempty" yaml:"magnesium,omitempty"`
	Timing         string  `json:"timing,omitempty" yaml:"timing,omitempty"`
	Frequency      string  `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Quantity       float64 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	SourceLocation string  `json:"source_location,omitempty" yaml:"source_location,omitempty"`
	Essential      bool    `json:"essential,omitempty" yaml:"essential,omitempty"`
	Notes          string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (e NutritionEntry) IdentityKey() string { return e.FoodType }

func (e NutritionEntry) MaxWith(o NutritionEntry) NutritionEntry {
	e.Calories = max(e.Calories, o.Calories)
	e.Carbs = max(e.Carbs, o.Carbs)
	e.Protein = max(e.Protein, o.Protein)
	e.Fat = max(e.Fat, o.Fat)
	e.Sodium = max(e.Sodium, o.Sodium)
	e.Potassium = max(e.Potassium, o.Potassium)
	e.Magnesium = max(e.Magnesium, o.Magnesium)
	return e
}

type Electrolytes struct {
	Sodium    float64 `json:"sodium,omitempty" yaml:"sodium,omitempty"`
	Potassium float64 `json:"potassium,omitempty" yaml:"potassium,omitempty"`
	Magnesium float64 `json:"magnesium,omitempty" yaml:"magnesium,omitempty"`
}

type HydrationEntry struct {
	ID              string       `json:"id" yaml:"id"`
	LiquidType      string       `json:"liquid_type" yaml:"liquid_type"`
	Volume          float64      `json:"volume,omitempty" yaml:"volume,omitempty"`
	VolumeUnit      string       `json:"volume_unit,omitempty" yaml:"volume_unit,omitempty"`
	Electrolytes    Electrolytes `json:"electrolytes" yaml:"electrolytes"`
	Timing          string       `json:"timing,omitempty" yaml:"timing,omitempty"`
	Frequency       string       `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	ConsumptionRate string       `json:"consumption_rate,omitempty" yaml:"consumption_rate,omitempty"`
	Temperature     string       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	SourceLocation  string       `json:"source_location,omitempty" yaml:"source_location,omitempty"`
	ContainerType   string       `json:"container_type,omitempty" yaml:"container_type,omitempty"`
}

func (e HydrationEntry) IdentityKey() string { return e.LiquidType }

// MaxWith compares raw volumes; units are not reconciled.
func (e HydrationEntry) MaxWith(o HydrationEntry) HydrationEntry {
	e.Volume = max(e.Volume, o.Volume)
	e.Electrolytes.Sodium = max(e.Electrolytes.Sodium, o.Electrolytes.Sodium)
	e.Electrolytes.Potassium = max(e.Electrolytes.Potassium, o.Electrolytes.Potassium)
	e.Electrolytes.Magnesium = max(e.Electrolytes.Magnesium, o.Electrolytes.Magnesium)
	return e
}

// RaceContext describes the race a plan is built for.
type RaceContext struct {
	RaceType         string `json:"race_type,omitempty" yaml:"race_type,omitempty"`
	RaceDuration     string `json:"race_duration,omitempty" yaml:"race_duration,omitempty"`
	TerrainType      string `json:"terrain_type,omitempty" yaml:"terrain_type,omitempty"`
	WeatherCondition string `json:"weather_condition,omitempty" yaml:"weather_condition,omitempty"`
	IntensityLevel   string `json:"intensity_level,omitempty" yaml:"intensity_level,omitempty"`
}

type Plan[E Entry[E]] struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	RaceContext `yaml:",inline"`
	Entries     []E    `json:"entries" yaml:"entries"`
	Rules       []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

type (
	NutritionPlan = Plan[NutritionEntry]
	HydrationPlan = Plan[HydrationEntry]
)

// PlanHeader is a stored plan without its entries or rules.
type PlanHeader struct {
	ID          string
	Kind        PlanKind
	Name        string
	Description string
	RaceContext
	EntryCount int
	RuleCount  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
