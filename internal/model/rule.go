package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dimension is the measurement axis a rule condition is evaluated against.
type Dimension string

const (
	DimensionTime        Dimension = "time"
	DimensionDistance    Dimension = "distance"
	DimensionTemperature Dimension = "temperature"
)

var dimensions = []Dimension{DimensionTime, DimensionDistance, DimensionTemperature}

func (d Dimension) Valid() bool {
	for _, v := range dimensions {
		if d == v {
			return true
		}
	}
	return false
}

func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unsupported dimension %q (use time, distance, or temperature)", s)
	}
	return d, nil
}

// Condition is the operator applied to a dimension's measurement.
type Condition string

const (
	ConditionAfter      Condition = "after"
	ConditionBefore     Condition = "before"
	ConditionBetween    Condition = "between"
	ConditionEvery      Condition = "every"
	ConditionOnUphill   Condition = "on_uphill"
	ConditionOnDownhill Condition = "on_downhill"
	ConditionOnFlat     Condition = "on_flat"
	ConditionAbove      Condition = "above"
	ConditionBelow      Condition = "below"
)

var conditionsByDimension = map[Dimension][]Condition{
	DimensionTime:        {ConditionAfter, ConditionBefore, ConditionBetween, ConditionEvery},
	DimensionDistance:    {ConditionAfter, ConditionBefore, ConditionBetween, ConditionEvery, ConditionOnUphill, ConditionOnDownhill, ConditionOnFlat},
	DimensionTemperature: {ConditionAbove, ConditionBelow, ConditionBetween},
}

// Conditions returns the conditions a dimension accepts, in display order.
func (d Dimension) Conditions() []Condition {
	out := make([]Condition, len(conditionsByDimension[d]))
	copy(out, conditionsByDimension[d])
	return out
}

// Accepts reports whether c is a valid condition for d.
func (d Dimension) Accepts(c Condition) bool {
	for _, v := range conditionsByDimension[d] {
		if v == c {
			return true
		}
	}
	return false
}

func (c Condition) Valid() bool {
	for _, d := range dimensions {
		if d.Accepts(c) {
			return true
		}
	}
	return false
}

// Directional conditions trigger on one side of a threshold. Two rules with the
// same directional condition on the same target can collide.
func (c Condition) Directional() bool {
	switch c {
	case ConditionAfter, ConditionBefore, ConditionAbove, ConditionBelow:
		return true
	}
	return false
}

// Terrain conditions carry no threshold or unit.
func (c Condition) Terrain() bool {
	switch c {
	case ConditionOnUphill, ConditionOnDownhill, ConditionOnFlat:
		return true
	}
	return false
}

func ParseCondition(s string) (Condition, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	c := Condition(norm)
	if !c.Valid() {
		return "", fmt.Errorf("unsupported condition %q", s)
	}
	return c, nil
}

// Action is how a rule adjusts its target.
type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionSet      Action = "set"
)

func (a Action) Valid() bool {
	switch a {
	case ActionIncrease, ActionDecrease, ActionSet:
		return true
	}
	return false
}

func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unsupported action %q (use increase, decrease, or set)", s)
	}
	return a, nil
}

// Target is the nutrition or hydration quantity a rule adjusts.
type Target string

const (
	TargetCalories        Target = "calories"
	TargetCarbs           Target = "carbs"
	TargetProtein         Target = "protein"
	TargetFat             Target = "fat"
	TargetSodium          Target = "sodium"
	TargetPotassium       Target = "potassium"
	TargetMagnesium       Target = "magnesium"
	TargetWater           Target = "water"
	TargetFluidVolume     Target = "fluid_volume"
	TargetConsumptionRate Target = "consumption_rate"
)

var targets = []Target{
	TargetCalories, TargetCarbs, TargetProtein, TargetFat,
	TargetSodium, TargetPotassium, TargetMagnesium,
	TargetWater, TargetFluidVolume, TargetConsumptionRate,
}

func (t Target) Valid() bool {
	for _, v := range targets {
		if t == v {
			return true
		}
	}
	return false
}

func ParseTarget(s string) (Target, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")
	t := Target(norm)
	if !t.Valid() {
		return "", fmt.Errorf("unsupported target %q", s)
	}
	return t, nil
}

// Unit is the unit of a rule's threshold value.
type Unit string

const (
	UnitHours      Unit = "hours"
	UnitMinutes    Unit = "minutes"
	UnitMiles      Unit = "miles"
	UnitKilometers Unit = "km"
	UnitFahrenheit Unit = "fahrenheit"
	UnitCelsius    Unit = "celsius"
)

var unitsByDimension = map[Dimension][]Unit{
	DimensionTime:        {UnitHours, UnitMinutes},
	DimensionDistance:    {UnitMiles, UnitKilometers},
	DimensionTemperature: {UnitFahrenheit, UnitCelsius},
}

var unitAliases = map[string]Unit{
	"hours":      UnitHours,
	"hour":       UnitHours,
	"hr":         UnitHours,
	"h":          UnitHours,
	"minutes":    UnitMinutes,
	"minute":     UnitMinutes,
	"min":        UnitMinutes,
	"miles":      UnitMiles,
	"mile":       UnitMiles,
	"mi":         UnitMiles,
	"km":         UnitKilometers,
	"kilometers": UnitKilometers,
	"fahrenheit": UnitFahrenheit,
	"f":          UnitFahrenheit,
	"°f":         UnitFahrenheit,
	"celsius":    UnitCelsius,
	"c":          UnitCelsius,
	"°c":         UnitCelsius,
}

// AcceptsUnit reports whether u measures d.
func (d Dimension) AcceptsUnit(u Unit) bool {
	for _, v := range unitsByDimension[d] {
		if v == u {
			return true
		}
	}
	return false
}

// DefaultUnit is the unit assumed when a rule is authored without one.
func (d Dimension) DefaultUnit() Unit {
	units := unitsByDimension[d]
	if len(units) == 0 {
		return ""
	}
	return units[0]
}

func ParseUnit(s string) (Unit, error) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported unit %q", s)
	}
	return u, nil
}

// Symbol is the short display form of the unit.
func (u Unit) Symbol() string {
	switch u {
	case UnitFahrenheit:
		return "°F"
	case UnitCelsius:
		return "°C"
	case UnitMiles:
		return "mi"
	}
	return string(u)
}

// RuleValue is a single threshold, or a Low-High range for between conditions.
type RuleValue struct {
	Low   float64
	High  float64
	Range bool
}

func Threshold(v float64) RuleValue {
	return RuleValue{Low: v, High: v}
}

func Span(low, high float64) RuleValue {
	return RuleValue{Low: low, High: high, Range: true}
}

func (v RuleValue) String() string {
	low := strconv.FormatFloat(v.Low, 'f', -1, 64)
	if !v.Range {
		return low
	}
	return low + "-" + strconv.FormatFloat(v.High, 'f', -1, 64)
}

// ParseRuleValue accepts "2", "2-3", "2,3" or "2 to 3". Anything that parses as
// a single number ("-5", "1e-3") is a threshold; a leading minus is never a
// separator.
func ParseRuleValue(s string) (RuleValue, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return RuleValue{}, nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return Threshold(v), nil
	}
	for _, sep := range []string{" to ", ",", "-"} {
		idx := strings.Index(raw[1:], sep)
		if idx < 0 {
			continue
		}
		idx++
		low, err := strconv.ParseFloat(strings.TrimSpace(raw[:idx]), 64)
		if err != nil {
			return RuleValue{}, fmt.Errorf("invalid range %q", s)
		}
		high, err := strconv.ParseFloat(strings.TrimSpace(raw[idx+len(sep):]), 64)
		if err != nil {
			return RuleValue{}, fmt.Errorf("invalid range %q", s)
		}
		return Span(low, high), nil
	}
	return RuleValue{}, fmt.Errorf("invalid value %q", s)
}

func (v RuleValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *RuleValue) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*v = Threshold(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("rule value must be a number or string: %w", err)
	}
	parsed, err := ParseRuleValue(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v RuleValue) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

func (v *RuleValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: rule value must be a scalar", node.Line)
	}
	parsed, err := ParseRuleValue(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// Rule adjusts a nutrition or hydration target when its condition holds.
// Amount is absolute ("200") or a percentage ("10%").
type Rule struct {
	ID        string    `json:"id" yaml:"id"`
	Dimension Dimension `json:"dimension" yaml:"dimension"`
	Condition Condition `json:"condition" yaml:"condition"`
	Value     RuleValue `json:"value" yaml:"value"`
	Unit      Unit      `json:"unit,omitempty" yaml:"unit,omitempty"`
	Action    Action    `json:"action" yaml:"action"`
	Target    Target    `json:"target" yaml:"target"`
	Amount    string    `json:"amount" yaml:"amount"`
}

// Conflict is a pair of rules whose triggers coincide but whose actions differ.
// Indices are 1-based positions in the scanned list.
type Conflict struct {
	RuleAID    string `json:"rule_a_id"`
	RuleBID    string `json:"rule_b_id"`
	RuleAIndex int    `json:"rule_a_index"`
	RuleBIndex int    `json:"rule_b_index"`
	Message    string `json:"message"`
}
