package model

import "fmt"

// ParamKind identifies how a parameter value is interpreted.
type ParamKind string

const (
	ParamNumeric ParamKind = "numeric"
	ParamChoice  ParamKind = "choice"
	ParamBool    ParamKind = "boolean"
)

// ParameterSpec declares one input of a shape or template. Specs are defined
// once per definition and are immutable after the definition is published;
// formulas reference them by name.
type ParameterSpec struct {
	Name     string    `json:"name"`
	Unit     Unit      `json:"unit"`
	Kind     ParamKind `json:"kind"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Default  *float64  `json:"default,omitempty"`
	Required bool      `json:"required"`
	Choices  []string  `json:"choices,omitempty"` // allowed values for ParamChoice
}

// NumSpec builds a required numeric ParameterSpec with optional bounds.
func NumSpec(name string, unit Unit, min, max float64) ParameterSpec {
	return ParameterSpec{Name: name, Unit: unit, Kind: ParamNumeric, Min: &min, Max: &max, Required: true}
}

// OptSpec builds an optional numeric ParameterSpec with a default value.
func OptSpec(name string, unit Unit, min, max, def float64) ParameterSpec {
	return ParameterSpec{Name: name, Unit: unit, Kind: ParamNumeric, Min: &min, Max: &max, Default: &def}
}

// CheckValue validates a bound value against the spec's bounds.
func (ps ParameterSpec) CheckValue(v float64) error {
	if ps.Min != nil && v < *ps.Min {
		return &ParameterError{Name: ps.Name, Value: v, Reason: fmt.Sprintf("below minimum %g %s", *ps.Min, ps.Unit)}
	}
	if ps.Max != nil && v > *ps.Max {
		return &ParameterError{Name: ps.Name, Value: v, Reason: fmt.Sprintf("above maximum %g %s", *ps.Max, ps.Unit)}
	}
	return nil
}

// ParameterError reports a missing or out-of-range bound value. It is fatal
// for the one calculation it occurs in but does not abort a whole-tree
// recompute; enclosing rollups carry a partial flag instead.
type ParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Name, e.Reason)
}

// FormulaDefinition is a named textual expression with its declared result
// unit. Variables must resolve against the enclosing parameter set or the
// declared constants; this is checked when the definition is published, not
// only at evaluation time. ExpectedMin/ExpectedMax declare a dimensional
// sanity band: results outside it evaluate successfully but carry a warning.
type FormulaDefinition struct {
	Name        string             `json:"name"`
	Expr        string             `json:"expr"`
	Constants   map[string]float64 `json:"constants,omitempty"`
	ResultUnit  Unit               `json:"result_unit"`
	ExpectedMin *float64           `json:"expected_min,omitempty"`
	ExpectedMax *float64           `json:"expected_max,omitempty"`
}

// Formula is a shorthand constructor for a FormulaDefinition.
func Formula(name, expr string, resultUnit Unit) FormulaDefinition {
	return FormulaDefinition{Name: name, Expr: expr, ResultUnit: resultUnit}
}
