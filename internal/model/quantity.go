package model

import "fmt"

// Unit is a unit-of-measure symbol attached to a Quantity.
type Unit string

const (
	UnitNone            Unit = ""
	UnitMillimeter      Unit = "mm"
	UnitMeter           Unit = "m"
	UnitSquareMM        Unit = "mm2"
	UnitSquareMeter     Unit = "m2"
	UnitCubicMM         Unit = "mm3"
	UnitCubicMeter      Unit = "m3"
	UnitKilogram        Unit = "kg"
	UnitKgPerCubicMeter Unit = "kg/m3"
	UnitGramPerCubicCM  Unit = "g/cm3"
	UnitPercent         Unit = "%"
	UnitPieces          Unit = "pcs"
	UnitHour            Unit = "h"
)

// Quantity is a numeric value tagged with a unit symbol. Every formula input
// and output carries an explicit unit; mixing incompatible units is an error,
// never a silent coercion.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Q is a shorthand constructor for a Quantity.
func Q(value float64, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// conversions maps a (from, to) unit pair to a multiplicative factor.
var conversions = map[[2]Unit]float64{
	{UnitMillimeter, UnitMeter}:            1e-3,
	{UnitMeter, UnitMillimeter}:            1e3,
	{UnitSquareMM, UnitSquareMeter}:        1e-6,
	{UnitSquareMeter, UnitSquareMM}:        1e6,
	{UnitCubicMM, UnitCubicMeter}:          1e-9,
	{UnitCubicMeter, UnitCubicMM}:          1e9,
	{UnitGramPerCubicCM, UnitKgPerCubicMeter}: 1e3,
	{UnitKgPerCubicMeter, UnitGramPerCubicCM}: 1e-3,
}

// Convert returns the quantity expressed in the target unit.
// Converting between unrelated units is an error.
func (q Quantity) Convert(to Unit) (Quantity, error) {
	if q.Unit == to {
		return q, nil
	}
	factor, ok := conversions[[2]Unit{q.Unit, to}]
	if !ok {
		return Quantity{}, fmt.Errorf("cannot convert %s to %s", q.Unit, to)
	}
	return Quantity{Value: q.Value * factor, Unit: to}, nil
}

// Add returns the sum of two quantities. Both must carry the same unit.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if q.Unit != other.Unit {
		return Quantity{}, fmt.Errorf("unit mismatch: %s + %s", q.Unit, other.Unit)
	}
	return Quantity{Value: q.Value + other.Value, Unit: q.Unit}, nil
}

// Scale multiplies the quantity by a dimensionless factor.
func (q Quantity) Scale(factor float64) Quantity {
	return Quantity{Value: q.Value * factor, Unit: q.Unit}
}

func (q Quantity) String() string {
	if q.Unit == UnitNone {
		return fmt.Sprintf("%g", q.Value)
	}
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}

// Money is a monetary amount. Prices are always read from the material
// lookup at calculation time and never cached between calculations.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}
