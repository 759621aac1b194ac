package model

import (
	"math"
	"testing"
)

func TestQuantityConvert(t *testing.T) {
	cases := []struct {
		in   Quantity
		to   Unit
		want float64
	}{
		{Q(1500, UnitMillimeter), UnitMeter, 1.5},
		{Q(2.5, UnitMeter), UnitMillimeter, 2500},
		{Q(1e6, UnitSquareMM), UnitSquareMeter, 1},
		{Q(1e9, UnitCubicMM), UnitCubicMeter, 1},
		{Q(7.85, UnitGramPerCubicCM), UnitKgPerCubicMeter, 7850},
	}
	for _, c := range cases {
		got, err := c.in.Convert(c.to)
		if err != nil {
			t.Errorf("Convert(%v, %s) returned error: %v", c.in, c.to, err)
			continue
		}
		if math.Abs(got.Value-c.want) > 1e-9 {
			t.Errorf("Convert(%v, %s) = %g, want %g", c.in, c.to, got.Value, c.want)
		}
		if got.Unit != c.to {
			t.Errorf("Convert(%v, %s) carries unit %s", c.in, c.to, got.Unit)
		}
	}
}

func TestQuantityConvertSameUnit(t *testing.T) {
	q := Q(42, UnitKilogram)
	got, err := q.Convert(UnitKilogram)
	if err != nil {
		t.Fatalf("same-unit convert returned error: %v", err)
	}
	if got != q {
		t.Errorf("same-unit convert changed the quantity: %v -> %v", q, got)
	}
}

func TestQuantityConvertIncompatible(t *testing.T) {
	if _, err := Q(10, UnitMillimeter).Convert(UnitKilogram); err == nil {
		t.Error("expected an error converting mm to kg")
	}
	if _, err := Q(10, UnitSquareMM).Convert(UnitCubicMM); err == nil {
		t.Error("expected an error converting mm2 to mm3")
	}
}

func TestQuantityAdd(t *testing.T) {
	sum, err := Q(1.5, UnitKilogram).Add(Q(2.5, UnitKilogram))
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if sum.Value != 4 || sum.Unit != UnitKilogram {
		t.Errorf("expected 4 kg, got %v", sum)
	}

	if _, err := Q(1, UnitKilogram).Add(Q(1, UnitMillimeter)); err == nil {
		t.Error("expected an error adding kg to mm")
	}
}

func TestQuantityScale(t *testing.T) {
	q := Q(12.5, UnitMillimeter).Scale(4)
	if q.Value != 50 || q.Unit != UnitMillimeter {
		t.Errorf("expected 50 mm, got %v", q)
	}
}

func TestQuantityString(t *testing.T) {
	if s := Q(25.4, UnitMillimeter).String(); s != "25.4 mm" {
		t.Errorf("expected \"25.4 mm\", got %q", s)
	}
	if s := Q(3, UnitNone).String(); s != "3" {
		t.Errorf("unitless quantity should omit the unit, got %q", s)
	}
}
