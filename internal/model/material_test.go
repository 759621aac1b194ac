package model

import (
	"math"
	"testing"
)

func TestDensityKgM3(t *testing.T) {
	m := MaterialRef{Density: Q(7850, UnitKgPerCubicMeter)}
	d, err := m.DensityKgM3()
	if err != nil {
		t.Fatalf("DensityKgM3 returned error: %v", err)
	}
	if d != 7850 {
		t.Errorf("expected 7850, got %g", d)
	}

	// A catalog tagged in g/cm3 converts transparently.
	m = MaterialRef{Density: Q(7.85, UnitGramPerCubicCM)}
	d, err = m.DensityKgM3()
	if err != nil {
		t.Fatalf("DensityKgM3 returned error: %v", err)
	}
	if math.Abs(d-7850) > 1e-9 {
		t.Errorf("expected 7850 from g/cm3, got %g", d)
	}
}

func TestDensityKgM3BadUnit(t *testing.T) {
	m := MaterialRef{Density: Q(7850, UnitKilogram)}
	if _, err := m.DensityKgM3(); err == nil {
		t.Error("expected an error for a non-density unit")
	}
}

func TestFabricationCost(t *testing.T) {
	rates := CostRates{LaborRatePerHour: 40, WeldingRatePerMeter: 12, MachiningRatePerHour: 60}
	spec := FabricationSpec{LaborHours: 2, WeldLengthM: 3.5, MachiningHours: 0.5}

	got := spec.Cost(rates)
	want := 2*40.0 + 3.5*12.0 + 0.5*60.0
	if got != want {
		t.Errorf("expected %g, got %g", want, got)
	}
}

func TestFabricationCostZeroSpec(t *testing.T) {
	rates := CostRates{LaborRatePerHour: 40, WeldingRatePerMeter: 12, MachiningRatePerHour: 60}
	if got := (FabricationSpec{}).Cost(rates); got != 0 {
		t.Errorf("empty spec must cost nothing, got %g", got)
	}
}
