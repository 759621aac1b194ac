package model

// MaterialRef carries the material properties needed for one calculation
// pass. It is supplied by the external material lookup per shape instance
// and never persisted inside a shape or BOM definition, since prices change.
type MaterialRef struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"` // e.g. "plate", "pipe", "bar"
	Density      Quantity `json:"density"`  // kg/m3
	PricePerUnit Money    `json:"price_per_unit"`
	PriceUnit    Unit     `json:"price_unit"` // unit the price applies to, normally kg
}

// DensityKgM3 returns the density in kg/m3 regardless of the tagged unit.
func (m MaterialRef) DensityKgM3() (float64, error) {
	q, err := m.Density.Convert(UnitKgPerCubicMeter)
	if err != nil {
		return 0, err
	}
	return q.Value, nil
}

// CostRates holds the fabrication and commercial multipliers supplied by the
// caller per invocation. They are business policy external to the
// calculation core; the engine applies them but does not default them.
type CostRates struct {
	LaborRatePerHour     float64 `json:"labor_rate_per_hour"`
	WeldingRatePerMeter  float64 `json:"welding_rate_per_meter"`
	MachiningRatePerHour float64 `json:"machining_rate_per_hour"`

	// Overhead and margin are applied exactly once, at the tree root.
	OverheadPct   float64 `json:"overhead_pct"`
	OverheadFixed float64 `json:"overhead_fixed"`
	MarginPct     float64 `json:"margin_pct"`
	TargetProfit  float64 `json:"target_profit"` // overrides MarginPct when non-zero
}

// FabricationSpec describes the fabrication work attached to one BOM item.
// The matching rates come from CostRates.
type FabricationSpec struct {
	LaborHours     float64 `json:"labor_hours"`
	WeldLengthM    float64 `json:"weld_length_m"`
	MachiningHours float64 `json:"machining_hours"`
}

// Cost computes the fabrication cost of the spec under the given rates.
func (f FabricationSpec) Cost(rates CostRates) float64 {
	return f.LaborHours*rates.LaborRatePerHour +
		f.WeldLengthM*rates.WeldingRatePerMeter +
		f.MachiningHours*rates.MachiningRatePerHour
}
