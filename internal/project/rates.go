package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fabworks/bomcost/internal/model"
)

// DefaultRatesPath returns the default path for the cost rates file.
func DefaultRatesPath() string {
	return filepath.Join(DefaultDataDir(), "rates.json")
}

// DefaultRates returns the shipped cost rate configuration. The engine
// itself never defaults rates; these are only the starting point written to
// a fresh data directory.
func DefaultRates() model.CostRates {
	return model.CostRates{
		LaborRatePerHour:     40,
		WeldingRatePerMeter:  12,
		MachiningRatePerHour: 60,
		OverheadPct:          10,
		MarginPct:            8,
	}
}

// SaveRates persists cost rates to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveRates(path string, rates model.CostRates) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rates, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadRates reads cost rates from the given path.
// If the file does not exist, it returns DefaultRates with no error.
func LoadRates(path string) (model.CostRates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRates(), nil
		}
		return model.CostRates{}, err
	}
	var rates model.CostRates
	if err := json.Unmarshal(data, &rates); err != nil {
		return model.CostRates{}, err
	}
	return rates, nil
}
