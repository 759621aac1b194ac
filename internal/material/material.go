// Package material supplies density and price data for material
// identifiers. The engine consumes it as a read-only lookup per calculation
// pass and never caches a price beyond one pass.
package material

import (
	"fmt"

	"github.com/fabworks/bomcost/internal/model"
	"github.com/google/uuid"
)

// Lookup resolves a material id to its current properties. Implementations
// are expected to be synchronous reads; callers may cache results for the
// duration of a single calculation pass.
type Lookup interface {
	GetMaterial(id string) (model.MaterialRef, error)
}

// NotFoundError reports an unknown material id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("material %q not found", e.ID)
}

// Catalog is an in-memory Lookup backed by a material list.
type Catalog struct {
	Materials []model.MaterialRef `json:"materials"`
}

// DefaultCatalog returns a catalog populated with common engineering
// materials. Densities in kg/m3, prices per kg.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Materials: []model.MaterialRef{
			newMaterial("cs-plate", "Carbon Steel IS2062", "plate", 7850, 0.85),
			newMaterial("ss304-plate", "Stainless Steel SA240 304", "plate", 8000, 3.80),
			newMaterial("ss316-plate", "Stainless Steel SA240 316L", "plate", 8000, 5.20),
			newMaterial("cs-pipe", "Carbon Steel SA106 Gr.B", "pipe", 7850, 1.10),
			newMaterial("ss304-pipe", "Stainless Steel SA312 TP304", "pipe", 8000, 4.40),
			newMaterial("cs-bar", "Carbon Steel EN8 Bar", "bar", 7850, 0.95),
			newMaterial("al-plate", "Aluminium 6061", "plate", 2700, 4.10),
			newMaterial("cu-plate", "Copper C101", "plate", 8960, 9.50),
		},
	}
}

func newMaterial(id, name, category string, density, pricePerKg float64) model.MaterialRef {
	return model.MaterialRef{
		ID:           id,
		Name:         name,
		Category:     category,
		Density:      model.Q(density, model.UnitKgPerCubicMeter),
		PricePerUnit: model.Money{Amount: pricePerKg},
		PriceUnit:    model.UnitKilogram,
	}
}

// GetMaterial implements Lookup.
func (c *Catalog) GetMaterial(id string) (model.MaterialRef, error) {
	for _, m := range c.Materials {
		if m.ID == id {
			return m, nil
		}
	}
	return model.MaterialRef{}, &NotFoundError{ID: id}
}

// Add inserts a material, generating an id when none is set.
func (c *Catalog) Add(m model.MaterialRef) model.MaterialRef {
	if m.ID == "" {
		m.ID = uuid.New().String()[:8]
	}
	c.Materials = append(c.Materials, m)
	return m
}

// FindByName returns a pointer to the first material with the given name, or nil.
func (c *Catalog) FindByName(name string) *model.MaterialRef {
	for i := range c.Materials {
		if c.Materials[i].Name == name {
			return &c.Materials[i]
		}
	}
	return nil
}

// Names returns the material names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Materials))
	for i, m := range c.Materials {
		names[i] = m.Name
	}
	return names
}
