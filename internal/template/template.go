// Package template stores parameterized BOM structures and expands them
// into concrete trees. A template is a placeholder hierarchy whose shape
// parameters, quantities, and copy counts are formulas over named template
// parameters; instantiation substitutes one parameter set and calculates
// every resulting leaf.
package template

import (
	"fmt"
	"time"

	"github.com/fabworks/bomcost/internal/formula"
	"github.com/fabworks/bomcost/internal/model"
	"github.com/google/uuid"
)

// PlaceholderItem is one node of a template structure. Formula fields are
// evaluated against the template parameters at instantiation time; a
// CountFormula greater than one expands the placeholder into that many
// sibling items.
type PlaceholderItem struct {
	Name          string            `json:"name"`
	Kind          model.ItemKind    `json:"kind"`
	ShapeID       string            `json:"shape_id,omitempty"`
	ParamFormulas map[string]string `json:"param_formulas,omitempty"`
	MaterialID    string            `json:"material_id,omitempty"`

	QuantityFormula string `json:"quantity_formula,omitempty"` // empty means 1
	CountFormula    string `json:"count_formula,omitempty"`    // empty means 1

	WastagePct  float64                `json:"wastage_pct,omitempty"`
	Fabrication *model.FabricationSpec `json:"fabrication,omitempty"`
	BoughtOut   *model.BoughtOutSpec   `json:"bought_out,omitempty"`

	Children []PlaceholderItem `json:"children,omitempty"`
}

// Definition is a stored, reusable BOM template.
type Definition struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	CreatedAt   string                `json:"created_at"`
	UpdatedAt   string                `json:"updated_at"`
	Parameters  []model.ParameterSpec `json:"parameters"`
	Root        PlaceholderItem       `json:"root"`
}

// NewDefinition creates a template with a generated id and timestamps.
func NewDefinition(name, description string, params []model.ParameterSpec, root PlaceholderItem) *Definition {
	now := time.Now().UTC().Format(time.RFC3339)
	return &Definition{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Parameters:  params,
		Root:        root,
	}
}

// paramNames returns the declared template parameter names.
func (d *Definition) paramNames() []string {
	names := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		names[i] = p.Name
	}
	return names
}

// Validate checks every formula in the placeholder tree against the declared
// template parameters. Authoring mistakes are caught here, at definition
// time, so an instantiation can only fail on the supplied values.
func (d *Definition) Validate() error {
	if d.Root.Kind != model.KindAssembly {
		return fmt.Errorf("template %q: root must be an assembly", d.Name)
	}
	names := d.paramNames()
	return validatePlaceholder(&d.Root, names)
}

func validatePlaceholder(p *PlaceholderItem, paramNames []string) error {
	check := func(label, src string) error {
		if src == "" {
			return nil
		}
		if err := formula.Validate(src, paramNames, nil); err != nil {
			return fmt.Errorf("item %q, %s: %w", p.Name, label, err)
		}
		return nil
	}
	if err := check("quantity", p.QuantityFormula); err != nil {
		return err
	}
	if err := check("count", p.CountFormula); err != nil {
		return err
	}
	for name, src := range p.ParamFormulas {
		if err := check("parameter "+name, src); err != nil {
			return err
		}
	}
	if p.Kind != model.KindAssembly && len(p.Children) > 0 {
		return fmt.Errorf("item %q: only assemblies may have children", p.Name)
	}
	for i := range p.Children {
		if err := validatePlaceholder(&p.Children[i], paramNames); err != nil {
			return err
		}
	}
	return nil
}

// Store holds a collection of templates.
type Store struct {
	Templates []*Definition `json:"templates"`
}

// NewStore creates an empty template store.
func NewStore() *Store {
	return &Store{Templates: []*Definition{}}
}

// Add validates a template and adds it to the store.
func (s *Store) Add(d *Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.Templates = append(s.Templates, d)
	return nil
}

// Remove removes a template by id. Returns true if found and removed.
func (s *Store) Remove(id string) bool {
	for i, d := range s.Templates {
		if d.ID == id {
			s.Templates = append(s.Templates[:i], s.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns the template with the given id, or nil.
func (s *Store) FindByID(id string) *Definition {
	for _, d := range s.Templates {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// FindByName returns the first template with the given name, or nil.
func (s *Store) FindByName(name string) *Definition {
	for _, d := range s.Templates {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Names returns the template names in store order.
func (s *Store) Names() []string {
	names := make([]string, len(s.Templates))
	for i, d := range s.Templates {
		names[i] = d.Name
	}
	return names
}
