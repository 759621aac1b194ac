// Package shape holds the catalog of parametric shape definitions and the
// calculator that turns bound parameters plus a material into physical and
// cost results.
package shape

import (
	"fmt"
	"sort"

	"github.com/fabworks/bomcost/internal/formula"
	"github.com/fabworks/bomcost/internal/model"
)

// Formula set keys. Absent area formulas mean "not applicable", which
// callers must distinguish from an area computed as zero.
const (
	FormulaVolume = "volume"
	FormulaWeight = "weight" // optional, overrides volume x density
	AreaTotal     = "area_total"
	AreaInner     = "area_inner"
	AreaOuter     = "area_outer"
	AreaWetted    = "area_wetted"
)

// BlankKind selects the stock-blank geometry.
type BlankKind string

const (
	BlankRect  BlankKind = "rect"
	BlankRound BlankKind = "round"
)

// BlankDefinition describes the stock blank a shape is cut from, e.g. a
// circular plate cut from a square blank. Dimension formulas yield mm; the
// finished-area formula yields m2.
type BlankDefinition struct {
	Kind           BlankKind               `json:"kind"`
	Length         model.FormulaDefinition `json:"length,omitempty"`   // rect blanks
	Width          model.FormulaDefinition `json:"width,omitempty"`    // rect blanks
	Diameter       model.FormulaDefinition `json:"diameter,omitempty"` // round blanks
	ThicknessParam string                  `json:"thickness_param"`
	FinishedArea   model.FormulaDefinition `json:"finished_area"`
}

// Definition is one parametric shape: a geometry category, an ordered
// parameter schema, and a validated formula set. Definitions are immutable
// once referenced by released BOMs; edits publish a new version so that
// historical calculations stay reproducible.
type Definition struct {
	ID                 string                             `json:"id"`
	Name               string                             `json:"name"`
	Category           string                             `json:"category"`
	Version            int                                `json:"version"`
	Parameters         []model.ParameterSpec              `json:"parameters"`
	Formulas           map[string]model.FormulaDefinition `json:"formulas"`
	Blank              *BlankDefinition                   `json:"blank,omitempty"`
	MaterialCategories []string                           `json:"material_categories,omitempty"`
}

// ParamNames returns the declared parameter names in order.
func (d *Definition) ParamNames() []string {
	names := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		names[i] = p.Name
	}
	return names
}

func (d *Definition) paramSpec(name string) *model.ParameterSpec {
	for i := range d.Parameters {
		if d.Parameters[i].Name == name {
			return &d.Parameters[i]
		}
	}
	return nil
}

// Validate checks the definition at authoring time: every variable every
// formula references must be a declared parameter or constant. Publishing a
// definition that fails here is blocked.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("shape definition has no id")
	}
	if _, ok := d.Formulas[FormulaVolume]; !ok {
		return fmt.Errorf("shape %q: missing volume formula", d.ID)
	}
	names := d.ParamNames()
	for key, fd := range d.Formulas {
		if err := formula.Validate(fd.Expr, names, fd.Constants); err != nil {
			return fmt.Errorf("shape %q formula %q: %w", d.ID, key, err)
		}
	}
	if d.Blank != nil {
		if d.paramSpec(d.Blank.ThicknessParam) == nil {
			return fmt.Errorf("shape %q: blank thickness parameter %q not declared", d.ID, d.Blank.ThicknessParam)
		}
		blankFormulas := []model.FormulaDefinition{d.Blank.FinishedArea}
		switch d.Blank.Kind {
		case BlankRect:
			blankFormulas = append(blankFormulas, d.Blank.Length, d.Blank.Width)
		case BlankRound:
			blankFormulas = append(blankFormulas, d.Blank.Diameter)
		default:
			return fmt.Errorf("shape %q: unknown blank kind %q", d.ID, d.Blank.Kind)
		}
		for _, fd := range blankFormulas {
			if err := formula.Validate(fd.Expr, names, fd.Constants); err != nil {
				return fmt.Errorf("shape %q blank formula %q: %w", d.ID, fd.Name, err)
			}
		}
	}
	return nil
}

// compatibleWith reports whether the definition accepts the material's
// category. An empty category list accepts anything.
func (d *Definition) compatibleWith(mat model.MaterialRef) bool {
	if len(d.MaterialCategories) == 0 {
		return true
	}
	for _, c := range d.MaterialCategories {
		if c == mat.Category {
			return true
		}
	}
	return false
}

// Library stores published shape definitions by id, keeping every version.
type Library struct {
	defs map[string][]*Definition // versions in publish order
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{defs: make(map[string][]*Definition)}
}

// Publish validates a definition and stores it as the next version of its
// id. Earlier versions remain accessible for released BOMs.
func (l *Library) Publish(def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	versions := l.defs[def.ID]
	def.Version = len(versions) + 1
	l.defs[def.ID] = append(versions, def)
	return nil
}

// Get returns the latest version of a definition, or nil.
func (l *Library) Get(id string) *Definition {
	versions := l.defs[id]
	if len(versions) == 0 {
		return nil
	}
	return versions[len(versions)-1]
}

// GetVersion returns a specific published version, or nil.
func (l *Library) GetVersion(id string, version int) *Definition {
	versions := l.defs[id]
	if version < 1 || version > len(versions) {
		return nil
	}
	return versions[version-1]
}

// IDs returns the sorted ids of all published definitions.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.defs))
	for id := range l.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Definitions returns every published version of every definition, ids
// sorted and versions in publish order. Re-publishing the slice into an
// empty library reproduces the same version numbering.
func (l *Library) Definitions() []*Definition {
	var defs []*Definition
	for _, id := range l.IDs() {
		defs = append(defs, l.defs[id]...)
	}
	return defs
}
