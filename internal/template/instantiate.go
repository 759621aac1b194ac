package template

import (
	"fmt"
	"math"

	"github.com/fabworks/bomcost/internal/bom"
	"github.com/fabworks/bomcost/internal/formula"
	"github.com/fabworks/bomcost/internal/material"
	"github.com/fabworks/bomcost/internal/model"
	"github.com/fabworks/bomcost/internal/shape"
)

// Instantiate expands a template with one parameter set into a concrete,
// fully calculated BOM tree. It is all-or-nothing: every formula is resolved
// and every leaf calculated before any tree is returned, so a failure never
// leaves a partial tree behind.
func Instantiate(def *Definition, params map[string]float64, shapes *shape.Library, materials material.Lookup, rates model.CostRates) (*model.BOMTree, error) {
	env, err := bindTemplateParams(def, params)
	if err != nil {
		return nil, err
	}

	inst := &instantiation{
		env:       env,
		shapes:    shapes,
		materials: materials,
		rates:     rates,
		matCache:  make(map[string]model.MaterialRef),
	}
	roots, err := inst.resolve(&def.Root)
	if err != nil {
		return nil, err
	}
	if len(roots) != 1 {
		return nil, &TemplateError{Kind: ErrUnresolvable, Item: def.Root.Name, Msg: "root count must resolve to 1"}
	}
	return buildTree(roots[0])
}

// bindTemplateParams validates the supplied values against the declared
// template parameters and fills in defaults.
func bindTemplateParams(def *Definition, params map[string]float64) (map[string]float64, error) {
	env := make(map[string]float64, len(def.Parameters))
	for _, spec := range def.Parameters {
		value, bound := params[spec.Name]
		if !bound {
			if spec.Default != nil {
				env[spec.Name] = *spec.Default
				continue
			}
			if spec.Required {
				return nil, &TemplateError{Kind: ErrMissingParameter, Param: spec.Name, Msg: "required parameter not supplied"}
			}
			continue
		}
		if err := spec.CheckValue(value); err != nil {
			return nil, &TemplateError{Kind: ErrOutOfRange, Param: spec.Name, Msg: err.Error()}
		}
		env[spec.Name] = value
	}
	for name := range params {
		if !declares(def, name) {
			return nil, &TemplateError{Kind: ErrUnresolvable, Param: name, Msg: "not declared by template"}
		}
	}
	return env, nil
}

func declares(def *Definition, name string) bool {
	for _, p := range def.Parameters {
		if p.Name == name {
			return true
		}
	}
	return false
}

// resolvedNode is one concrete item with its children, ready to be attached
// into a tree.
type resolvedNode struct {
	item     *model.BOMItem
	children []*resolvedNode
}

type instantiation struct {
	env       map[string]float64
	shapes    *shape.Library
	materials material.Lookup
	rates     model.CostRates
	matCache  map[string]model.MaterialRef
}

// resolve expands one placeholder into its count copies, evaluating every
// formula and calculating every shape leaf.
func (in *instantiation) resolve(p *PlaceholderItem) ([]*resolvedNode, error) {
	count := 1
	if p.CountFormula != "" {
		raw, err := in.eval(p, "count", p.CountFormula)
		if err != nil {
			return nil, err
		}
		count = int(math.Round(raw))
		if count < 1 || math.Abs(raw-float64(count)) > 1e-9 {
			return nil, &TemplateError{Kind: ErrUnresolvable, Item: p.Name,
				Msg: fmt.Sprintf("count formula %q yields %g, want a positive whole number", p.CountFormula, raw)}
		}
	}

	quantity := 1.0
	if p.QuantityFormula != "" {
		q, err := in.eval(p, "quantity", p.QuantityFormula)
		if err != nil {
			return nil, err
		}
		if q <= 0 {
			return nil, &TemplateError{Kind: ErrUnresolvable, Item: p.Name,
				Msg: fmt.Sprintf("quantity formula %q yields %g, want a positive value", p.QuantityFormula, q)}
		}
		quantity = q
	}

	nodes := make([]*resolvedNode, 0, count)
	for i := 0; i < count; i++ {
		name := p.Name
		if count > 1 {
			name = fmt.Sprintf("%s %d", p.Name, i+1)
		}
		item := model.NewBOMItem(name, p.Kind)
		item.Quantity = quantity
		item.WastagePct = p.WastagePct
		if p.Fabrication != nil {
			fab := *p.Fabrication
			item.Fabrication = &fab
		}
		if p.BoughtOut != nil {
			bo := *p.BoughtOut
			item.BoughtOut = &bo
		}

		if p.ShapeID != "" {
			if err := in.resolveShape(p, item); err != nil {
				return nil, err
			}
		}

		node := &resolvedNode{item: item}
		for c := range p.Children {
			children, err := in.resolve(&p.Children[c])
			if err != nil {
				return nil, err
			}
			node.children = append(node.children, children...)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// resolveShape evaluates the placeholder's parameter formulas and runs the
// full instance calculation so the returned tree carries derived results.
func (in *instantiation) resolveShape(p *PlaceholderItem, item *model.BOMItem) error {
	def := in.shapes.Get(p.ShapeID)
	if def == nil {
		return &TemplateError{Kind: ErrUnresolvable, Item: p.Name, Msg: fmt.Sprintf("shape %q not found", p.ShapeID)}
	}

	resolved := make(map[string]float64, len(p.ParamFormulas))
	for name, src := range p.ParamFormulas {
		value, err := in.eval(p, "parameter "+name, src)
		if err != nil {
			return err
		}
		resolved[name] = value
	}

	mat, err := in.lookupMaterial(p.MaterialID)
	if err != nil {
		return &TemplateError{Kind: ErrUnresolvable, Item: p.Name, Msg: err.Error()}
	}

	result, err := shape.Calculate(def, shape.CalcRequest{
		Params:      resolved,
		Material:    mat,
		Quantity:    item.Quantity,
		WastagePct:  item.WastagePct,
		Fabrication: item.Fabrication,
		Rates:       in.rates,
	})
	if err != nil {
		return &TemplateError{Kind: ErrUnresolvable, Item: p.Name, Msg: err.Error()}
	}

	item.Shape = &model.ShapeInstance{
		ShapeID:      p.ShapeID,
		ShapeVersion: def.Version,
		Params:       resolved,
		MaterialID:   p.MaterialID,
		Result:       result,
	}
	return nil
}

func (in *instantiation) eval(p *PlaceholderItem, label, src string) (float64, error) {
	expr, err := formula.Parse(src)
	if err != nil {
		return 0, &TemplateError{Kind: ErrUnresolvable, Item: p.Name, Msg: fmt.Sprintf("%s: %v", label, err)}
	}
	value, err := expr.Eval(in.env)
	if err != nil {
		return 0, &TemplateError{Kind: ErrUnresolvable, Item: p.Name, Msg: fmt.Sprintf("%s: %v", label, err)}
	}
	return value, nil
}

func (in *instantiation) lookupMaterial(id string) (model.MaterialRef, error) {
	if id == "" {
		return model.MaterialRef{}, fmt.Errorf("no material bound")
	}
	if mat, ok := in.matCache[id]; ok {
		return mat, nil
	}
	mat, err := in.materials.GetMaterial(id)
	if err != nil {
		return model.MaterialRef{}, err
	}
	in.matCache[id] = mat
	return mat, nil
}

// buildTree assembles the resolved nodes into a BOM tree through the
// regular attach path, so item numbering and structural invariants come out
// the same as for hand-built trees.
func buildTree(root *resolvedNode) (*model.BOMTree, error) {
	tree := model.NewBOMTree(root.item.Name)
	rootItem := tree.Root()
	rootItem.Quantity = root.item.Quantity
	rootItem.WastagePct = root.item.WastagePct
	rootItem.Fabrication = root.item.Fabrication

	var attach func(parentID string, node *resolvedNode) error
	attach = func(parentID string, node *resolvedNode) error {
		if err := bom.Attach(tree, parentID, node.item, tree.Version); err != nil {
			return err
		}
		for _, child := range node.children {
			if err := attach(node.item.ID, child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, child := range root.children {
		if err := attach(tree.RootID, child); err != nil {
			return nil, err
		}
	}
	return tree, nil
}
