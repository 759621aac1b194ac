package bom

import (
	"fmt"

	"github.com/fabworks/bomcost/internal/material"
	"github.com/fabworks/bomcost/internal/model"
	"github.com/fabworks/bomcost/internal/shape"
)

// ItemTotals is the rolled-up contribution of one item's subtree.
type ItemTotals struct {
	Weight          float64 // kg, finished weight (wastage affects cost only)
	MaterialCost    float64
	FabricationCost float64
	Partial         bool
}

// Cost is the monetary total of the subtree.
func (it ItemTotals) Cost() float64 {
	return it.MaterialCost + it.FabricationCost
}

// Calculator rolls a BOM tree up bottom-to-top. It keeps per-item totals so
// that a single leaf edit only re-rolls the ancestor chain from that leaf to
// the root, an O(depth) update instead of a full traversal.
type Calculator struct {
	tree      *model.BOMTree
	shapes    *shape.Library
	materials material.Lookup
	rates     model.CostRates

	totals    map[string]ItemTotals
	errs      map[string]string
	matPass   map[string]model.MaterialRef // lookup cache, one calculation pass only
	version   int64                        // tree version the cache was built at
	structure int64                        // tree structure counter at the same point
}

// NewCalculator creates a calculator over the given tree. Material prices
// are read through the lookup on every pass and never kept across passes.
func NewCalculator(tree *model.BOMTree, shapes *shape.Library, materials material.Lookup, rates model.CostRates) *Calculator {
	return &Calculator{
		tree:      tree,
		shapes:    shapes,
		materials: materials,
		rates:     rates,
	}
}

// Rollup performs a full bottom-up aggregation and returns the tree summary.
// Leaf-level parameter or evaluation failures mark the summary partial
// instead of aborting, so an author sees which branch is broken while the
// rest of the totals stay correct.
func (c *Calculator) Rollup() model.BOMSummary {
	c.totals = make(map[string]ItemTotals, len(c.tree.Items))
	c.errs = make(map[string]string)
	c.matPass = make(map[string]model.MaterialRef)
	c.version = c.tree.Version
	c.structure = c.tree.Structure

	c.compute(c.tree.RootID)
	summary := c.summarize()
	c.matPass = nil // prices must not outlive the pass
	return summary
}

// RecalcSubtree recomputes the subtree rooted at itemID and re-rolls only
// the ancestor chain up to the root. It is valid after a single value edit
// confined to that subtree; a structural change (attach, move, remove) or
// several edits since the last pass falls back to a full rollup. Calling it
// twice without intervening changes yields identical results.
func (c *Calculator) RecalcSubtree(itemID string) (model.BOMSummary, error) {
	item := c.tree.Item(itemID)
	if item == nil {
		return model.BOMSummary{}, &StructuralError{ItemID: itemID, Msg: "item not found"}
	}
	// Mutations advance the version exactly once, so more than one step
	// since the last pass means edits this call cannot account for. A moved
	// or removed item also leaves a stale total under its old parent, so any
	// reshaping invalidates the cache outright.
	if c.totals == nil || c.tree.Structure != c.structure ||
		c.tree.Version > c.version+1 || c.tree.Version < c.version {
		return c.Rollup(), nil
	}
	c.version = c.tree.Version

	c.matPass = make(map[string]model.MaterialRef)
	c.compute(itemID)
	for cur := item.ParentID; cur != ""; {
		parent := c.tree.Item(cur)
		if parent == nil {
			break
		}
		c.resum(parent)
		cur = parent.ParentID
	}
	summary := c.summarize()
	c.matPass = nil
	return summary, nil
}

// compute fills totals for the subtree rooted at id, post-order.
func (c *Calculator) compute(id string) ItemTotals {
	item := c.tree.Item(id)
	if item == nil {
		return ItemTotals{}
	}
	if len(item.ChildIDs) == 0 && item.Kind != model.KindAssembly {
		totals := c.computeLeaf(item)
		c.totals[id] = totals
		return totals
	}
	for _, cid := range item.ChildIDs {
		c.compute(cid)
	}
	return c.resum(item)
}

// resum recomputes an aggregate item's totals from its children's cached
// totals: weight is the plain child sum, cost is the child sum plus the
// item's own fabrication cost, and the whole subtree scales with the item's
// quantity.
func (c *Calculator) resum(item *model.BOMItem) ItemTotals {
	var totals ItemTotals
	for _, cid := range item.ChildIDs {
		child := c.totals[cid]
		totals.Weight += child.Weight
		totals.MaterialCost += child.MaterialCost
		totals.FabricationCost += child.FabricationCost
		totals.Partial = totals.Partial || child.Partial
	}
	if item.Fabrication != nil {
		totals.FabricationCost += item.Fabrication.Cost(c.rates)
	}
	if item.Quantity != 1 {
		totals.Weight *= item.Quantity
		totals.MaterialCost *= item.Quantity
		totals.FabricationCost *= item.Quantity
	}
	c.totals[item.ID] = totals
	delete(c.errs, item.ID)
	return totals
}

// computeLeaf calculates one part or raw-material leaf. Errors are recorded
// against the item and surface as a partial flag on every enclosing rollup.
func (c *Calculator) computeLeaf(item *model.BOMItem) ItemTotals {
	delete(c.errs, item.ID)
	switch {
	case item.Shape != nil:
		return c.computeShapeLeaf(item)
	case item.BoughtOut != nil:
		totals := ItemTotals{
			Weight:       item.BoughtOut.UnitWeight * item.Quantity,
			MaterialCost: item.BoughtOut.UnitPrice * item.Quantity * (1 + item.WastagePct/100),
		}
		if item.Fabrication != nil {
			totals.FabricationCost = item.Fabrication.Cost(c.rates)
		}
		return totals
	default:
		c.errs[item.ID] = "no shape instance or bought-out specification"
		return ItemTotals{Partial: true}
	}
}

func (c *Calculator) computeShapeLeaf(item *model.BOMItem) ItemTotals {
	inst := item.Shape
	def := c.shapes.GetVersion(inst.ShapeID, inst.ShapeVersion)
	if def == nil {
		def = c.shapes.Get(inst.ShapeID)
	}
	if def == nil {
		c.errs[item.ID] = fmt.Sprintf("shape %q not found", inst.ShapeID)
		return ItemTotals{Partial: true}
	}

	mat, err := c.lookupMaterial(inst.MaterialID)
	if err != nil {
		c.errs[item.ID] = err.Error()
		return ItemTotals{Partial: true}
	}

	result, err := shape.Calculate(def, shape.CalcRequest{
		Params:      inst.Params,
		Material:    mat,
		Quantity:    item.Quantity,
		WastagePct:  item.WastagePct,
		Fabrication: item.Fabrication,
		Rates:       c.rates,
	})
	if err != nil {
		c.errs[item.ID] = err.Error()
		inst.Result = nil
		return ItemTotals{Partial: true}
	}

	// The derived block is replaced as a whole, never field by field.
	inst.Result = result
	inst.ShapeVersion = def.Version

	return ItemTotals{
		Weight:          result.Weight * item.Quantity,
		MaterialCost:    result.MaterialCost,
		FabricationCost: result.FabricationCost,
	}
}

func (c *Calculator) lookupMaterial(id string) (model.MaterialRef, error) {
	if id == "" {
		return model.MaterialRef{}, fmt.Errorf("no material bound")
	}
	if mat, ok := c.matPass[id]; ok {
		return mat, nil
	}
	mat, err := c.materials.GetMaterial(id)
	if err != nil {
		return model.MaterialRef{}, err
	}
	c.matPass[id] = mat
	return mat, nil
}

// summarize builds the tree summary from the root totals. Overhead and
// margin are applied exactly once here, never per item, so they cannot
// compound down the tree.
func (c *Calculator) summarize() model.BOMSummary {
	root := c.totals[c.tree.RootID]
	summary := model.BOMSummary{
		TotalWeight:     root.Weight,
		MaterialCost:    root.MaterialCost,
		FabricationCost: root.FabricationCost,
		Subtotal:        root.Cost(),
		Partial:         root.Partial,
	}

	for _, item := range c.tree.Items {
		summary.ItemCount++
		switch item.Kind {
		case model.KindAssembly:
			summary.AssemblyCount++
		case model.KindPart:
			summary.PartCount++
		case model.KindRawMaterial:
			summary.RawMaterialCount++
		}
	}

	if len(c.errs) > 0 {
		summary.ItemErrors = make(map[string]string, len(c.errs))
		for id, msg := range c.errs {
			summary.ItemErrors[id] = msg
		}
	}

	summary.Overhead = c.rates.OverheadFixed + summary.Subtotal*c.rates.OverheadPct/100
	if c.rates.TargetProfit > 0 {
		summary.Margin = c.rates.TargetProfit
	} else {
		summary.Margin = (summary.Subtotal + summary.Overhead) * c.rates.MarginPct / 100
	}
	summary.FinalPrice = summary.Subtotal + summary.Overhead + summary.Margin
	return summary
}
