// Package bom mutates BOM trees and rolls weight and cost up from the
// leaves to the root. Every mutation takes the version the caller last
// observed and rejects the edit with a ConflictError when the tree has
// moved on; every successful mutation advances the version exactly once.
package bom

import (
	"fmt"

	"github.com/fabworks/bomcost/internal/model"
)

func checkVersion(t *model.BOMTree, supplied int64) error {
	if supplied != t.Version {
		return &ConflictError{Supplied: supplied, Actual: t.Version}
	}
	return nil
}

// Attach adds an item under the given parent. The parent must be an
// assembly; ids must be unique within the tree.
func Attach(t *model.BOMTree, parentID string, item *model.BOMItem, version int64) error {
	if err := checkVersion(t, version); err != nil {
		return err
	}
	parent := t.Item(parentID)
	if parent == nil {
		return &StructuralError{ItemID: parentID, Msg: "parent not found"}
	}
	if parent.Kind != model.KindAssembly {
		return &StructuralError{ItemID: parentID, Msg: "parent is not an assembly"}
	}
	if item == nil || item.ID == "" {
		return &StructuralError{Msg: "item has no id"}
	}
	if t.Item(item.ID) != nil {
		return &StructuralError{ItemID: item.ID, Msg: "id already present in tree"}
	}
	if item.Quantity <= 0 {
		return &StructuralError{ItemID: item.ID, Msg: "quantity must be greater than zero"}
	}

	item.ParentID = parentID
	t.Items[item.ID] = item
	parent.ChildIDs = append(parent.ChildIDs, item.ID)
	t.Version++
	t.Structure++
	Renumber(t)
	return nil
}

// Move re-parents an item. The no-cycle invariant is validated before any
// mutation is committed: the new parent must not be the item itself or one
// of its descendants.
func Move(t *model.BOMTree, itemID, newParentID string, version int64) error {
	if err := checkVersion(t, version); err != nil {
		return err
	}
	item := t.Item(itemID)
	if item == nil {
		return &StructuralError{ItemID: itemID, Msg: "item not found"}
	}
	if itemID == t.RootID {
		return &StructuralError{ItemID: itemID, Msg: "cannot move the root"}
	}
	newParent := t.Item(newParentID)
	if newParent == nil {
		return &StructuralError{ItemID: newParentID, Msg: "parent not found"}
	}
	if newParent.Kind != model.KindAssembly {
		return &StructuralError{ItemID: newParentID, Msg: "parent is not an assembly"}
	}
	if t.IsAncestor(itemID, newParentID) {
		return &StructuralError{ItemID: itemID, Msg: "move would create a cycle"}
	}

	detachFromParent(t, item)
	item.ParentID = newParentID
	newParent.ChildIDs = append(newParent.ChildIDs, itemID)
	t.Version++
	t.Structure++
	Renumber(t)
	return nil
}

// Remove deletes an item and its entire subtree. The root cannot be removed.
func Remove(t *model.BOMTree, itemID string, version int64) error {
	if err := checkVersion(t, version); err != nil {
		return err
	}
	item := t.Item(itemID)
	if item == nil {
		return &StructuralError{ItemID: itemID, Msg: "item not found"}
	}
	if itemID == t.RootID {
		return &StructuralError{ItemID: itemID, Msg: "cannot remove the root"}
	}

	detachFromParent(t, item)
	t.Walk(itemID, func(it *model.BOMItem) {
		delete(t.Items, it.ID)
	})
	t.Version++
	t.Structure++
	Renumber(t)
	return nil
}

// SetQuantity changes an item's quantity.
func SetQuantity(t *model.BOMTree, itemID string, quantity float64, version int64) error {
	if err := checkVersion(t, version); err != nil {
		return err
	}
	item := t.Item(itemID)
	if item == nil {
		return &StructuralError{ItemID: itemID, Msg: "item not found"}
	}
	if quantity <= 0 {
		return &model.ParameterError{Name: "quantity", Value: quantity, Reason: "must be greater than zero"}
	}
	item.Quantity = quantity
	invalidateResult(item)
	t.Version++
	return nil
}

// SetWastage changes an item's wastage percentage.
func SetWastage(t *model.BOMTree, itemID string, wastagePct float64, version int64) error {
	if err := checkVersion(t, version); err != nil {
		return err
	}
	item := t.Item(itemID)
	if item == nil {
		return &StructuralError{ItemID: itemID, Msg: "item not found"}
	}
	if wastagePct < 0 {
		return &model.ParameterError{Name: "wastage_pct", Value: wastagePct, Reason: "must not be negative"}
	}
	item.WastagePct = wastagePct
	invalidateResult(item)
	t.Version++
	return nil
}

// SetShapeParams replaces the bound parameter values of an item's shape
// instance and clears the derived results, which are recomputed as a whole
// on the next rollup.
func SetShapeParams(t *model.BOMTree, itemID string, params map[string]float64, version int64) error {
	if err := checkVersion(t, version); err != nil {
		return err
	}
	item := t.Item(itemID)
	if item == nil {
		return &StructuralError{ItemID: itemID, Msg: "item not found"}
	}
	if item.Shape == nil {
		return &StructuralError{ItemID: itemID, Msg: "item has no shape instance"}
	}
	copied := make(map[string]float64, len(params))
	for k, v := range params {
		copied[k] = v
	}
	item.Shape.Params = copied
	item.Shape.Result = nil
	t.Version++
	return nil
}

// SetMaterial changes the material binding of an item's shape instance.
func SetMaterial(t *model.BOMTree, itemID, materialID string, version int64) error {
	if err := checkVersion(t, version); err != nil {
		return err
	}
	item := t.Item(itemID)
	if item == nil {
		return &StructuralError{ItemID: itemID, Msg: "item not found"}
	}
	if item.Shape == nil {
		return &StructuralError{ItemID: itemID, Msg: "item has no shape instance"}
	}
	item.Shape.MaterialID = materialID
	item.Shape.Result = nil
	t.Version++
	return nil
}

func detachFromParent(t *model.BOMTree, item *model.BOMItem) {
	parent := t.Item(item.ParentID)
	if parent == nil {
		return
	}
	for i, cid := range parent.ChildIDs {
		if cid == item.ID {
			parent.ChildIDs = append(parent.ChildIDs[:i], parent.ChildIDs[i+1:]...)
			break
		}
	}
}

func invalidateResult(item *model.BOMItem) {
	if item.Shape != nil {
		item.Shape.Result = nil
	}
}

// Renumber rewrites the hierarchical item numbers ("1", "1.1", "1.1.2")
// from the current structure.
func Renumber(t *model.BOMTree) {
	root := t.Root()
	if root == nil {
		return
	}
	root.ItemNumber = "1"
	renumberChildren(t, root)
}

func renumberChildren(t *model.BOMTree, parent *model.BOMItem) {
	for i, cid := range parent.ChildIDs {
		child := t.Item(cid)
		if child == nil {
			continue
		}
		child.ItemNumber = fmt.Sprintf("%s.%d", parent.ItemNumber, i+1)
		renumberChildren(t, child)
	}
}
