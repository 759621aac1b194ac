package model

import (
	"encoding/json"
	"testing"
)

func TestNewBOMItemDefaults(t *testing.T) {
	item := NewBOMItem("Shell", KindPart)
	if item.ID == "" {
		t.Error("expected a generated id")
	}
	if item.Quantity != 1 {
		t.Errorf("expected default quantity 1, got %g", item.Quantity)
	}
	if item.Kind != KindPart {
		t.Errorf("expected kind part, got %s", item.Kind)
	}
}

func TestNewBOMTreeRoot(t *testing.T) {
	tree := NewBOMTree("Vessel")
	root := tree.Root()
	if root == nil {
		t.Fatal("expected a root item")
	}
	if root.Kind != KindAssembly {
		t.Errorf("root must be an assembly, got %s", root.Kind)
	}
	if root.ItemNumber != "1" {
		t.Errorf("root item number must be \"1\", got %q", root.ItemNumber)
	}
	if tree.Version != 1 {
		t.Errorf("fresh tree must start at version 1, got %d", tree.Version)
	}
}

func TestIsLeaf(t *testing.T) {
	part := NewBOMItem("Plate", KindPart)
	if !part.IsLeaf() {
		t.Error("childless part must be a leaf")
	}

	assembly := NewBOMItem("Skid", KindAssembly)
	if assembly.IsLeaf() {
		t.Error("an assembly is never a leaf, even without children")
	}

	part.ChildIDs = []string{"x"}
	if part.IsLeaf() {
		t.Error("an item with children is not a leaf")
	}
}

// linkChild wires an item into the tree directly; structural checks live in
// the bom package, this only builds fixtures.
func linkChild(tree *BOMTree, parent, child *BOMItem) {
	child.ParentID = parent.ID
	parent.ChildIDs = append(parent.ChildIDs, child.ID)
	tree.Items[child.ID] = child
}

func TestIsAncestor(t *testing.T) {
	tree := NewBOMTree("Vessel")
	shell := NewBOMItem("Shell", KindAssembly)
	plate := NewBOMItem("Plate", KindPart)
	loose := NewBOMItem("Valve", KindPart)
	linkChild(tree, tree.Root(), shell)
	linkChild(tree, shell, plate)
	linkChild(tree, tree.Root(), loose)

	if !tree.IsAncestor(tree.RootID, plate.ID) {
		t.Error("root must be an ancestor of every item")
	}
	if !tree.IsAncestor(shell.ID, plate.ID) {
		t.Error("expected shell to be an ancestor of plate")
	}
	if !tree.IsAncestor(plate.ID, plate.ID) {
		t.Error("an item is its own ancestor")
	}
	if tree.IsAncestor(plate.ID, shell.ID) {
		t.Error("a child is not an ancestor of its parent")
	}
	if tree.IsAncestor(shell.ID, loose.ID) {
		t.Error("siblings share no ancestry")
	}
	if tree.IsAncestor("missing", plate.ID) {
		t.Error("unknown ids are never ancestors")
	}
}

func TestWalkPreOrder(t *testing.T) {
	tree := NewBOMTree("Vessel")
	a := NewBOMItem("A", KindAssembly)
	a1 := NewBOMItem("A1", KindPart)
	a2 := NewBOMItem("A2", KindPart)
	b := NewBOMItem("B", KindPart)
	linkChild(tree, tree.Root(), a)
	linkChild(tree, a, a1)
	linkChild(tree, a, a2)
	linkChild(tree, tree.Root(), b)

	var order []string
	tree.Walk(tree.RootID, func(item *BOMItem) {
		order = append(order, item.Name)
	})

	want := []string{"Vessel", "A", "A1", "A2", "B"}
	if len(order) != len(want) {
		t.Fatalf("expected %d visits, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected pre-order %v, got %v", want, order)
		}
	}
}

func TestWalkMissingID(t *testing.T) {
	tree := NewBOMTree("Vessel")
	visited := 0
	tree.Walk("nope", func(*BOMItem) { visited++ })
	if visited != 0 {
		t.Errorf("walking an unknown id must visit nothing, visited %d", visited)
	}
}

func TestBOMTreeJSONRoundTrip(t *testing.T) {
	tree := NewBOMTree("Vessel")
	plate := NewBOMItem("Plate", KindPart)
	plate.Quantity = 2
	plate.WastagePct = 5
	plate.Shape = &ShapeInstance{
		ShapeID:    "rect_plate",
		Params:     map[string]float64{"L": 1000, "W": 500, "t": 10},
		MaterialID: "cs-plate",
		Result: &InstanceResult{
			Volume: 0.005,
			Weight: 39.25,
			Areas:  map[string]float64{"total": 0.5},
		},
	}
	plate.Fabrication = &FabricationSpec{LaborHours: 1.5}
	linkChild(tree, tree.Root(), plate)
	tree.Version = 7

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var loaded BOMTree
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if loaded.Version != 7 {
		t.Errorf("version lost in round trip: %d", loaded.Version)
	}
	got := loaded.Items[plate.ID]
	if got == nil {
		t.Fatal("plate missing after round trip")
	}
	if got.Shape == nil || got.Shape.Result == nil {
		t.Fatal("shape result lost in round trip")
	}
	if got.Shape.Result.Weight != 39.25 {
		t.Errorf("weight lost in round trip: %g", got.Shape.Result.Weight)
	}
	if got.Shape.Params["W"] != 500 {
		t.Errorf("params lost in round trip: %v", got.Shape.Params)
	}
	if got.Fabrication == nil || got.Fabrication.LaborHours != 1.5 {
		t.Errorf("fabrication lost in round trip: %+v", got.Fabrication)
	}
	if loaded.Root().ChildIDs[0] != plate.ID {
		t.Error("child links lost in round trip")
	}
}

func TestAbsentAreasStayAbsent(t *testing.T) {
	// An absent area map means "not applicable" and must not serialize as an
	// empty object that a reader could mistake for zero areas.
	res := InstanceResult{Weight: 10}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, present := m["areas"]; present {
		t.Error("nil areas must be omitted from JSON")
	}
}
