package model

import "github.com/google/uuid"

// ItemKind classifies a BOM item.
type ItemKind string

const (
	KindAssembly    ItemKind = "assembly"
	KindPart        ItemKind = "part"
	KindRawMaterial ItemKind = "raw-material"
)

// BoughtOutSpec describes a purchased item with a manually entered price
// instead of a shape-derived one.
type BoughtOutSpec struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	UnitWeight  float64 `json:"unit_weight"` // kg per piece, 0 if unknown
}

// ShapeInstance binds a shape definition to concrete parameter values and a
// material choice. The derived Result block is replaced atomically on every
// recomputation and cleared whenever any bound input changes.
type ShapeInstance struct {
	ShapeID      string             `json:"shape_id"`
	ShapeVersion int                `json:"shape_version"`
	Params       map[string]float64 `json:"params"`
	MaterialID   string             `json:"material_id"`
	Result       *InstanceResult    `json:"result,omitempty"`
}

// InstanceResult is the full derived-results block of one shape instance.
// Area entries that are absent mean "not applicable", which is distinct from
// an area computed as zero.
type InstanceResult struct {
	Volume          float64            `json:"volume"`          // m3 per piece
	Weight          float64            `json:"weight"`          // kg per piece
	Areas           map[string]float64 `json:"areas,omitempty"` // m2, keyed total/inner/outer/wetted
	Blank           *BlankResult       `json:"blank,omitempty"`
	TotalQuantity   float64            `json:"total_quantity"` // quantity including wastage
	MaterialCost    float64            `json:"material_cost"`
	FabricationCost float64            `json:"fabrication_cost"`
	Warnings        []string           `json:"warnings,omitempty"`
}

// BlankResult holds the stock-blank computation for shapes cut from flat
// stock: blank dimensions, areas, and the resulting scrap.
type BlankResult struct {
	Length       float64 `json:"length,omitempty"`   // mm, rectangular blanks
	Width        float64 `json:"width,omitempty"`    // mm, rectangular blanks
	Diameter     float64 `json:"diameter,omitempty"` // mm, round blanks
	Thickness    float64 `json:"thickness"`          // mm
	BlankArea    float64 `json:"blank_area"`         // m2
	FinishedArea float64 `json:"finished_area"`      // m2
	ScrapPct     float64 `json:"scrap_pct"`
	ScrapWeight  float64 `json:"scrap_weight"` // kg per piece
}

// BOMItem is one node of a BOM tree. Items form a strict tree via explicit
// parent/child id fields rather than interlinked pointers, so cycle checks
// and serialization are plain traversals over the item arena.
type BOMItem struct {
	ID          string           `json:"id"`
	ItemNumber  string           `json:"item_number"` // hierarchical path, e.g. "1.2.3"
	Name        string           `json:"name"`
	Kind        ItemKind         `json:"kind"`
	Shape       *ShapeInstance   `json:"shape,omitempty"`
	BoughtOut   *BoughtOutSpec   `json:"bought_out,omitempty"`
	Quantity    float64          `json:"quantity"`
	WastagePct  float64          `json:"wastage_pct"`
	Fabrication *FabricationSpec `json:"fabrication,omitempty"`
	ParentID    string           `json:"parent_id,omitempty"` // empty only for the root
	ChildIDs    []string         `json:"child_ids,omitempty"`
}

// NewBOMItem creates an item with a generated id and quantity 1.
func NewBOMItem(name string, kind ItemKind) *BOMItem {
	return &BOMItem{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Kind:     kind,
		Quantity: 1,
	}
}

// IsLeaf reports whether the item carries its own computed or entered value
// rather than aggregating children.
func (it *BOMItem) IsLeaf() bool {
	return len(it.ChildIDs) == 0 && it.Kind != KindAssembly
}

// BOMTree is an arena of items keyed by id plus two monotonically increasing
// counters. Version advances on every structural or value change and drives
// optimistic concurrency; Structure advances only on attach, move, and
// remove, so rollup caches can tell a value edit from a reshaped tree.
type BOMTree struct {
	RootID    string              `json:"root_id"`
	Items     map[string]*BOMItem `json:"items"`
	Version   int64               `json:"version"`
	Structure int64               `json:"structure"`
}

// NewBOMTree creates a tree containing a single root assembly.
func NewBOMTree(rootName string) *BOMTree {
	root := NewBOMItem(rootName, KindAssembly)
	root.ItemNumber = "1"
	return &BOMTree{
		RootID:    root.ID,
		Items:     map[string]*BOMItem{root.ID: root},
		Version:   1,
		Structure: 1,
	}
}

// Item returns the item with the given id, or nil.
func (t *BOMTree) Item(id string) *BOMItem {
	return t.Items[id]
}

// Root returns the root item.
func (t *BOMTree) Root() *BOMItem {
	return t.Items[t.RootID]
}

// IsAncestor reports whether ancestorID appears on the parent chain of id
// (or is id itself).
func (t *BOMTree) IsAncestor(ancestorID, id string) bool {
	for cur := id; cur != ""; {
		if cur == ancestorID {
			return true
		}
		item := t.Items[cur]
		if item == nil {
			return false
		}
		cur = item.ParentID
	}
	return false
}

// Walk visits the subtree rooted at id in depth-first pre-order.
func (t *BOMTree) Walk(id string, visit func(*BOMItem)) {
	item := t.Items[id]
	if item == nil {
		return
	}
	visit(item)
	for _, cid := range item.ChildIDs {
		t.Walk(cid, visit)
	}
}

// BOMSummary is the aggregated rollup over a tree. It is always derived and
// never stored as ground truth independent of the tree it summarizes.
type BOMSummary struct {
	TotalWeight     float64 `json:"total_weight"` // kg
	MaterialCost    float64 `json:"material_cost"`
	FabricationCost float64 `json:"fabrication_cost"`
	Subtotal        float64 `json:"subtotal"`
	Overhead        float64 `json:"overhead"`
	Margin          float64 `json:"margin"`
	FinalPrice      float64 `json:"final_price"`

	ItemCount        int `json:"item_count"`
	AssemblyCount    int `json:"assembly_count"`
	PartCount        int `json:"part_count"`
	RawMaterialCount int `json:"raw_material_count"`

	// Partial is set when at least one leaf failed to calculate; the totals
	// then cover the branches that did compute.
	Partial    bool              `json:"partial"`
	ItemErrors map[string]string `json:"item_errors,omitempty"` // item id -> error
}
