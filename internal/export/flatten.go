// Package export renders BOM trees to external formats: Excel workbooks,
// PDF cost summaries, QR-coded item labels, and DXF blank outlines.
package export

import "github.com/fabworks/bomcost/internal/model"

// FlatRow is one BOM item flattened for tabular output, in tree pre-order.
type FlatRow struct {
	ItemNumber      string
	Name            string
	Kind            model.ItemKind
	Depth           int
	Quantity        float64
	WastagePct      float64
	ShapeID         string
	MaterialID      string
	UnitWeight      float64 // kg per piece, leaves only
	MaterialCost    float64 // leaves only, aggregates carry zero here
	FabricationCost float64
	ScrapPct        float64
}

// FlattenTree walks the tree in pre-order and produces one row per item.
// Aggregate rows carry structure only; their totals live in the rollup
// summary, never duplicated into rows where they could drift.
func FlattenTree(tree *model.BOMTree) []FlatRow {
	var rows []FlatRow
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		item := tree.Item(id)
		if item == nil {
			return
		}
		row := FlatRow{
			ItemNumber: item.ItemNumber,
			Name:       item.Name,
			Kind:       item.Kind,
			Depth:      depth,
			Quantity:   item.Quantity,
			WastagePct: item.WastagePct,
		}
		switch {
		case item.Shape != nil:
			row.ShapeID = item.Shape.ShapeID
			row.MaterialID = item.Shape.MaterialID
			if res := item.Shape.Result; res != nil {
				row.UnitWeight = res.Weight
				row.MaterialCost = res.MaterialCost
				row.FabricationCost = res.FabricationCost
				if res.Blank != nil {
					row.ScrapPct = res.Blank.ScrapPct
				}
			}
		case item.BoughtOut != nil:
			row.UnitWeight = item.BoughtOut.UnitWeight
			row.MaterialCost = item.BoughtOut.UnitPrice * item.Quantity * (1 + item.WastagePct/100)
		}
		rows = append(rows, row)
		for _, cid := range item.ChildIDs {
			walk(cid, depth+1)
		}
	}
	walk(tree.RootID, 0)
	return rows
}
