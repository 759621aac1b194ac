package export

import (
	"fmt"
	"strings"

	"github.com/fabworks/bomcost/internal/model"
	"github.com/yofu/dxf"
)

// blankGap is the spacing between blank outlines in the drawing, mm.
const blankGap = 100.0

// ExportBlanksDXF writes the stock blank outlines of every calculated leaf
// to a DXF drawing, one layer per item, laid out left to right. Rectangular
// blanks become four lines, round blanks a circle, all in millimetres.
func ExportBlanksDXF(path string, tree *model.BOMTree) error {
	type blankEntry struct {
		item  *model.BOMItem
		blank *model.BlankResult
	}
	var blanks []blankEntry
	tree.Walk(tree.RootID, func(item *model.BOMItem) {
		if item.Shape != nil && item.Shape.Result != nil && item.Shape.Result.Blank != nil {
			blanks = append(blanks, blankEntry{item: item, blank: item.Shape.Result.Blank})
		}
	})
	if len(blanks) == 0 {
		return fmt.Errorf("no calculated blanks to export")
	}

	d := dxf.NewDrawing()

	offsetX := 0.0
	for _, entry := range blanks {
		layer := layerName(entry.item)
		if _, err := d.AddLayer(layer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add layer %q: %w", layer, err)
		}

		b := entry.blank
		switch {
		case b.Diameter > 0:
			r := b.Diameter / 2
			d.Circle(offsetX+r, r, 0, r)
			offsetX += b.Diameter + blankGap
		default:
			d.Line(offsetX, 0, 0, offsetX+b.Length, 0, 0)
			d.Line(offsetX+b.Length, 0, 0, offsetX+b.Length, b.Width, 0)
			d.Line(offsetX+b.Length, b.Width, 0, offsetX, b.Width, 0)
			d.Line(offsetX, b.Width, 0, offsetX, 0, 0)
			offsetX += b.Length + blankGap
		}
	}

	return d.SaveAs(path)
}

// layerName builds a DXF-safe layer name from the item number and name.
func layerName(item *model.BOMItem) string {
	name := item.ItemNumber + "_" + item.Name
	name = strings.ToUpper(name)
	replacer := strings.NewReplacer(".", "_", " ", "_", "/", "_")
	return replacer.Replace(name)
}
