package export

import (
	"fmt"
	"strings"

	"github.com/fabworks/bomcost/internal/model"
	"github.com/xuri/excelize/v2"
)

// ExportExcel writes the flattened BOM and its rollup summary to an Excel
// workbook with two sheets, "BOM" and "Summary".
func ExportExcel(path string, tree *model.BOMTree, summary model.BOMSummary) error {
	rows := FlattenTree(tree)
	if len(rows) == 0 {
		return fmt.Errorf("tree has no items to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const bomSheet = "BOM"
	f.SetSheetName(f.GetSheetName(0), bomSheet)

	header := []interface{}{
		"Item No", "Name", "Kind", "Qty", "Wastage %",
		"Shape", "Material", "Unit Weight (kg)", "Scrap %",
		"Material Cost", "Fabrication Cost",
	}
	if err := f.SetSheetRow(bomSheet, "A1", &header); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(bomSheet, "A1", "K1", headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		// Indent names by depth so the tree structure survives flattening.
		name := strings.Repeat("  ", row.Depth) + row.Name
		values := []interface{}{
			row.ItemNumber, name, string(row.Kind), row.Quantity, row.WastagePct,
			row.ShapeID, row.MaterialID, row.UnitWeight, row.ScrapPct,
			row.MaterialCost, row.FabricationCost,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(bomSheet, cell, &values); err != nil {
			return err
		}
	}

	const sumSheet = "Summary"
	if _, err := f.NewSheet(sumSheet); err != nil {
		return err
	}
	summaryRows := [][]interface{}{
		{"Total Weight (kg)", summary.TotalWeight},
		{"Material Cost", summary.MaterialCost},
		{"Fabrication Cost", summary.FabricationCost},
		{"Subtotal", summary.Subtotal},
		{"Overhead", summary.Overhead},
		{"Margin", summary.Margin},
		{"Final Price", summary.FinalPrice},
		{"Items", summary.ItemCount},
		{"Assemblies", summary.AssemblyCount},
		{"Parts", summary.PartCount},
		{"Raw Materials", summary.RawMaterialCount},
	}
	for i, values := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		v := values
		if err := f.SetSheetRow(sumSheet, cell, &v); err != nil {
			return err
		}
	}
	if summary.Partial {
		cell, _ := excelize.CoordinatesToCellName(1, len(summaryRows)+2)
		warn := []interface{}{"WARNING", "summary is partial, some items failed to calculate"}
		if err := f.SetSheetRow(sumSheet, cell, &warn); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
