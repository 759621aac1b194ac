package export

import (
	"fmt"
	"sort"

	"github.com/fabworks/bomcost/internal/model"
	"github.com/go-pdf/fpdf"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	rowHeight    = 6.0
)

// ExportPDF generates a cost summary document for a BOM tree: overall
// totals followed by the per-item breakdown table.
func ExportPDF(path string, tree *model.BOMTree, summary model.BOMSummary) error {
	rows := FlattenTree(tree)
	if len(rows) == 0 {
		return fmt.Errorf("tree has no items to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	root := tree.Root()

	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, fmt.Sprintf("Cost Summary: %s", root.Name), "", 0, "L", false, 0, "")

	// Separator line
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	y = renderTotals(pdf, summary, y)
	y = renderItemTable(pdf, rows, y)
	renderItemErrors(pdf, tree, summary, y)

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by bomcost", "", 0, "C", false, 0, "")

	return pdf.OutputFileAndClose(path)
}

// renderTotals draws the overall statistics block and returns the next y.
func renderTotals(pdf *fpdf.Fpdf, summary model.BOMSummary, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Totals", "", 0, "L", false, 0, "")
	y += 9

	items := []struct {
		label string
		value string
	}{
		{"Total Weight", fmt.Sprintf("%.1f kg", summary.TotalWeight)},
		{"Material Cost", fmt.Sprintf("%.2f", summary.MaterialCost)},
		{"Fabrication Cost", fmt.Sprintf("%.2f", summary.FabricationCost)},
		{"Subtotal", fmt.Sprintf("%.2f", summary.Subtotal)},
		{"Overhead", fmt.Sprintf("%.2f", summary.Overhead)},
		{"Margin", fmt.Sprintf("%.2f", summary.Margin)},
		{"Final Price", fmt.Sprintf("%.2f", summary.FinalPrice)},
		{"Items", fmt.Sprintf("%d (%d assemblies, %d parts, %d raw)",
			summary.ItemCount, summary.AssemblyCount, summary.PartCount, summary.RawMaterialCount)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}
	return y + 5
}

// renderItemTable draws the per-item breakdown and returns the next y,
// adding pages as the table overflows.
func renderItemTable(pdf *fpdf.Fpdf, rows []FlatRow, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Item Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{22, 70, 25, 16, 30, 32, 24, 28, 28}
	headers := []string{"Item No", "Name", "Kind", "Qty", "Shape", "Material", "Weight (kg)", "Mat. Cost", "Fab. Cost"}

	drawHeader := func(y float64) float64 {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		xPos := marginLeft
		for i, header := range headers {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[i], rowHeight, header, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		return y + rowHeight
	}
	y = drawHeader(y)

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		if y > pageHeight-marginBottom-rowHeight-5 {
			pdf.AddPage()
			y = drawHeader(marginTop)
			pdf.SetFont("Helvetica", "", 9)
		}

		weight := ""
		if row.UnitWeight > 0 {
			weight = fmt.Sprintf("%.2f", row.UnitWeight)
		}
		rowData := []string{
			row.ItemNumber,
			row.Name,
			string(row.Kind),
			fmt.Sprintf("%g", row.Quantity),
			row.ShapeID,
			row.MaterialID,
			weight,
			fmt.Sprintf("%.2f", row.MaterialCost),
			fmt.Sprintf("%.2f", row.FabricationCost),
		}

		// Alternate row background
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos := marginLeft
		for j, cell := range rowData {
			align := "C"
			if j == 1 {
				align = "L"
			}
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], rowHeight, cell, "1", 0, align, true, 0, "")
			xPos += colWidths[j]
		}
		y += rowHeight
	}
	return y + 8
}

// renderItemErrors lists calculation failures when the summary is partial.
func renderItemErrors(pdf *fpdf.Fpdf, tree *model.BOMTree, summary model.BOMSummary, y float64) {
	if len(summary.ItemErrors) == 0 {
		return
	}
	if y > pageHeight-marginBottom-20 {
		pdf.AddPage()
		y = marginTop
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(200, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 7, "WARNING: Items Failed to Calculate", "", 0, "L", false, 0, "")
	y += 8

	ids := make([]string, 0, len(summary.ItemErrors))
	for id := range summary.ItemErrors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, id := range ids {
		name := id
		if item := tree.Item(id); item != nil {
			name = fmt.Sprintf("%s %s", item.ItemNumber, item.Name)
		}
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(250, 5, fmt.Sprintf("- %s: %s", name, summary.ItemErrors[id]), "", 0, "L", false, 0, "")
		y += 5
	}
}
