package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fabworks/bomcost/internal/bom"
	"github.com/fabworks/bomcost/internal/material"
	"github.com/fabworks/bomcost/internal/model"
	"github.com/fabworks/bomcost/internal/shape"
	"github.com/xuri/excelize/v2"
)

// buildTestTree creates a small calculated vessel BOM for export testing.
func buildTestTree(t *testing.T) (*model.BOMTree, model.BOMSummary) {
	t.Helper()
	tree := model.NewBOMTree("Test Vessel")

	shell := model.NewBOMItem("Shell Assembly", model.KindAssembly)
	if err := bom.Attach(tree, tree.RootID, shell, tree.Version); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	plate := model.NewBOMItem("Shell Plate", model.KindPart)
	plate.Quantity = 2
	plate.Shape = &model.ShapeInstance{
		ShapeID:    "rect_plate",
		Params:     map[string]float64{"L": 2000, "W": 1000, "t": 10},
		MaterialID: "cs-plate",
	}
	if err := bom.Attach(tree, shell.ID, plate, tree.Version); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	disc := model.NewBOMItem("End Plate", model.KindPart)
	disc.Shape = &model.ShapeInstance{
		ShapeID:    "circ_plate",
		Params:     map[string]float64{"D": 800, "t": 12},
		MaterialID: "cs-plate",
	}
	if err := bom.Attach(tree, shell.ID, disc, tree.Version); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	valve := model.NewBOMItem("Drain Valve", model.KindPart)
	valve.BoughtOut = &model.BoughtOutSpec{Description: "DN25 ball valve", UnitPrice: 45, UnitWeight: 1.2}
	if err := bom.Attach(tree, tree.RootID, valve, tree.Version); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	rates := model.CostRates{LaborRatePerHour: 40, OverheadPct: 10, MarginPct: 8}
	summary := bom.NewCalculator(tree, shape.DefaultLibrary(), material.DefaultCatalog(), rates).Rollup()
	if summary.Partial {
		t.Fatalf("test tree failed to calculate: %v", summary.ItemErrors)
	}
	return tree, summary
}

// ─── FlattenTree Tests ─────────────────────────────────────

func TestFlattenTree_PreOrderWithDepth(t *testing.T) {
	tree, _ := buildTestTree(t)
	rows := FlattenTree(tree)

	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[0].ItemNumber != "1" || rows[0].Depth != 0 {
		t.Errorf("expected root first at depth 0, got %+v", rows[0])
	}
	if rows[1].Name != "Shell Assembly" || rows[1].Depth != 1 {
		t.Errorf("expected assembly second at depth 1, got %+v", rows[1])
	}
	if rows[2].Name != "Shell Plate" || rows[2].Depth != 2 {
		t.Errorf("expected plate third at depth 2, got %+v", rows[2])
	}
	if rows[2].UnitWeight <= 0 {
		t.Errorf("expected calculated leaf weight, got %f", rows[2].UnitWeight)
	}
	if rows[1].MaterialCost != 0 {
		t.Errorf("aggregate rows must not carry costs, got %f", rows[1].MaterialCost)
	}
}

// ─── ExportExcel Tests ─────────────────────────────────────

func TestExportExcel(t *testing.T) {
	tree, summary := buildTestTree(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.xlsx")

	if err := ExportExcel(path, tree, summary); err != nil {
		t.Fatalf("ExportExcel returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("cannot reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("BOM")
	if err != nil {
		t.Fatalf("cannot read BOM sheet: %v", err)
	}
	if len(rows) != 6 { // header + 5 items
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if rows[0][0] != "Item No" {
		t.Errorf("expected header row, got %v", rows[0])
	}

	sum, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("cannot read Summary sheet: %v", err)
	}
	if len(sum) == 0 || sum[0][0] != "Total Weight (kg)" {
		t.Errorf("expected summary rows, got %v", sum)
	}
}

func TestExportExcel_EmptyTreeStillHasRoot(t *testing.T) {
	tree := model.NewBOMTree("Empty")
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.xlsx")

	if err := ExportExcel(path, tree, model.BOMSummary{}); err != nil {
		t.Fatalf("ExportExcel returned error: %v", err)
	}
}

// ─── ExportPDF Tests ───────────────────────────────────────

func TestExportPDF_CreatesFile(t *testing.T) {
	tree, summary := buildTestTree(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.pdf")

	if err := ExportPDF(path, tree, summary); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read output: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty PDF")
	}
	if !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Errorf("expected PDF header, got %q", data[:5])
	}
}

func TestExportPDF_ManyItemsPaginate(t *testing.T) {
	tree := model.NewBOMTree("Big Vessel")
	for i := 0; i < 40; i++ {
		plate := model.NewBOMItem("Plate", model.KindPart)
		plate.Shape = &model.ShapeInstance{
			ShapeID:    "rect_plate",
			Params:     map[string]float64{"L": 1000, "W": 500, "t": 10},
			MaterialID: "cs-plate",
		}
		if err := bom.Attach(tree, tree.RootID, plate, tree.Version); err != nil {
			t.Fatalf("Attach failed: %v", err)
		}
	}
	summary := bom.NewCalculator(tree, shape.DefaultLibrary(), material.DefaultCatalog(), model.CostRates{}).Rollup()

	dir := t.TempDir()
	path := filepath.Join(dir, "big.pdf")
	if err := ExportPDF(path, tree, summary); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

// ─── ExportLabels Tests ────────────────────────────────────

func TestCollectLabelInfos_LeavesOnly(t *testing.T) {
	tree, _ := buildTestTree(t)
	labels := CollectLabelInfos(tree)

	if len(labels) != 3 {
		t.Fatalf("expected 3 leaf labels, got %d", len(labels))
	}
	for _, l := range labels {
		if l.Name == "Shell Assembly" || l.Name == "Test Vessel" {
			t.Errorf("aggregates must not get labels: %q", l.Name)
		}
	}
	if labels[0].Material != "cs-plate" {
		t.Errorf("expected material on shape leaf, got %q", labels[0].Material)
	}
	if labels[0].UnitWeight <= 0 {
		t.Errorf("expected calculated weight, got %f", labels[0].UnitWeight)
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	tree, _ := buildTestTree(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.pdf")

	if err := ExportLabels(path, tree); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty label sheet")
	}
}

func TestExportLabels_EmptyTree(t *testing.T) {
	tree := model.NewBOMTree("Empty")
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.pdf")

	if err := ExportLabels(path, tree); err == nil {
		t.Fatal("expected an error for a tree without leaves")
	}
}

// ─── ExportBlanksDXF Tests ─────────────────────────────────

func TestExportBlanksDXF(t *testing.T) {
	tree, _ := buildTestTree(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "blanks.dxf")

	if err := ExportBlanksDXF(path, tree); err != nil {
		t.Fatalf("ExportBlanksDXF returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read output: %v", err)
	}
	content := string(data)
	// The circular end plate nests in a square blank, so only LINE
	// entities are expected for it; a torispherical head would add CIRCLE.
	if !strings.Contains(content, "LINE") {
		t.Error("expected LINE entities for the rectangular blank")
	}
	if !strings.Contains(content, "END_PLATE") {
		t.Error("expected a layer named after the item")
	}
}

func TestExportBlanksDXF_RoundBlank(t *testing.T) {
	tree := model.NewBOMTree("Heads")
	head := model.NewBOMItem("Dished Head", model.KindPart)
	head.Shape = &model.ShapeInstance{
		ShapeID:    "tori_head",
		Params:     map[string]float64{"D": 1000, "t": 10},
		MaterialID: "cs-plate",
	}
	if err := bom.Attach(tree, tree.RootID, head, tree.Version); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	summary := bom.NewCalculator(tree, shape.DefaultLibrary(), material.DefaultCatalog(), model.CostRates{}).Rollup()
	if summary.Partial {
		t.Fatalf("head failed to calculate: %v", summary.ItemErrors)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "heads.dxf")
	if err := ExportBlanksDXF(path, tree); err != nil {
		t.Fatalf("ExportBlanksDXF returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read output: %v", err)
	}
	if !strings.Contains(string(data), "CIRCLE") {
		t.Error("expected a CIRCLE entity for the round blank")
	}
}

func TestExportBlanksDXF_NoBlanks(t *testing.T) {
	tree := model.NewBOMTree("Empty")
	dir := t.TempDir()
	path := filepath.Join(dir, "none.dxf")

	if err := ExportBlanksDXF(path, tree); err == nil {
		t.Fatal("expected an error when no blanks are calculated")
	}
}
