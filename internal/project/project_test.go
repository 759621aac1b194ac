package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fabworks/bomcost/internal/bom"
	"github.com/fabworks/bomcost/internal/material"
	"github.com/fabworks/bomcost/internal/model"
	"github.com/fabworks/bomcost/internal/shape"
	"github.com/fabworks/bomcost/internal/template"
)

func TestDefaultPaths(t *testing.T) {
	if filepath.Base(filepath.Dir(DefaultMaterialsPath())) != ".bomcost" {
		t.Errorf("expected materials file under .bomcost, got %s", DefaultMaterialsPath())
	}
	if filepath.Base(DefaultTreePath("vessel")) != "vessel.json" {
		t.Errorf("expected tree filename vessel.json, got %s", DefaultTreePath("vessel"))
	}
}

func TestSaveAndLoadTree(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tree.json")

	tree := model.NewBOMTree("Vessel")
	plate := model.NewBOMItem("Plate", model.KindPart)
	plate.Shape = &model.ShapeInstance{
		ShapeID:    "rect_plate",
		Params:     map[string]float64{"L": 1000, "W": 500, "t": 10},
		MaterialID: "cs-plate",
	}
	if err := bom.Attach(tree, tree.RootID, plate, tree.Version); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if err := SaveTree(path, tree); err != nil {
		t.Fatalf("SaveTree failed: %v", err)
	}
	loaded, err := LoadTree(path)
	if err != nil {
		t.Fatalf("LoadTree failed: %v", err)
	}

	if loaded.Version != tree.Version {
		t.Errorf("expected version %d, got %d", tree.Version, loaded.Version)
	}
	if len(loaded.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(loaded.Items))
	}
	got := loaded.Item(plate.ID)
	if got == nil {
		t.Fatal("expected plate item to survive the round trip")
	}
	if got.Shape.Params["L"] != 1000 {
		t.Errorf("expected L=1000, got %f", got.Shape.Params["L"])
	}
	if got.ItemNumber != "1.1" {
		t.Errorf("expected item number 1.1, got %q", got.ItemNumber)
	}
}

func TestLoadTreeRejectsDanglingParent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "broken.json")

	tree := model.NewBOMTree("Vessel")
	orphan := model.NewBOMItem("Orphan", model.KindPart)
	orphan.ParentID = "missing"
	tree.Items[orphan.ID] = orphan

	data, _ := json.MarshalIndent(tree, "", "  ")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write broken tree: %v", err)
	}

	if _, err := LoadTree(path); err == nil {
		t.Fatal("expected an error for a dangling parent reference")
	}
}

func TestLoadMaterialsCreatesDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nonexistent", "materials.json")

	catalog, err := LoadMaterials(path)
	if err != nil {
		t.Fatalf("LoadMaterials failed: %v", err)
	}
	if len(catalog.Materials) == 0 {
		t.Error("expected default materials, got none")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("expected default materials file to be created")
	}
}

func TestImportMaterialsSkipsDuplicates(t *testing.T) {
	tmpDir := t.TempDir()

	existing := &material.Catalog{Materials: []model.MaterialRef{
		{ID: "cs-plate", Name: "Local Carbon Steel"},
	}}
	imported := &material.Catalog{Materials: []model.MaterialRef{
		{ID: "cs-plate", Name: "Imported Carbon Steel"}, // same ID, should be skipped
		{ID: "ti-plate", Name: "Titanium Gr.2"},         // new, should be added
	}}

	importPath := filepath.Join(tmpDir, "import.json")
	data, _ := json.MarshalIndent(imported, "", "  ")
	if err := os.WriteFile(importPath, data, 0644); err != nil {
		t.Fatalf("failed to write import file: %v", err)
	}

	merged, err := ImportMaterials(importPath, existing)
	if err != nil {
		t.Fatalf("ImportMaterials failed: %v", err)
	}
	if len(merged.Materials) != 2 {
		t.Errorf("expected 2 materials after merge, got %d", len(merged.Materials))
	}
	if merged.Materials[0].Name != "Local Carbon Steel" {
		t.Errorf("local entry must win over the import, got %q", merged.Materials[0].Name)
	}
}

func TestLoadRatesReturnsDefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "rates.json")

	rates, err := LoadRates(path)
	if err != nil {
		t.Fatalf("LoadRates failed: %v", err)
	}
	if rates != DefaultRates() {
		t.Errorf("expected default rates, got %+v", rates)
	}

	rates.LaborRatePerHour = 55
	if err := SaveRates(path, rates); err != nil {
		t.Fatalf("SaveRates failed: %v", err)
	}
	loaded, err := LoadRates(path)
	if err != nil {
		t.Fatalf("LoadRates failed: %v", err)
	}
	if loaded.LaborRatePerHour != 55 {
		t.Errorf("expected labor rate 55, got %f", loaded.LaborRatePerHour)
	}
}

func TestLoadShapesCreatesDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "shapes.json")

	lib, err := LoadShapes(path)
	if err != nil {
		t.Fatalf("LoadShapes failed: %v", err)
	}
	if lib.Get("rect_plate") == nil {
		t.Error("expected the builtin shapes in a fresh library")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("expected default shapes file to be created")
	}
}

func TestSaveAndLoadShapesPreservesVersions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "shapes.json")

	lib := shape.DefaultLibrary()
	// Publish a second version of an existing shape.
	revised := *lib.Get("rect_plate")
	if err := lib.Publish(&revised); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if err := SaveShapes(path, lib); err != nil {
		t.Fatalf("SaveShapes failed: %v", err)
	}
	loaded, err := LoadShapes(path)
	if err != nil {
		t.Fatalf("LoadShapes failed: %v", err)
	}

	if got := loaded.Get("rect_plate"); got == nil || got.Version != 2 {
		t.Errorf("expected latest rect_plate at version 2, got %+v", got)
	}
	if loaded.GetVersion("rect_plate", 1) == nil {
		t.Error("expected version 1 to remain loadable")
	}
	if len(loaded.IDs()) != len(lib.IDs()) {
		t.Errorf("expected %d shape ids, got %d", len(lib.IDs()), len(loaded.IDs()))
	}
}

func TestLoadTemplatesSeedsBuiltins(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "templates.json")

	store, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates failed: %v", err)
	}
	if store.FindByName("Heat Exchanger TEMA BEM") == nil {
		t.Error("expected the builtin TEMA BEM template in a fresh store")
	}

	if err := SaveTemplates(path, store); err != nil {
		t.Fatalf("SaveTemplates failed: %v", err)
	}
	loaded, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates failed: %v", err)
	}
	if len(loaded.Templates) != len(store.Templates) {
		t.Errorf("expected %d templates, got %d", len(store.Templates), len(loaded.Templates))
	}
}

func TestExportImportAllData(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "backup.json")

	rates := DefaultRates()
	catalog := material.DefaultCatalog()
	store := template.NewStore()
	if err := store.Add(template.BuiltinTEMABEM()); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := ExportAllData(path, rates, catalog, store); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}
	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version == "" {
		t.Error("expected a version field")
	}
	if backup.Rates != rates {
		t.Errorf("rates did not survive the round trip: %+v", backup.Rates)
	}
	if len(backup.Materials.Materials) != len(catalog.Materials) {
		t.Errorf("expected %d materials, got %d", len(catalog.Materials), len(backup.Materials.Materials))
	}
	if len(backup.Templates.Templates) != 1 {
		t.Errorf("expected 1 template, got %d", len(backup.Templates.Templates))
	}
}

func TestImportAllDataRejectsMissingVersion(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(path, []byte(`{"rates":{}}`), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected an error for a backup without a version field")
	}
}
