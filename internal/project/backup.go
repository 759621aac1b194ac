package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fabworks/bomcost/internal/material"
	"github.com/fabworks/bomcost/internal/model"
	"github.com/fabworks/bomcost/internal/template"
)

// BackupData is the top-level structure for import/export of all
// application data in a single file.
type BackupData struct {
	Version   string            `json:"version"`
	CreatedAt string            `json:"created_at"`
	Rates     model.CostRates   `json:"rates"`
	Materials *material.Catalog `json:"materials"`
	Templates *template.Store   `json:"templates"`
}

// ExportAllData exports rates, the material catalog, and the template store
// to a single JSON file at the specified path.
func ExportAllData(exportPath string, rates model.CostRates, materials *material.Catalog, templates *template.Store) error {
	backup := BackupData{
		Version:   "1.0.0",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Rates:     rates,
		Materials: materials,
		Templates: templates,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported configuration.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Materials == nil {
		backup.Materials = &material.Catalog{}
	}
	if backup.Templates == nil {
		backup.Templates = template.NewStore()
	}
	return backup, nil
}
