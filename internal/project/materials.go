package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fabworks/bomcost/internal/material"
)

// DefaultMaterialsPath returns the default file path for the material
// catalog. This is located at ~/.bomcost/materials.json.
func DefaultMaterialsPath() string {
	return filepath.Join(DefaultDataDir(), "materials.json")
}

// SaveMaterials writes the material catalog to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveMaterials(path string, catalog *material.Catalog) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadMaterials reads the material catalog from the specified JSON file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadMaterials(path string) (*material.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			catalog := material.DefaultCatalog()
			if saveErr := SaveMaterials(path, catalog); saveErr != nil {
				return catalog, saveErr
			}
			return catalog, nil
		}
		return nil, err
	}
	var catalog material.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// ImportMaterials imports a catalog from a user-specified JSON file, merging
// it into the existing catalog. Duplicate IDs are skipped so local price
// edits survive an import.
func ImportMaterials(path string, existing *material.Catalog) (*material.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported material.Catalog
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	ids := make(map[string]bool, len(existing.Materials))
	for _, m := range existing.Materials {
		ids[m.ID] = true
	}
	for _, m := range imported.Materials {
		if !ids[m.ID] {
			existing.Materials = append(existing.Materials, m)
			ids[m.ID] = true
		}
	}
	return existing, nil
}
