package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fabworks/bomcost/internal/template"
)

// DefaultTemplatesPath returns the default file path for the template store.
// This is located at ~/.bomcost/templates.json.
func DefaultTemplatesPath() string {
	return filepath.Join(DefaultDataDir(), "templates.json")
}

// SaveTemplates writes the template store to a JSON file.
func SaveTemplates(path string, store *template.Store) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTemplates reads a template store from a JSON file. If the file does
// not exist, returns a store seeded with the builtin templates.
func LoadTemplates(path string) (*template.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			store := template.NewStore()
			if addErr := store.Add(template.BuiltinTEMABEM()); addErr != nil {
				return nil, addErr
			}
			return store, nil
		}
		return nil, err
	}
	var store template.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, err
	}
	if store.Templates == nil {
		store.Templates = []*template.Definition{}
	}
	return &store, nil
}
