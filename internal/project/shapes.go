package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fabworks/bomcost/internal/shape"
)

// shapesFile is the on-disk form of a shape library: every published version
// of every definition, in publish order.
type shapesFile struct {
	Shapes []*shape.Definition `json:"shapes"`
}

// DefaultShapesPath returns the default file path for the shape library.
// This is located at ~/.bomcost/shapes.json.
func DefaultShapesPath() string {
	return filepath.Join(DefaultDataDir(), "shapes.json")
}

// SaveShapes writes the shape library to a JSON file.
func SaveShapes(path string, lib *shape.Library) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(shapesFile{Shapes: lib.Definitions()}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadShapes reads a shape library from a JSON file, re-publishing the
// definitions in stored order so version numbering is reproduced. If the
// file does not exist, it returns the builtin library and saves it.
func LoadShapes(path string) (*shape.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lib := shape.DefaultLibrary()
			if saveErr := SaveShapes(path, lib); saveErr != nil {
				return lib, saveErr
			}
			return lib, nil
		}
		return nil, err
	}
	var file shapesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	lib := shape.NewLibrary()
	for _, def := range file.Shapes {
		if err := lib.Publish(def); err != nil {
			return nil, fmt.Errorf("%s: shape %q: %w", path, def.ID, err)
		}
	}
	return lib, nil
}
