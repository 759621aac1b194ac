// Package project persists engine data as JSON files under the user's data
// directory: BOM trees, the material catalog, cost rates, and templates.
// Loading is forgiving (missing files yield defaults), saving creates parent
// directories as needed.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fabworks/bomcost/internal/model"
)

// DefaultDataDir returns the default directory for application data.
// On all platforms this is ~/.bomcost/
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".bomcost")
}

// DefaultTreePath returns the default path for a named BOM tree file.
func DefaultTreePath(name string) string {
	return filepath.Join(DefaultDataDir(), "trees", name+".json")
}

// SaveTree writes a BOM tree to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveTree(path string, tree *model.BOMTree) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTree reads a BOM tree from the specified JSON file and verifies its
// structural integrity before handing it to the caller.
func LoadTree(path string) (*model.BOMTree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tree model.BOMTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	if err := verifyTree(&tree); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &tree, nil
}

// verifyTree checks the parent/child links of a loaded tree. A file edited
// outside the application may carry dangling ids or a broken root.
func verifyTree(tree *model.BOMTree) error {
	if tree.Items == nil || tree.Items[tree.RootID] == nil {
		return fmt.Errorf("tree has no root item")
	}
	for id, item := range tree.Items {
		if item.ID != id {
			return fmt.Errorf("item keyed %q carries id %q", id, item.ID)
		}
		if id != tree.RootID {
			parent := tree.Items[item.ParentID]
			if parent == nil {
				return fmt.Errorf("item %q references missing parent %q", id, item.ParentID)
			}
		}
		for _, cid := range item.ChildIDs {
			child := tree.Items[cid]
			if child == nil {
				return fmt.Errorf("item %q references missing child %q", id, cid)
			}
			if child.ParentID != id {
				return fmt.Errorf("item %q lists child %q whose parent is %q", id, cid, child.ParentID)
			}
		}
	}
	return nil
}
