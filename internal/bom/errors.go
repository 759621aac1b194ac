package bom

import "fmt"

// StructuralError reports an invalid tree mutation, e.g. a re-parenting
// that would create a cycle. It is raised before any mutation is committed,
// so the tree is left unchanged.
type StructuralError struct {
	ItemID string
	Msg    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error on item %q: %s", e.ItemID, e.Msg)
}

// ConflictError reports an optimistic-concurrency version mismatch. The
// caller must re-fetch the tree and retry; the engine never merges
// concurrent edits.
type ConflictError struct {
	Supplied int64
	Actual   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: supplied %d, tree is at %d", e.Supplied, e.Actual)
}
