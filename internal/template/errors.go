package template

import "fmt"

// ErrorKind distinguishes the instantiation failure modes.
type ErrorKind string

const (
	ErrMissingParameter ErrorKind = "missing-parameter"
	ErrOutOfRange       ErrorKind = "out-of-range"
	ErrUnresolvable     ErrorKind = "unresolvable-formula"
)

// TemplateError reports why a template could not be instantiated. It is
// raised before any tree is handed to the caller; instantiation is
// all-or-nothing.
type TemplateError struct {
	Kind  ErrorKind
	Param string // offending template parameter, if any
	Item  string // placeholder item name, if any
	Msg   string
}

func (e *TemplateError) Error() string {
	switch {
	case e.Param != "" && e.Item != "":
		return fmt.Sprintf("template error (%s) on item %q, parameter %q: %s", e.Kind, e.Item, e.Param, e.Msg)
	case e.Param != "":
		return fmt.Sprintf("template error (%s) on parameter %q: %s", e.Kind, e.Param, e.Msg)
	case e.Item != "":
		return fmt.Sprintf("template error (%s) on item %q: %s", e.Kind, e.Item, e.Msg)
	default:
		return fmt.Sprintf("template error (%s): %s", e.Kind, e.Msg)
	}
}
