package formula

import "fmt"

// SyntaxError reports malformed formula text. It is fatal at definition
// time and blocks publishing the enclosing shape or template.
type SyntaxError struct {
	Pos int // byte offset into the source
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// UnknownVariableError reports a variable that is neither a parameter, a
// declared constant, nor a builtin constant.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q", e.Name)
}

// EvaluationError reports a runtime numeric failure such as division by
// zero or a domain error.
type EvaluationError struct {
	Msg string
}

func (e *EvaluationError) Error() string {
	return "evaluation error: " + e.Msg
}
