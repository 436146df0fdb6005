package graph

import "fmt"

// MalformedPoolError reports a pool referencing a token address absent
// from the token mapping. The pool is never added; the caller decides
// whether to skip it or abort the build.
type MalformedPoolError struct {
	Pool  string
	Token string
}

func (e *MalformedPoolError) Error() string {
	return fmt.Sprintf("pool %s references unknown token %s", e.Pool, e.Token)
}

// InvariantViolation marks a structurally broken graph (missing edge
// attributes observed during enumeration). It is a programming error
// in the builder, raised as a panic and never recovered.
type InvariantViolation struct {
	Msg string
}

func (e InvariantViolation) Error() string {
	return "graph invariant violated: " + e.Msg
}
