package docmodel

import (
	"errors"
	"fmt"
)

// DiagnosticKind classifies non-fatal conditions accumulated during a
// parse run.
type DiagnosticKind string

const (
	// DiagMalformedPrimitive marks a dropped primitive with degenerate
	// geometry.
	DiagMalformedPrimitive DiagnosticKind = "malformed_primitive"
	// DiagTableMergeConflict marks a page-boundary merge attempt that
	// failed on column count; the candidates are kept separate.
	DiagTableMergeConflict DiagnosticKind = "table_merge_conflict"
)

// Diagnostic is an advisory quality signal, not a failure. Callers get
// the full list alongside a complete (possibly degraded) Document.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Page   int            `json:"page"`
	Detail string         `json:"detail"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (page %d): %s", d.Kind, d.Page, d.Detail)
}

// ErrEmptyPageSet is returned when the input has zero pages: there is
// nothing to reconstruct and no Document is produced.
var ErrEmptyPageSet = errors.New("empty page set: nothing to reconstruct")

// StructuralError reports an internal-consistency failure in the tree
// builder. It is surfaced rather than silently repaired, since a repair
// could hide upstream classifier bugs.
type StructuralError struct {
	Page   int
	Level  int
	Detail string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural invariant violation at page %d level %d: %s", e.Page, e.Level, e.Detail)
}
