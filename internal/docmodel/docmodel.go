// Package docmodel defines the typed primitives flowing through the
// reconstruction pipeline and the final Document structure handed to
// downstream consumers.
package docmodel

import "strings"

// TextBlock is one normalized unit of extracted text in reading order.
type TextBlock struct {
	Text   string      `json:"text"`
	BBox   BoundingBox `json:"bbox"`
	Indent int         `json:"indent"` // derived from left-x offset against the page base
}

// HeadingKind identifies which pattern matched a heading.
type HeadingKind string

const (
	KindNumeric       HeadingKind = "numeric"
	KindKoreanOrdinal HeadingKind = "korean_ordinal"
	KindSymbolic      HeadingKind = "symbolic"
	KindIndent        HeadingKind = "indent"
)

// HeadingEvent is a text block classified as a section heading.
// Immutable once created.
type HeadingEvent struct {
	Title string      `json:"title"`
	Level int         `json:"level"` // 1 = top
	BBox  BoundingBox `json:"bbox"`
	Kind  HeadingKind `json:"kind"`
}

// Strategy tags the table-detection backend that produced a candidate.
type Strategy string

const (
	StrategyLattice Strategy = "lattice" // ruling-line based
	StrategyStream  Strategy = "stream"  // whitespace based
)

// TableCandidate is one table as reported by one detection strategy,
// before reconciliation.
type TableCandidate struct {
	Grid       [][]string  `json:"grid"`
	BBox       BoundingBox `json:"bbox"`
	Page       int         `json:"page"`
	Confidence float64     `json:"confidence"` // [0,1]
	Strategy   Strategy    `json:"strategy"`
}

// Columns returns the column count of the candidate's grid.
func (c TableCandidate) Columns() int {
	if len(c.Grid) == 0 {
		return 0
	}
	return len(c.Grid[0])
}

// Table is a reconciled table owned by exactly one section. A table
// stitched across pages spans [PageStart, PageEnd]; its bbox is the
// envelope anchored on PageStart.
type Table struct {
	Grid       [][]string  `json:"grid"`
	BBox       BoundingBox `json:"bbox"`
	PageStart  int         `json:"page_start"`
	PageEnd    int         `json:"page_end"`
	Caption    string      `json:"caption,omitempty"`
	Confidence float64     `json:"confidence"`
}

// Section is one node of the hierarchical document tree. Children are
// ordered by document order and every child's level is strictly greater
// than the parent's.
type Section struct {
	Level    int         `json:"level"`
	Title    string      `json:"title"`
	BBox     BoundingBox `json:"bbox"`
	Content  []string    `json:"content,omitempty"`
	Children []*Section  `json:"children,omitempty"`
	Tables   []*Table    `json:"tables,omitempty"`
	Preamble bool        `json:"preamble,omitempty"`
}

// Document is the reconstructed structure: the only output artifact of
// a parse run, immutable after assembly.
type Document struct {
	Source   string         `json:"source"`
	Sections []*Section     `json:"sections"`
	Metadata map[string]int `json:"metadata"`
}

// AllTables collects every table in the tree, in document order.
func (d *Document) AllTables() []*Table {
	var out []*Table
	var walk func(*Section)
	walk = func(s *Section) {
		out = append(out, s.Tables...)
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, s := range d.Sections {
		walk(s)
	}
	return out
}

// FindSection returns the first section whose title contains the given
// substring (case-sensitive), depth-first in document order.
func (d *Document) FindSection(substr string) *Section {
	var search func(*Section) *Section
	search = func(s *Section) *Section {
		if strings.Contains(s.Title, substr) {
			return s
		}
		for _, c := range s.Children {
			if found := search(c); found != nil {
				return found
			}
		}
		return nil
	}
	for _, s := range d.Sections {
		if found := search(s); found != nil {
			return found
		}
	}
	return nil
}
