// Package tree folds the classified event stream into the hierarchical
// section tree. The fold is inherently sequential: the open-section
// stack carries across page boundaries, so it runs single-threaded over
// pages in order, after per-page classification has finished.
package tree

import (
	"fmt"

	"github.com/hwachang/gonggo/internal/classify"
	"github.com/hwachang/gonggo/internal/docmodel"
)

// Opening records where a section was opened, in document order. The
// assembler resolves table ownership against this timeline.
type Opening struct {
	Page    int
	Y       float64
	Section *docmodel.Section
}

// Result is the output of the fold: the top-level sections and the
// heading timeline.
type Result struct {
	Sections []*docmodel.Section
	Timeline []Opening
	// Preamble holds content seen before the first heading; nil when
	// the document opens with a heading. When set it is also the first
	// element of Sections.
	Preamble *docmodel.Section
}

// Build consumes per-page event streams, concatenated in page order.
// pageNumbers[i] is the page index of events[i].
func Build(events [][]classify.Event, pageNumbers []int) (*Result, error) {
	res := &Result{}
	var stack []*docmodel.Section

	for pi, pageEvents := range events {
		page := pageNumbers[pi]
		for _, ev := range pageEvents {
			if ev.Heading == nil {
				appendContent(res, stack, ev.Block.Text)
				continue
			}
			if err := openSection(res, &stack, page, ev.Heading); err != nil {
				return nil, err
			}
		}
	}
	// End of stream: the stack is discarded; the accumulated top-level
	// list is final.
	return res, nil
}

// openSection pops the stack down to the new heading's parent and
// pushes the new section. The stack invariant (strictly increasing
// levels bottom to top) makes parent lookup a suffix pop.
func openSection(res *Result, stack *[]*docmodel.Section, page int, h *docmodel.HeadingEvent) error {
	if h.Level < 1 {
		return &docmodel.StructuralError{
			Page:   page,
			Level:  h.Level,
			Detail: fmt.Sprintf("heading %q carries non-positive level", h.Title),
		}
	}
	s := *stack
	for len(s) > 0 && s[len(s)-1].Level >= h.Level {
		s = s[:len(s)-1]
	}
	// The remaining stack must be strictly increasing and reducible
	// below the new level; a violation here means an upstream
	// classifier bug, so it is surfaced rather than repaired.
	for i := range s {
		if (i > 0 && s[i-1].Level >= s[i].Level) || s[i].Level >= h.Level {
			return &docmodel.StructuralError{
				Page:   page,
				Level:  h.Level,
				Detail: fmt.Sprintf("open-section stack not reducible below heading %q (stack level %d)", h.Title, s[i].Level),
			}
		}
	}

	section := &docmodel.Section{
		Level: h.Level,
		Title: h.Title,
		BBox:  h.BBox,
	}
	if len(s) > 0 {
		parent := s[len(s)-1]
		parent.Children = append(parent.Children, section)
	} else {
		res.Sections = append(res.Sections, section)
	}
	s = append(s, section)
	*stack = s

	res.Timeline = append(res.Timeline, Opening{Page: page, Y: h.BBox.Y0, Section: section})
	return nil
}

// appendContent attaches a content block to the innermost open section,
// or to the synthetic preamble when no heading has been seen yet, so
// leading content is never dropped.
func appendContent(res *Result, stack []*docmodel.Section, text string) {
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		top.Content = append(top.Content, text)
		return
	}
	if res.Preamble == nil {
		res.Preamble = &docmodel.Section{Level: 1, Preamble: true}
		res.Sections = append([]*docmodel.Section{res.Preamble}, res.Sections...)
	}
	res.Preamble.Content = append(res.Preamble.Content, text)
}

// EnsurePreamble returns the preamble section, creating and prepending
// it when absent. The assembler uses it for tables anchored before any
// heading.
func (r *Result) EnsurePreamble() *docmodel.Section {
	if r.Preamble == nil {
		r.Preamble = &docmodel.Section{Level: 1, Preamble: true}
		r.Sections = append([]*docmodel.Section{r.Preamble}, r.Sections...)
	}
	return r.Preamble
}
