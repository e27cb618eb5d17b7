package reconstruct

import (
	"sort"

	"github.com/hwachang/gonggo/internal/docmodel"
	"github.com/hwachang/gonggo/internal/tree"
)

// assemble attaches each reconciled table to the innermost section open
// at the table's anchor (the page/position of its first row) and
// computes the document metadata. Pure: no failure modes of its own.
func assemble(source string, res *tree.Result, reconciled []*docmodel.Table) *docmodel.Document {
	for _, t := range reconciled {
		owner := ownerAt(res, t.PageStart, t.BBox.Y0)
		owner.Tables = append(owner.Tables, t)
	}

	doc := &docmodel.Document{
		Source:   source,
		Sections: res.Sections,
		Metadata: map[string]int{
			"total_sections": countSections(res.Sections),
			"total_tables":   len(reconciled),
			"max_depth":      maxDepth(res.Sections),
		},
	}
	return doc
}

// ownerAt resolves the section open at (page, y): the last section
// opened at or before that anchor. Anchors preceding every heading land
// in the preamble.
func ownerAt(res *tree.Result, page int, y float64) *docmodel.Section {
	timeline := res.Timeline
	// First opening strictly after the anchor; the owner sits just
	// before it.
	idx := sort.Search(len(timeline), func(i int) bool {
		o := timeline[i]
		if o.Page != page {
			return o.Page > page
		}
		return o.Y > y
	})
	if idx == 0 {
		return res.EnsurePreamble()
	}
	return timeline[idx-1].Section
}

func countSections(sections []*docmodel.Section) int {
	n := 0
	for _, s := range sections {
		n += 1 + countSections(s.Children)
	}
	return n
}

func maxDepth(sections []*docmodel.Section) int {
	depth := 0
	for _, s := range sections {
		if s.Level > depth {
			depth = s.Level
		}
		if d := maxDepth(s.Children); d > depth {
			depth = d
		}
	}
	return depth
}
