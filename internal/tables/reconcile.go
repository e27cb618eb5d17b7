// Package tables reconciles raw table candidates into the final table
// set: confidence filtering, cross-strategy deduplication, and
// stitching of tables that continue across a page boundary.
package tables

import (
	"fmt"
	"sort"

	"github.com/hwachang/gonggo/internal/docmodel"
)

// Config holds the reconciliation thresholds.
type Config struct {
	// MinConfidence drops candidates below it, even when they are the
	// only candidate for a region.
	MinConfidence float64
	// OverlapRatio above which two same-page candidates are the same
	// logical table.
	OverlapRatio float64
	// MarginTolerance is the distance (pt) from a page edge within
	// which a candidate counts as touching that edge.
	MarginTolerance float64
	// AlignTolerance is the max left-edge drift (pt) between the two
	// halves of a cross-page table.
	AlignTolerance float64
}

func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		OverlapRatio:    0.7,
		MarginTolerance: 60,
		AlignTolerance:  10,
	}
}

// Reconcile produces the deduplicated, confidence-filtered,
// cross-page-merged table set. pageHeights maps page index to page
// height; it decides margin contact for the merge step. The returned
// tables are sorted by anchor (page, y0, x0), which also makes ties
// deterministic across runs.
func Reconcile(candidates []docmodel.TableCandidate, pageHeights map[int]float64, cfg Config) ([]*docmodel.Table, []docmodel.Diagnostic) {
	var diags []docmodel.Diagnostic

	kept := filterConfidence(candidates, cfg.MinConfidence)
	sortCandidates(kept)
	kept = dedup(kept, cfg.OverlapRatio)

	tables, mergeDiags := mergeAcrossPages(kept, pageHeights, cfg)
	diags = append(diags, mergeDiags...)

	sort.SliceStable(tables, func(i, j int) bool {
		a, b := tables[i], tables[j]
		if a.PageStart != b.PageStart {
			return a.PageStart < b.PageStart
		}
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		return a.BBox.X0 < b.BBox.X0
	})
	return tables, diags
}

func filterConfidence(candidates []docmodel.TableCandidate, minConfidence float64) []docmodel.TableCandidate {
	kept := make([]docmodel.TableCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence >= minConfidence {
			kept = append(kept, c)
		}
	}
	return kept
}

// sortCandidates orders by (page, x0, y0); the lattice strategy sorts
// first on full ties so the dedup tie-break is reproducible.
func sortCandidates(cs []docmodel.TableCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.BBox.X0 != b.BBox.X0 {
			return a.BBox.X0 < b.BBox.X0
		}
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		return a.Strategy == docmodel.StrategyLattice && b.Strategy != docmodel.StrategyLattice
	})
}

// dedup collapses same-page candidates whose bbox overlap ratio exceeds
// the threshold: the higher-confidence one survives; on an exact tie
// the line-based (lattice) strategy wins for its structural precision.
func dedup(cs []docmodel.TableCandidate, overlapRatio float64) []docmodel.TableCandidate {
	removed := make([]bool, len(cs))
	for i := 0; i < len(cs); i++ {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(cs); j++ {
			if removed[j] || cs[i].Page != cs[j].Page {
				continue
			}
			if cs[i].BBox.OverlapRatio(cs[j].BBox) <= overlapRatio {
				continue
			}
			if loser := pickLoser(cs[i], cs[j]); loser == 1 {
				removed[j] = true
			} else {
				removed[i] = true
				break
			}
		}
	}
	out := cs[:0]
	for i, c := range cs {
		if !removed[i] {
			out = append(out, c)
		}
	}
	return out
}

// pickLoser returns 0 when the first candidate loses, 1 when the
// second does.
func pickLoser(a, b docmodel.TableCandidate) int {
	switch {
	case a.Confidence > b.Confidence:
		return 1
	case a.Confidence < b.Confidence:
		return 0
	case a.Strategy == docmodel.StrategyLattice && b.Strategy != docmodel.StrategyLattice:
		return 1
	case b.Strategy == docmodel.StrategyLattice && a.Strategy != docmodel.StrategyLattice:
		return 0
	default:
		// Identical confidence and strategy: the earlier candidate in
		// (page, x0, y0) order is already first, keep it.
		return 1
	}
}

// mergeAcrossPages stitches candidates that touch the bottom margin of
// page N and the top margin of page N+1 into one logical table,
// transitively. A column-count mismatch at an otherwise mergeable
// boundary is recorded as a diagnostic and the halves stand alone.
func mergeAcrossPages(cs []docmodel.TableCandidate, pageHeights map[int]float64, cfg Config) ([]*docmodel.Table, []docmodel.Diagnostic) {
	var diags []docmodel.Diagnostic

	ordered := make([]docmodel.TableCandidate, len(cs))
	copy(ordered, cs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Page != ordered[j].Page {
			return ordered[i].Page < ordered[j].Page
		}
		if ordered[i].BBox.Y0 != ordered[j].BBox.Y0 {
			return ordered[i].BBox.Y0 < ordered[j].BBox.Y0
		}
		return ordered[i].BBox.X0 < ordered[j].BBox.X0
	})

	consumed := make([]bool, len(ordered))
	var tables []*docmodel.Table

	for i, c := range ordered {
		if consumed[i] {
			continue
		}
		table := &docmodel.Table{
			Grid:       cloneGrid(c.Grid),
			BBox:       c.BBox,
			PageStart:  c.Page,
			PageEnd:    c.Page,
			Confidence: c.Confidence,
		}
		tail := c
		for {
			j, next, ok := findContinuation(ordered, consumed, tail, pageHeights, cfg)
			if !ok {
				break
			}
			if next.Columns() != tableColumns(table) {
				diags = append(diags, docmodel.Diagnostic{
					Kind: docmodel.DiagTableMergeConflict,
					Page: next.Page,
					Detail: fmt.Sprintf("column count %d does not continue table with %d columns from page %d",
						next.Columns(), tableColumns(table), tail.Page),
				})
				break
			}
			table.Grid = append(table.Grid, cloneGrid(next.Grid)...)
			table.BBox = docmodel.BoundingBox{
				X0:   min(table.BBox.X0, next.BBox.X0),
				Y0:   table.BBox.Y0, // top of the first half
				X1:   max(table.BBox.X1, next.BBox.X1),
				Y1:   next.BBox.Y1, // bottom of the latest half
				Page: table.PageStart,
			}
			table.PageEnd = next.Page
			table.Confidence = min(table.Confidence, next.Confidence)
			consumed[j] = true
			tail = next
		}
		tables = append(tables, table)
	}
	return tables, diags
}

// findContinuation locates the candidate on the next page that lines up
// under the tail of the table being built. Geometry alone qualifies a
// continuation; the column check happens at the caller so a mismatch
// can be reported.
func findContinuation(ordered []docmodel.TableCandidate, consumed []bool, tail docmodel.TableCandidate, pageHeights map[int]float64, cfg Config) (int, docmodel.TableCandidate, bool) {
	height, ok := pageHeights[tail.Page]
	if !ok || height-tail.BBox.Y1 > cfg.MarginTolerance {
		return 0, docmodel.TableCandidate{}, false
	}
	for j, next := range ordered {
		if consumed[j] || next.Page != tail.Page+1 {
			continue
		}
		if next.BBox.Y0 > cfg.MarginTolerance {
			continue
		}
		if abs(next.BBox.X0-tail.BBox.X0) > cfg.AlignTolerance {
			continue
		}
		return j, next, true
	}
	return 0, docmodel.TableCandidate{}, false
}

func tableColumns(t *docmodel.Table) int {
	if len(t.Grid) == 0 {
		return 0
	}
	return len(t.Grid[0])
}

func cloneGrid(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
