// Package normalize converts heterogeneous backend output into uniform
// per-page primitives: ordered text blocks in reading order and an
// unordered pool of table candidates.
package normalize

import (
	"fmt"
	"sort"

	"github.com/hwachang/gonggo/internal/docmodel"
)

// RawBlock is a pre-normalization text unit as reported by an
// extraction backend.
type RawBlock struct {
	Text string
	BBox docmodel.BoundingBox
}

// PageInput is the per-page input contract of the core: raw text blocks
// from the layout scanner plus table candidates from the two detection
// strategies.
type PageInput struct {
	Number  int
	Width   float64
	Height  float64
	Blocks  []RawBlock
	Lattice []docmodel.TableCandidate
	Stream  []docmodel.TableCandidate
}

// Page is the normalized form of one page.
type Page struct {
	Number     int
	Width      float64
	Height     float64
	Blocks     []docmodel.TextBlock // sorted by (y0, x0): reading order
	Candidates []docmodel.TableCandidate
}

// Indentation is bucketed in steps of 20pt from the page's modal left
// edge; x positions are snapped to a 5pt raster before voting.
const (
	indentStep   = 20.0
	baseXQuantum = 5.0
)

// NormalizePage is a pure transform: degenerate primitives are dropped
// with a diagnostic and the run continues.
func NormalizePage(in PageInput) (Page, []docmodel.Diagnostic) {
	var diags []docmodel.Diagnostic

	blocks := make([]docmodel.TextBlock, 0, len(in.Blocks))
	for _, raw := range in.Blocks {
		if !raw.BBox.Valid() {
			diags = append(diags, docmodel.Diagnostic{
				Kind:   docmodel.DiagMalformedPrimitive,
				Page:   in.Number,
				Detail: fmt.Sprintf("text block %q has degenerate geometry", truncate(raw.Text, 40)),
			})
			continue
		}
		if raw.Text == "" {
			continue
		}
		blocks = append(blocks, docmodel.TextBlock{Text: raw.Text, BBox: raw.BBox})
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].BBox.Y0 != blocks[j].BBox.Y0 {
			return blocks[i].BBox.Y0 < blocks[j].BBox.Y0
		}
		return blocks[i].BBox.X0 < blocks[j].BBox.X0
	})

	assignIndents(blocks)

	candidates := make([]docmodel.TableCandidate, 0, len(in.Lattice)+len(in.Stream))
	for _, c := range append(append([]docmodel.TableCandidate{}, in.Lattice...), in.Stream...) {
		if !c.BBox.Valid() {
			diags = append(diags, docmodel.Diagnostic{
				Kind:   docmodel.DiagMalformedPrimitive,
				Page:   in.Number,
				Detail: fmt.Sprintf("%s table candidate has degenerate geometry", c.Strategy),
			})
			continue
		}
		candidates = append(candidates, c)
	}

	return Page{
		Number:     in.Number,
		Width:      in.Width,
		Height:     in.Height,
		Blocks:     blocks,
		Candidates: candidates,
	}, diags
}

// ExcludeTableRegions drops blocks whose center lies inside a same-page
// table candidate at or above minConfidence. Cell text reaches the
// document through the reconciled table grid; classifying those blocks
// too would repeat every table body as section content.
func ExcludeTableRegions(blocks []docmodel.TextBlock, candidates []docmodel.TableCandidate, minConfidence float64) []docmodel.TextBlock {
	regions := make([]docmodel.BoundingBox, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence >= minConfidence {
			regions = append(regions, c.BBox)
		}
	}
	if len(regions) == 0 {
		return blocks
	}
	kept := make([]docmodel.TextBlock, 0, len(blocks))
	for _, b := range blocks {
		cx := (b.BBox.X0 + b.BBox.X1) / 2
		cy := (b.BBox.Y0 + b.BBox.Y1) / 2
		inside := false
		for _, r := range regions {
			if r.Page == b.BBox.Page && r.ContainsPoint(cx, cy) {
				inside = true
				break
			}
		}
		if !inside {
			kept = append(kept, b)
		}
	}
	return kept
}

// assignIndents derives each block's indentation level from its left-x
// offset against the page's most common left edge.
func assignIndents(blocks []docmodel.TextBlock) {
	if len(blocks) == 0 {
		return
	}
	base := baseXPosition(blocks)
	for i := range blocks {
		offset := blocks[i].BBox.X0 - base
		if offset < 0 {
			offset = 0
		}
		blocks[i].Indent = int(offset / indentStep)
	}
}

// baseXPosition returns the modal left-x of the page, snapped to a 5pt
// raster so slightly jittered columns still vote together.
func baseXPosition(blocks []docmodel.TextBlock) float64 {
	votes := make(map[float64]int)
	for _, b := range blocks {
		snapped := float64(int(b.BBox.X0/baseXQuantum+0.5)) * baseXQuantum
		votes[snapped]++
	}
	var best float64
	bestCount := -1
	for x, n := range votes {
		if n > bestCount || (n == bestCount && x < best) {
			best, bestCount = x, n
		}
	}
	return best
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
