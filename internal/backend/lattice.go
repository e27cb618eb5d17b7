package backend

import (
	"sort"
	"strings"

	"github.com/hwachang/gonggo/internal/docmodel"
	"github.com/hwachang/gonggo/internal/normalize"
)

// Lattice detection: tables announced by drawn rulings. Row and column
// boundaries come from clustered horizontal/vertical line positions;
// cell text is whatever blocks fall inside each cell.

const (
	boundaryTolerance = 3.0  // rulings within this distance are one boundary
	tableGapSplit     = 50.0 // vertical gap separating stacked tables
	latticeBaseScore  = 0.7  // explicit rulings carry high structural confidence
)

func detectLatticeTables(scan pageScan, pageIndex int) []docmodel.TableCandidate {
	var hs, vs []ruling
	for _, r := range scan.rulings {
		if r.horizontal {
			hs = append(hs, r)
		} else {
			vs = append(vs, r)
		}
	}
	if len(hs) < 2 || len(vs) < 2 {
		return nil
	}

	var candidates []docmodel.TableCandidate
	for _, band := range splitBands(hs) {
		rowEdges := clusterPositions(rulingPositions(band), boundaryTolerance)
		if len(rowEdges) < 2 {
			continue
		}
		top, bottom := rowEdges[0], rowEdges[len(rowEdges)-1]

		var spanning []float64
		for _, v := range vs {
			if v.start <= top+boundaryTolerance && v.end >= bottom-boundaryTolerance {
				spanning = append(spanning, v.pos)
			}
		}
		colEdges := clusterPositions(spanning, boundaryTolerance)
		if len(colEdges) < 2 {
			continue
		}

		if c, ok := buildLatticeCandidate(rowEdges, colEdges, scan.blocks, pageIndex); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// splitBands separates stacked tables: horizontal rulings whose y gap
// exceeds tableGapSplit belong to different tables.
func splitBands(hs []ruling) [][]ruling {
	sorted := make([]ruling, len(hs))
	copy(sorted, hs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].pos < sorted[j].pos })

	var bands [][]ruling
	current := []ruling{sorted[0]}
	for _, r := range sorted[1:] {
		if r.pos-current[len(current)-1].pos > tableGapSplit {
			bands = append(bands, current)
			current = nil
		}
		current = append(current, r)
	}
	bands = append(bands, current)
	return bands
}

func rulingPositions(rs []ruling) []float64 {
	positions := make([]float64, len(rs))
	for i, r := range rs {
		positions[i] = r.pos
	}
	return positions
}

// clusterPositions collapses nearby positions to single boundaries,
// returned sorted ascending.
func clusterPositions(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	positions := make([]float64, len(values))
	copy(positions, values)
	sort.Float64s(positions)

	var edges []float64
	clusterStart := positions[0]
	clusterSum, clusterN := positions[0], 1.0
	for _, p := range positions[1:] {
		if p-clusterStart <= tolerance {
			clusterSum += p
			clusterN++
			continue
		}
		edges = append(edges, clusterSum/clusterN)
		clusterStart, clusterSum, clusterN = p, p, 1
	}
	edges = append(edges, clusterSum/clusterN)
	return edges
}

func buildLatticeCandidate(rowEdges, colEdges []float64, blocks []normalize.RawBlock, pageIndex int) (docmodel.TableCandidate, bool) {
	nRows, nCols := len(rowEdges)-1, len(colEdges)-1
	if nRows < 1 || nCols < 2 {
		return docmodel.TableCandidate{}, false
	}

	grid := make([][]string, nRows)
	for i := range grid {
		grid[i] = make([]string, nCols)
	}
	filled := 0
	for _, b := range blocks {
		cx := (b.BBox.X0 + b.BBox.X1) / 2
		cy := (b.BBox.Y0 + b.BBox.Y1) / 2
		row := edgeIndex(rowEdges, cy)
		col := edgeIndex(colEdges, cx)
		if row < 0 || col < 0 {
			continue
		}
		if grid[row][col] == "" {
			grid[row][col] = b.Text
			filled++
		} else {
			grid[row][col] += " " + b.Text
		}
	}
	if filled == 0 {
		return docmodel.TableCandidate{}, false
	}

	for i := range grid {
		for j := range grid[i] {
			grid[i][j] = strings.TrimSpace(grid[i][j])
		}
	}

	fillRatio := float64(filled) / float64(nRows*nCols)
	return docmodel.TableCandidate{
		Grid: grid,
		BBox: docmodel.BoundingBox{
			X0:   colEdges[0],
			Y0:   rowEdges[0],
			X1:   colEdges[nCols],
			Y1:   rowEdges[nRows],
			Page: pageIndex,
		},
		Page:       pageIndex,
		Confidence: latticeBaseScore + (1-latticeBaseScore)*fillRatio,
		Strategy:   docmodel.StrategyLattice,
	}, true
}

// edgeIndex returns the interval of edges containing v, or -1 when v
// lies outside.
func edgeIndex(edges []float64, v float64) int {
	for i := 0; i < len(edges)-1; i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i
		}
	}
	return -1
}
