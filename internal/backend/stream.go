package backend

import (
	"strings"

	"github.com/hwachang/gonggo/internal/docmodel"
	"github.com/hwachang/gonggo/internal/normalize"
)

// Stream detection: tables betrayed only by whitespace. Runs of
// consecutive multi-cell rows whose left edges repeat from row to row
// are treated as a table region; columns come from clustering those
// edges across the run.

const (
	columnAlignTolerance = 5.0  // x drift still counted as the same column
	columnClusterWidth   = 10.0 // cluster radius when deriving columns
	minStreamRows        = 3    // shorter runs are prose, not tables
	streamBaseScore      = 0.4  // whitespace evidence is weaker than rulings
)

func detectStreamTables(blocks []normalize.RawBlock, pageIndex int) []docmodel.TableCandidate {
	rows := groupRows(blocks)
	if len(rows) < minStreamRows {
		return nil
	}

	var candidates []docmodel.TableCandidate
	var run [][]normalize.RawBlock
	flush := func() {
		if len(run) >= minStreamRows {
			if c, ok := buildStreamCandidate(run, pageIndex); ok {
				candidates = append(candidates, c)
			}
		}
		run = nil
	}

	for _, row := range rows {
		if len(row) < 2 {
			flush()
			continue
		}
		if len(run) > 0 && alignedEdges(run[len(run)-1], row) < 2 {
			flush()
		}
		run = append(run, row)
	}
	flush()
	return candidates
}

// alignedEdges counts left edges shared (within tolerance) by two rows.
func alignedEdges(a, b []normalize.RawBlock) int {
	n := 0
	for _, ba := range a {
		for _, bb := range b {
			if abs(ba.BBox.X0-bb.BBox.X0) <= columnAlignTolerance {
				n++
				break
			}
		}
	}
	return n
}

func buildStreamCandidate(run [][]normalize.RawBlock, pageIndex int) (docmodel.TableCandidate, bool) {
	columns := clusterColumns(run)
	if len(columns) < 2 {
		return docmodel.TableCandidate{}, false
	}

	grid := make([][]string, len(run))
	assigned, total := 0, 0
	for i, row := range run {
		cells := make([]string, len(columns))
		for _, b := range row {
			total++
			col := nearestColumn(columns, b.BBox.X0)
			if col < 0 {
				continue
			}
			assigned++
			if cells[col] == "" {
				cells[col] = b.Text
			} else {
				cells[col] += " " + b.Text
			}
		}
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		grid[i] = cells
	}
	if total == 0 {
		return docmodel.TableCandidate{}, false
	}

	score := float64(assigned) / float64(total)
	return docmodel.TableCandidate{
		Grid:       grid,
		BBox:       rowsEnvelope(run, pageIndex),
		Page:       pageIndex,
		Confidence: streamBaseScore + (1-streamBaseScore)*score,
		Strategy:   docmodel.StrategyStream,
	}, true
}

// clusterColumns derives the column left edges for a run by clustering
// the x0 of every block in it.
func clusterColumns(run [][]normalize.RawBlock) []float64 {
	var xs []float64
	for _, row := range run {
		for _, b := range row {
			xs = append(xs, b.BBox.X0)
		}
	}
	return clusterPositions(xs, columnClusterWidth)
}

func nearestColumn(columns []float64, x float64) int {
	best, bestDist := -1, columnClusterWidth*2
	for i, c := range columns {
		if d := abs(x - c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
