// Package backend turns a PDF file into the core's typed page
// primitives. Three independent strategies contribute: a fast
// layout/position scan for text blocks, ruling-line (lattice) table
// detection, and whitespace (stream) table detection. The core consumes
// only their structured output.
package backend

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/hwachang/gonggo/internal/docmodel"
	"github.com/hwachang/gonggo/internal/normalize"
	pdflib "github.com/ledongthuc/pdf"
)

// Extractor runs all extraction strategies over a PDF.
type Extractor struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract produces one PageInput per page. A page that yields no
// primitives is still emitted, so page numbering stays dense for the
// cross-page merge step.
func (e *Extractor) Extract(path string) ([]normalize.PageInput, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	inputs := make([]normalize.PageInput, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		pageIndex := i - 1
		if page.V.IsNull() {
			inputs = append(inputs, normalize.PageInput{Number: pageIndex})
			continue
		}

		scan := scanPage(page, pageIndex)
		in := normalize.PageInput{
			Number: pageIndex,
			Width:  scan.width,
			Height: scan.height,
			Blocks: scan.blocks,
		}
		in.Lattice = detectLatticeTables(scan, pageIndex)
		in.Stream = detectStreamTables(scan.blocks, pageIndex)

		e.log.Debug("extracted page",
			"page", pageIndex,
			"blocks", len(in.Blocks),
			"lattice_candidates", len(in.Lattice),
			"stream_candidates", len(in.Stream),
		)
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// rowTolerance groups primitives sharing a baseline, in points.
const rowTolerance = 3.0

// groupRows buckets blocks into visual rows by y position and sorts
// each row left to right. Shared by both table detectors.
func groupRows(blocks []normalize.RawBlock) [][]normalize.RawBlock {
	if len(blocks) == 0 {
		return nil
	}
	sorted := make([]normalize.RawBlock, len(blocks))
	copy(sorted, blocks)
	sortBlocks(sorted)

	var rows [][]normalize.RawBlock
	current := []normalize.RawBlock{sorted[0]}
	currentY := sorted[0].BBox.Y0
	for _, b := range sorted[1:] {
		if b.BBox.Y0-currentY <= rowTolerance {
			current = append(current, b)
			continue
		}
		rows = append(rows, sortRowByX(current))
		current = []normalize.RawBlock{b}
		currentY = b.BBox.Y0
	}
	rows = append(rows, sortRowByX(current))
	return rows
}

func sortBlocks(blocks []normalize.RawBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].BBox.Y0 != blocks[j].BBox.Y0 {
			return blocks[i].BBox.Y0 < blocks[j].BBox.Y0
		}
		return blocks[i].BBox.X0 < blocks[j].BBox.X0
	})
}

func sortRowByX(row []normalize.RawBlock) []normalize.RawBlock {
	sort.SliceStable(row, func(i, j int) bool { return row[i].BBox.X0 < row[j].BBox.X0 })
	return row
}

func rowsEnvelope(rows [][]normalize.RawBlock, page int) docmodel.BoundingBox {
	env := rows[0][0].BBox
	env.Page = page
	for _, row := range rows {
		for _, b := range row {
			env = env.Envelope(b.BBox)
		}
	}
	return env
}
