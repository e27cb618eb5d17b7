package backend

import (
	"sort"
	"strings"

	"github.com/hwachang/gonggo/internal/docmodel"
	"github.com/hwachang/gonggo/internal/normalize"
	pdflib "github.com/ledongthuc/pdf"
)

// A4 portrait, the near-universal format of government announcements;
// used when a page carries no MediaBox.
const (
	defaultPageWidth  = 595.28
	defaultPageHeight = 841.89
)

// pageScan is the raw geometry harvested from one page: positioned text
// blocks plus the drawn rulings the lattice detector feeds on. All
// coordinates are top-down.
type pageScan struct {
	width, height float64
	blocks        []normalize.RawBlock
	rulings       []ruling
}

// ruling is one straight line segment recovered from the page's drawn
// rectangles.
type ruling struct {
	horizontal bool
	pos        float64 // y for horizontal, x for vertical
	start, end float64 // span along the other axis
}

func scanPage(page pdflib.Page, pageIndex int) pageScan {
	scan := pageScan{}
	scan.width, scan.height = pageSize(page)

	content := page.Content()
	scan.blocks = textBlocks(content.Text, scan.height, pageIndex)
	scan.rulings = rulingsFromRects(content.Rect, scan.height)
	return scan
}

// pageSize reads the MediaBox, falling back to A4 when it is absent or
// degenerate.
func pageSize(page pdflib.Page) (w, h float64) {
	mediaBox := page.V.Key("MediaBox")
	if mediaBox.IsNull() || mediaBox.Len() < 4 {
		return defaultPageWidth, defaultPageHeight
	}
	w = mediaBox.Index(2).Float64() - mediaBox.Index(0).Float64()
	h = mediaBox.Index(3).Float64() - mediaBox.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}

// textBlocks converts the page's text fragments (PDF coordinates,
// origin bottom-left) into top-down line-level blocks. Fragments on one
// baseline merge into a block until a gap wide enough to be a column
// separator appears, so table cells stay separate blocks.
func textBlocks(texts []pdflib.Text, pageHeight float64, pageIndex int) []normalize.RawBlock {
	type fragment struct {
		bbox     docmodel.BoundingBox
		text     string
		fontSize float64
	}
	frags := make([]fragment, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = 10
		}
		frags = append(frags, fragment{
			bbox: docmodel.BoundingBox{
				X0:   t.X,
				Y0:   pageHeight - t.Y - size,
				X1:   t.X + t.W,
				Y1:   pageHeight - t.Y,
				Page: pageIndex,
			},
			text:     t.S,
			fontSize: size,
		})
	}
	if len(frags) == 0 {
		return nil
	}

	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].bbox.Y0 != frags[j].bbox.Y0 {
			return frags[i].bbox.Y0 < frags[j].bbox.Y0
		}
		return frags[i].bbox.X0 < frags[j].bbox.X0
	})

	var blocks []normalize.RawBlock
	var sb strings.Builder
	var blockBox docmodel.BoundingBox
	var prev *fragment

	flush := func() {
		if sb.Len() == 0 {
			return
		}
		blocks = append(blocks, normalize.RawBlock{Text: strings.TrimSpace(sb.String()), BBox: blockBox})
		sb.Reset()
	}

	for i := range frags {
		f := &frags[i]
		if prev == nil || f.bbox.Y0-prev.bbox.Y0 > rowTolerance {
			// New baseline.
			flush()
			blockBox = f.bbox
			sb.WriteString(f.text)
			prev = f
			continue
		}
		gap := f.bbox.X0 - prev.bbox.X1
		switch {
		case gap > columnGap(prev.fontSize):
			flush()
			blockBox = f.bbox
		case gap > wordGap(prev.fontSize):
			sb.WriteString(" ")
			blockBox = blockBox.Envelope(f.bbox)
		default:
			blockBox = blockBox.Envelope(f.bbox)
		}
		sb.WriteString(f.text)
		prev = f
	}
	flush()
	return blocks
}

// columnGap is the horizontal gap treated as a column separator.
func columnGap(fontSize float64) float64 {
	return 2.0 * fontSize
}

// wordGap is the gap that warrants an inserted space between fragments.
func wordGap(fontSize float64) float64 {
	return 0.3 * fontSize
}

// rulingThickness is the max extent (pt) on the thin axis for a drawn
// rectangle to count as a line rather than a filled region.
const rulingThickness = 2.5

// minRulingSpan filters out decorative tick marks.
const minRulingSpan = 15.0

// rulingsFromRects recovers straight rulings from the page's rectangle
// primitives. Thin rectangles become lines directly; boxy rectangles
// (drawn cell borders) contribute their four edges.
func rulingsFromRects(rects []pdflib.Rect, pageHeight float64) []ruling {
	var out []ruling
	for _, r := range rects {
		x0, x1 := r.Min.X, r.Max.X
		y0, y1 := pageHeight-r.Max.Y, pageHeight-r.Min.Y
		if x1 < x0 || y1 < y0 {
			continue
		}
		w, h := x1-x0, y1-y0
		switch {
		case h <= rulingThickness && w >= minRulingSpan:
			out = append(out, ruling{horizontal: true, pos: (y0 + y1) / 2, start: x0, end: x1})
		case w <= rulingThickness && h >= minRulingSpan:
			out = append(out, ruling{horizontal: false, pos: (x0 + x1) / 2, start: y0, end: y1})
		case w >= minRulingSpan && h >= minRulingSpan:
			out = append(out,
				ruling{horizontal: true, pos: y0, start: x0, end: x1},
				ruling{horizontal: true, pos: y1, start: x0, end: x1},
				ruling{horizontal: false, pos: x0, start: y0, end: y1},
				ruling{horizontal: false, pos: x1, start: y0, end: y1},
			)
		}
	}
	return out
}
