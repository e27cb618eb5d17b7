package reconstruct

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hwachang/gonggo/internal/docmodel"
	"github.com/hwachang/gonggo/internal/normalize"
)

func bbox(x0, y0, x1, y1 float64, page int) docmodel.BoundingBox {
	return docmodel.BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1, Page: page}
}

func rawBlock(text string, y float64, page int) normalize.RawBlock {
	return normalize.RawBlock{Text: text, BBox: bbox(50, y, 400, y+12, page)}
}

func latticeCandidate(page int, y0, y1 float64, conf float64) docmodel.TableCandidate {
	return docmodel.TableCandidate{
		Grid:       [][]string{{"구분", "금액"}, {"보증금", "1,000"}},
		BBox:       bbox(50, y0, 500, y1, page),
		Page:       page,
		Confidence: conf,
		Strategy:   docmodel.StrategyLattice,
	}
}

func TestReconstruct_EmptyInputIsFatal(t *testing.T) {
	_, _, err := Reconstruct("empty.pdf", nil, DefaultOptions())
	if !errors.Is(err, docmodel.ErrEmptyPageSet) {
		t.Fatalf("expected ErrEmptyPageSet, got %v", err)
	}
}

func TestReconstruct_SingleHeadingDocument(t *testing.T) {
	pages := []normalize.PageInput{{
		Number: 1,
		Width:  595, Height: 842,
		Blocks: []normalize.RawBlock{
			rawBlock("1. 공급개요", 100, 1),
			rawBlock("행복주택 잔여세대 모집 공고입니다.", 130, 1),
		},
	}}
	doc, diags, err := Reconstruct("ann.pdf", pages, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	if doc.Source != "ann.pdf" {
		t.Errorf("expected source propagated, got %q", doc.Source)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	sec := doc.Sections[0]
	if sec.Title != "1. 공급개요" || len(sec.Content) != 1 {
		t.Errorf("unexpected section %+v", sec)
	}
}

func TestReconstruct_TableAttachesToInnermostOpenSection(t *testing.T) {
	pages := []normalize.PageInput{{
		Number: 1,
		Width:  595, Height: 842,
		Blocks: []normalize.RawBlock{
			rawBlock("1. 공급개요", 100, 1),
			rawBlock("1-1. 임대조건", 200, 1),
		},
		Lattice: []docmodel.TableCandidate{latticeCandidate(1, 250, 400, 0.9)},
	},
	}
	doc, _, err := Reconstruct("ann.pdf", pages, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner := doc.FindSection("임대조건")
	if inner == nil {
		t.Fatal("expected the nested section to exist")
	}
	if len(inner.Tables) != 1 {
		t.Fatalf("expected the table on the innermost open section, got %d tables", len(inner.Tables))
	}
	if outer := doc.Sections[0]; len(outer.Tables) != 0 {
		t.Errorf("expected no table on the outer section, got %d", len(outer.Tables))
	}
}

func TestReconstruct_TableBeforeAnyHeadingLandsInPreamble(t *testing.T) {
	pages := []normalize.PageInput{{
		Number: 1,
		Width:  595, Height: 842,
		Blocks: []normalize.RawBlock{
			rawBlock("1. 공급개요", 500, 1),
		},
		Lattice: []docmodel.TableCandidate{latticeCandidate(1, 100, 300, 0.9)},
	}}
	doc, _, err := Reconstruct("ann.pdf", pages, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected preamble + heading sections, got %d", len(doc.Sections))
	}
	pre := doc.Sections[0]
	if !pre.Preamble {
		t.Fatal("expected the first section to be the synthetic preamble")
	}
	if len(pre.Tables) != 1 {
		t.Errorf("expected the early table in the preamble, got %d tables", len(pre.Tables))
	}
}

func TestReconstruct_TableCellTextNotRepeatedAsContent(t *testing.T) {
	pages := []normalize.PageInput{{
		Number: 1,
		Width:  595, Height: 842,
		Blocks: []normalize.RawBlock{
			rawBlock("1. 공급개요", 100, 1),
			rawBlock("임대조건은 아래 표와 같습니다.", 130, 1),
			// The layout scanner also reports the table's cell text as
			// plain blocks inside the detected region.
			rawBlock("보증금", 280, 1),
			rawBlock("1,000", 300, 1),
		},
		Lattice: []docmodel.TableCandidate{latticeCandidate(1, 250, 400, 0.9)},
	}}
	doc, _, err := Reconstruct("ann.pdf", pages, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sec := doc.Sections[0]
	if len(sec.Tables) != 1 {
		t.Fatalf("expected the reconciled table on the section, got %d", len(sec.Tables))
	}
	if got := sec.Tables[0].Grid[1]; !reflect.DeepEqual(got, []string{"보증금", "1,000"}) {
		t.Errorf("expected the cell text in the table grid, got %v", got)
	}
	if len(sec.Content) != 1 || sec.Content[0] != "임대조건은 아래 표와 같습니다." {
		t.Errorf("expected only the prose block as content, got %v", sec.Content)
	}
}

func TestReconstruct_MetadataCounts(t *testing.T) {
	pages := []normalize.PageInput{{
		Number: 1,
		Width:  595, Height: 842,
		Blocks: []normalize.RawBlock{
			rawBlock("1. 공급개요", 100, 1),
			rawBlock("1-1. 임대조건", 200, 1),
			rawBlock("2. 신청일정", 400, 1),
		},
		Lattice: []docmodel.TableCandidate{latticeCandidate(1, 450, 600, 0.9)},
	}}
	doc, _, err := Reconstruct("ann.pdf", pages, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Metadata["total_sections"]; got != 3 {
		t.Errorf("expected 3 sections, got %d", got)
	}
	if got := doc.Metadata["total_tables"]; got != 1 {
		t.Errorf("expected 1 table, got %d", got)
	}
	if got := doc.Metadata["max_depth"]; got != 2 {
		t.Errorf("expected max depth 2, got %d", got)
	}
}

func TestReconstruct_MalformedPrimitiveIsNonFatal(t *testing.T) {
	pages := []normalize.PageInput{{
		Number: 1,
		Width:  595, Height: 842,
		Blocks: []normalize.RawBlock{
			rawBlock("1. 공급개요", 100, 1),
			{Text: "broken", BBox: bbox(400, 100, 50, 112, 1)},
		},
	}}
	doc, diags, err := Reconstruct("ann.pdf", pages, DefaultOptions())
	if err != nil {
		t.Fatalf("expected malformed primitives to be non-fatal, got %v", err)
	}
	if doc == nil {
		t.Fatal("expected a document despite the diagnostic")
	}
	if len(diags) != 1 || diags[0].Kind != docmodel.DiagMalformedPrimitive {
		t.Fatalf("expected one malformed-primitive diagnostic, got %v", diags)
	}
}

func TestReconstruct_PagesSortedByNumber(t *testing.T) {
	pages := []normalize.PageInput{
		{
			Number: 2, Width: 595, Height: 842,
			Blocks: []normalize.RawBlock{rawBlock("2. 신청일정", 100, 2)},
		},
		{
			Number: 1, Width: 595, Height: 842,
			Blocks: []normalize.RawBlock{rawBlock("1. 공급개요", 100, 1)},
		},
	}
	doc, _, err := Reconstruct("ann.pdf", pages, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Title != "1. 공급개요" {
		t.Errorf("expected page order restored before the fold, got %q first", doc.Sections[0].Title)
	}
}

func TestReconstruct_Deterministic(t *testing.T) {
	pages := []normalize.PageInput{
		{
			Number: 1, Width: 595, Height: 842,
			Blocks: []normalize.RawBlock{
				rawBlock("1. 공급개요", 100, 1),
				rawBlock("본문 내용", 130, 1),
				rawBlock("1-1. 임대조건", 200, 1),
			},
			Lattice: []docmodel.TableCandidate{latticeCandidate(1, 700, 800, 0.9)},
		},
		{
			Number: 2, Width: 595, Height: 842,
			Blocks:  []normalize.RawBlock{rawBlock("2. 신청일정", 300, 2)},
			Stream:  []docmodel.TableCandidate{latticeCandidate(2, 40, 200, 0.9)},
			Lattice: nil,
		},
	}
	first, firstDiags, err := Reconstruct("ann.pdf", pages, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, secondDiags, err := Reconstruct("ann.pdf", pages, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical documents across runs on identical input")
	}
	if !reflect.DeepEqual(firstDiags, secondDiags) {
		t.Error("expected identical diagnostics across runs")
	}
}
