package docmodel

import (
	"math"
	"testing"
)

func box(x0, y0, x1, y1 float64, page int) BoundingBox {
	return BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1, Page: page}
}

func TestBoundingBox_Valid(t *testing.T) {
	if !box(0, 0, 10, 10, 1).Valid() {
		t.Error("expected positive-extent box to be valid")
	}
	if !box(5, 5, 5, 5, 1).Valid() {
		t.Error("expected zero-extent box to be valid")
	}
	if box(10, 0, 0, 10, 1).Valid() {
		t.Error("expected inverted x box to be invalid")
	}
	if box(0, 10, 10, 0, 1).Valid() {
		t.Error("expected inverted y box to be invalid")
	}
}

func TestBoundingBox_ContainsPoint(t *testing.T) {
	b := box(10, 10, 20, 20, 1)
	if !b.ContainsPoint(15, 15) {
		t.Error("expected interior point to be contained")
	}
	if !b.ContainsPoint(10, 20) {
		t.Error("expected edge point to be contained")
	}
	if b.ContainsPoint(9, 15) || b.ContainsPoint(15, 21) {
		t.Error("expected outside points to be excluded")
	}
}

func TestBoundingBox_OverlapRatio(t *testing.T) {
	a := box(0, 0, 10, 10, 1)

	// Identical boxes overlap fully.
	if got := a.OverlapRatio(a); got != 1 {
		t.Errorf("expected ratio 1 for identical boxes, got %v", got)
	}

	// Half overlap: intersection 50, union 150.
	b := box(5, 0, 15, 10, 1)
	want := 50.0 / 150.0
	if got := a.OverlapRatio(b); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected ratio %v, got %v", want, got)
	}

	// Disjoint boxes.
	if got := a.OverlapRatio(box(20, 20, 30, 30, 1)); got != 0 {
		t.Errorf("expected ratio 0 for disjoint boxes, got %v", got)
	}

	// Same geometry, different page.
	if got := a.OverlapRatio(box(0, 0, 10, 10, 2)); got != 0 {
		t.Errorf("expected ratio 0 across pages, got %v", got)
	}
}

func TestBoundingBox_OverlapRatio_Symmetric(t *testing.T) {
	a := box(0, 0, 10, 10, 1)
	b := box(3, 3, 20, 8, 1)
	if a.OverlapRatio(b) != b.OverlapRatio(a) {
		t.Error("expected overlap ratio to be symmetric")
	}
}

func TestBoundingBox_Envelope(t *testing.T) {
	a := box(5, 5, 10, 10, 2)
	b := box(0, 8, 7, 20, 2)
	got := a.Envelope(b)
	want := box(0, 5, 10, 20, 2)
	if got != want {
		t.Errorf("expected envelope %+v, got %+v", want, got)
	}
}

func TestDocument_AllTables(t *testing.T) {
	inner := &Table{Caption: "inner"}
	outer := &Table{Caption: "outer"}
	doc := &Document{
		Sections: []*Section{
			{
				Level:  1,
				Tables: []*Table{outer},
				Children: []*Section{
					{Level: 2, Tables: []*Table{inner}},
				},
			},
		},
	}
	got := doc.AllTables()
	if len(got) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(got))
	}
	if got[0] != outer || got[1] != inner {
		t.Error("expected tables in depth-first order")
	}
}
