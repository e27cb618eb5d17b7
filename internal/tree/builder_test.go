package tree

import (
	"errors"
	"testing"

	"github.com/hwachang/gonggo/internal/classify"
	"github.com/hwachang/gonggo/internal/docmodel"
)

func heading(title string, level int, page int, y float64) classify.Event {
	return classify.Event{
		Heading: &docmodel.HeadingEvent{
			Title: title,
			Level: level,
			BBox:  docmodel.BoundingBox{X0: 50, Y0: y, X1: 300, Y1: y + 12, Page: page},
		},
	}
}

func content(text string) classify.Event {
	return classify.Event{Block: docmodel.TextBlock{Text: text}}
}

func TestBuild_SiblingAfterChild(t *testing.T) {
	events := [][]classify.Event{{
		heading("1. 개요", 1, 1, 100),
		heading("1-1. 목적", 2, 1, 150),
		heading("2. 일정", 1, 1, 200),
	}}
	res, err := Build(events, []int{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(res.Sections))
	}
	first := res.Sections[0]
	if len(first.Children) != 1 || first.Children[0].Title != "1-1. 목적" {
		t.Fatalf("expected 1-1 nested under 1, got %+v", first.Children)
	}
	if res.Sections[1].Title != "2. 일정" || len(res.Sections[1].Children) != 0 {
		t.Errorf("expected 2 as a childless sibling of 1, got %+v", res.Sections[1])
	}
}

func TestBuild_LevelSkipNestsUnderNearestShallower(t *testing.T) {
	events := [][]classify.Event{{
		heading("1. 개요", 1, 1, 100),
		heading("가. 세부", 3, 1, 150), // level jump 1 -> 3
		heading("2. 일정", 1, 1, 200),
	}}
	res, err := Build(events, []int{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Sections) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(res.Sections))
	}
	if len(res.Sections[0].Children) != 1 || res.Sections[0].Children[0].Level != 3 {
		t.Errorf("expected the level-3 heading as a direct child of level 1, got %+v", res.Sections[0].Children)
	}
}

func TestBuild_StackCarriesAcrossPages(t *testing.T) {
	events := [][]classify.Event{
		{
			heading("1. 개요", 1, 1, 100),
			heading("1-1. 목적", 2, 1, 150),
		},
		{
			content("다음 페이지로 이어지는 본문"),
			heading("1-2. 범위", 2, 2, 80),
		},
	}
	res, err := Build(events, []int{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := res.Sections[0]
	if len(first.Children) != 2 {
		t.Fatalf("expected both level-2 headings under section 1, got %d children", len(first.Children))
	}
	sub := first.Children[0]
	if len(sub.Content) != 1 || sub.Content[0] != "다음 페이지로 이어지는 본문" {
		t.Errorf("expected page-2 content attached to the open 1-1 section, got %v", sub.Content)
	}
}

func TestBuild_PreambleCollectsLeadingContent(t *testing.T) {
	events := [][]classify.Event{{
		content("공고문 머리말"),
		content("문의처 안내"),
		heading("1. 개요", 1, 1, 100),
		content("본문"),
	}}
	res, err := Build(events, []int{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Preamble == nil {
		t.Fatal("expected a preamble section")
	}
	if !res.Preamble.Preamble {
		t.Error("expected the preamble flag to be set")
	}
	if res.Sections[0] != res.Preamble {
		t.Error("expected the preamble to be the first top-level section")
	}
	if len(res.Preamble.Content) != 2 {
		t.Errorf("expected 2 preamble content blocks, got %d", len(res.Preamble.Content))
	}
	if got := res.Sections[1].Content; len(got) != 1 || got[0] != "본문" {
		t.Errorf("expected post-heading content in section 1, got %v", got)
	}
}

func TestBuild_NoPreambleWhenDocumentOpensWithHeading(t *testing.T) {
	events := [][]classify.Event{{
		heading("1. 개요", 1, 1, 100),
		content("본문"),
	}}
	res, err := Build(events, []int{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Preamble != nil {
		t.Errorf("expected no preamble, got %+v", res.Preamble)
	}
}

func TestBuild_TimelineInDocumentOrder(t *testing.T) {
	events := [][]classify.Event{
		{heading("1. 개요", 1, 1, 100), heading("1-1. 목적", 2, 1, 200)},
		{heading("2. 일정", 1, 2, 90)},
	}
	res, err := Build(events, []int{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Timeline) != 3 {
		t.Fatalf("expected 3 timeline entries, got %d", len(res.Timeline))
	}
	titles := []string{"1. 개요", "1-1. 목적", "2. 일정"}
	for i, want := range titles {
		if res.Timeline[i].Section.Title != want {
			t.Errorf("timeline[%d]: expected %q, got %q", i, want, res.Timeline[i].Section.Title)
		}
	}
	if res.Timeline[2].Page != 2 || res.Timeline[2].Y != 90 {
		t.Errorf("expected timeline anchor (page 2, y 90), got (%d, %v)", res.Timeline[2].Page, res.Timeline[2].Y)
	}
}

func TestBuild_RejectsNonPositiveLevel(t *testing.T) {
	events := [][]classify.Event{{heading("broken", 0, 4, 100)}}
	_, err := Build(events, []int{4})
	var sErr *docmodel.StructuralError
	if !errors.As(err, &sErr) {
		t.Fatalf("expected a StructuralError, got %v", err)
	}
	if sErr.Page != 4 {
		t.Errorf("expected the violation reported on page 4, got %d", sErr.Page)
	}
}

func TestBuild_ChildLevelsStrictlyIncrease(t *testing.T) {
	events := [][]classify.Event{{
		heading("1. 개요", 1, 1, 100),
		heading("1-1. 목적", 2, 1, 150),
		heading("가. 상세", 3, 1, 200),
		heading("1-2. 범위", 2, 1, 250),
		heading("2. 일정", 1, 1, 300),
	}}
	res, err := Build(events, []int{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var check func(parent int, secs []*docmodel.Section)
	check = func(parent int, secs []*docmodel.Section) {
		for _, s := range secs {
			if s.Level <= parent {
				t.Errorf("section %q level %d not greater than parent level %d", s.Title, s.Level, parent)
			}
			check(s.Level, s.Children)
		}
	}
	check(0, res.Sections)
}
