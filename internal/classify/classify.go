// Package classify decides which text blocks open new sections and at
// what nesting level. Matching is tiered: an ordered list of pattern
// matchers is evaluated per block and the first match wins, making the
// precedence rule an explicit, testable artifact.
package classify

import (
	"github.com/hwachang/gonggo/internal/docmodel"
)

// Event is one element of the classified per-page stream: either a
// heading or a plain content block.
type Event struct {
	Heading *docmodel.HeadingEvent // nil for content
	Block   docmodel.TextBlock
}

// IsHeading reports whether the event opens a section.
func (e Event) IsHeading() bool { return e.Heading != nil }

// Config holds the classifier policy knobs.
type Config struct {
	// KoreanOrdinalLevel is the level assigned to a Korean ordinal
	// heading (가., 나., ...) seen without a preceding numeric heading
	// on the same page. The source convention is ambiguous here, so
	// this is policy, not a discovered rule.
	KoreanOrdinalLevel int
	// MaxHeadingRunes caps the length of a block eligible for the
	// indentation fallback.
	MaxHeadingRunes int
}

func DefaultConfig() Config {
	return Config{
		KoreanOrdinalLevel: 2,
		MaxHeadingRunes:    40,
	}
}

// Classifier tags text blocks as headings or content.
type Classifier struct {
	cfg      Config
	matchers []matcher
}

func New(cfg Config) *Classifier {
	if cfg.KoreanOrdinalLevel <= 0 {
		cfg.KoreanOrdinalLevel = 2
	}
	if cfg.MaxHeadingRunes <= 0 {
		cfg.MaxHeadingRunes = 40
	}
	c := &Classifier{cfg: cfg}
	// Fixed precedence: numeric chain, Korean ordinal, symbolic marker,
	// indentation fallback.
	c.matchers = []matcher{
		{docmodel.KindNumeric, matchNumeric},
		{docmodel.KindKoreanOrdinal, c.matchKoreanOrdinal},
		{docmodel.KindSymbolic, matchSymbolic},
		{docmodel.KindIndent, c.matchIndent},
	}
	return c
}

type matcher struct {
	kind  docmodel.HeadingKind
	match func(st *pageState, blk docmodel.TextBlock) (level int, title string, ok bool)
}

// pageState carries the per-page run context. Heading levels for the
// pattern matchers need no cross-page state, so pages classify
// independently; only the tree builder folds across pages.
type pageState struct {
	open             []int // open heading levels, strictly increasing
	lastNumericLevel int
	prevContent      *docmodel.TextBlock
	headings         []headingMark
}

type headingMark struct {
	level  int
	indent int
}

func (st *pageState) push(level int) {
	for len(st.open) > 0 && st.open[len(st.open)-1] >= level {
		st.open = st.open[:len(st.open)-1]
	}
	st.open = append(st.open, level)
}

func (st *pageState) innermost() int {
	if len(st.open) == 0 {
		return 0
	}
	return st.open[len(st.open)-1]
}

// ClassifyPage tags every block of one page, in reading order.
// Ambiguous numeral chains (which could be list items) are classified
// as headings: a false positive heading with empty content is cheaper
// than a true heading misfiled as content.
func (c *Classifier) ClassifyPage(blocks []docmodel.TextBlock) []Event {
	st := &pageState{}
	events := make([]Event, 0, len(blocks))

	for _, blk := range blocks {
		ev := Event{Block: blk}
		for _, m := range c.matchers {
			if level, title, ok := m.match(st, blk); ok {
				ev.Heading = &docmodel.HeadingEvent{
					Title: title,
					Level: level,
					BBox:  blk.BBox,
					Kind:  m.kind,
				}
				break
			}
		}

		if ev.Heading != nil {
			st.push(ev.Heading.Level)
			if ev.Heading.Kind == docmodel.KindNumeric {
				st.lastNumericLevel = ev.Heading.Level
			}
			st.headings = append(st.headings, headingMark{level: ev.Heading.Level, indent: blk.Indent})
		} else {
			b := blk
			st.prevContent = &b
		}
		events = append(events, ev)
	}
	return events
}
