package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hwachang/gonggo/internal/docmodel"
)

// numericChainRe matches dot-terminated numeral chains such as "1." and
// "3-1." (segments separated by dashes or dots).
var numericChainRe = regexp.MustCompile(`^(\d+(?:[-.]\d+)*)\.\s+\S`)

// koreanOrdinals are the syllables used as ordinal markers in
// government announcements (가., 나., 다., ...).
const koreanOrdinals = "가나다라마바사아자차카타파하"

// symbolicMarkers are glyphs used only for structural headers in this
// document convention, never as generic bullets.
var symbolicMarkers = []rune{'■', '▶', '●', '◆', '□'}

// terminalProsePunct ends sentences, not titles.
var terminalProsePunct = []rune{'.', ',', ';', '?', '!', '。', '、'}

// matchNumeric assigns level = number of numeral segments in the chain:
// "1." opens level 1, "3-1." level 2.
func matchNumeric(_ *pageState, blk docmodel.TextBlock) (int, string, bool) {
	text := strings.TrimSpace(blk.Text)
	m := numericChainRe.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	segments := 1 + strings.Count(m[1], "-") + strings.Count(m[1], ".")
	return segments, text, true
}

// matchKoreanOrdinal handles 가./나./다. markers: one level below the
// last numeric heading of the page run, or the configured default when
// no numeric context exists.
func (c *Classifier) matchKoreanOrdinal(st *pageState, blk docmodel.TextBlock) (int, string, bool) {
	text := strings.TrimSpace(blk.Text)
	first, size := utf8.DecodeRuneInString(text)
	if first == utf8.RuneError || !strings.ContainsRune(koreanOrdinals, first) {
		return 0, "", false
	}
	rest := text[size:]
	if !strings.HasPrefix(rest, ". ") && !strings.HasPrefix(rest, ". ") {
		return 0, "", false
	}
	if strings.TrimSpace(rest[1:]) == "" {
		return 0, "", false
	}
	level := c.cfg.KoreanOrdinalLevel
	if st.lastNumericLevel > 0 {
		level = st.lastNumericLevel + 1
	}
	return level, text, true
}

// matchSymbolic handles the fixed marker set: level 1 when no heading
// chain is open, otherwise a sibling of the innermost open section.
func matchSymbolic(st *pageState, blk docmodel.TextBlock) (int, string, bool) {
	text := strings.TrimSpace(blk.Text)
	first, size := utf8.DecodeRuneInString(text)
	found := false
	for _, marker := range symbolicMarkers {
		if first == marker {
			found = true
			break
		}
	}
	if !found {
		return 0, "", false
	}
	title := strings.TrimSpace(text[size:])
	if title == "" {
		return 0, "", false
	}
	level := st.innermost()
	if level == 0 {
		level = 1
	}
	return level, title, true
}

// matchIndent is the fallback of last resort: a short block that sits
// shallower than the preceding content and does not end like prose is
// treated as a heading at the level of the nearest enclosing heading.
func (c *Classifier) matchIndent(st *pageState, blk docmodel.TextBlock) (int, string, bool) {
	if st.prevContent == nil || blk.Indent >= st.prevContent.Indent {
		return 0, "", false
	}
	text := strings.TrimSpace(blk.Text)
	if text == "" || utf8.RuneCountInString(text) > c.cfg.MaxHeadingRunes {
		return 0, "", false
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	for _, p := range terminalProsePunct {
		if last == p {
			return 0, "", false
		}
	}
	// Nearest preceding heading with indentation <= this block's.
	for i := len(st.headings) - 1; i >= 0; i-- {
		if st.headings[i].indent <= blk.Indent {
			return st.headings[i].level, text, true
		}
	}
	return 1, text, true
}
