// Package export renders reconstructed documents into output formats.
package export

import (
	"strings"

	"github.com/hwachang/gonggo/internal/docmodel"
)

// Markdown renders the section tree as a markdown document. Heading
// depth follows section levels, content blocks become paragraphs, and
// tables render as pipe tables in reading order within each section.
func Markdown(doc *docmodel.Document) string {
	var sb strings.Builder
	for _, sec := range doc.Sections {
		renderSection(&sb, sec)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func renderSection(sb *strings.Builder, sec *docmodel.Section) {
	if !sec.Preamble {
		level := sec.Level
		if level > 6 {
			level = 6
		}
		sb.WriteString(strings.Repeat("#", level))
		sb.WriteByte(' ')
		sb.WriteString(sec.Title)
		sb.WriteString("\n\n")
	}
	for _, line := range sec.Content {
		sb.WriteString(line)
		sb.WriteString("\n\n")
	}
	for _, tbl := range sec.Tables {
		renderTable(sb, tbl)
	}
	for _, child := range sec.Children {
		renderSection(sb, child)
	}
}

func renderTable(sb *strings.Builder, tbl *docmodel.Table) {
	if len(tbl.Grid) == 0 {
		return
	}
	widths := columnWidths(tbl.Grid)

	writeRow(sb, tbl.Grid[0], widths)
	sb.WriteByte('|')
	for _, w := range widths {
		sb.WriteByte(' ')
		sb.WriteString(strings.Repeat("-", w))
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')
	for _, row := range tbl.Grid[1:] {
		writeRow(sb, row, widths)
	}
	sb.WriteByte('\n')
}

func writeRow(sb *strings.Builder, row []string, widths []int) {
	sb.WriteByte('|')
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = escapeCell(row[i])
		}
		sb.WriteByte(' ')
		sb.WriteString(cell)
		if pad := w - len([]rune(cell)); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')
}

func columnWidths(grid [][]string) []int {
	cols := 0
	for _, row := range grid {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	for _, row := range grid {
		for i, cell := range row {
			if n := len([]rune(escapeCell(cell))); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i, w := range widths {
		if w < 3 {
			widths[i] = 3
		}
	}
	return widths
}

// escapeCell keeps pipe characters and newlines inside cell text from
// breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}
