// Package tablerender serializes an extracted table into plain, markdown, or
// HTML text (C5). No third-party library in the corpus does grid/table
// rendering to text — every example repo that touches tabular output builds
// the string by hand — so this stays on the standard library.
package tablerender

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"docforge/internal/docmodel"
)

// Mode selects the output serialization.
type Mode string

const (
	Plain    Mode = "plain"
	Markdown Mode = "markdown"
	HTML     Mode = "html"
)

const minColWidth = 3

// Render serializes a table per the configured mode and prepends its caption,
// if any, separated by a blank line.
func Render(t docmodel.ExtractedTable, mode Mode) string {
	var body string
	switch mode {
	case Markdown:
		body = renderMarkdown(t)
	case HTML:
		body = renderHTML(t)
	default:
		body = renderPlain(t)
	}
	if strings.TrimSpace(t.Caption) == "" {
		return body
	}
	return t.Caption + "\n\n" + body
}

// grid lays cells onto a rowCount x colCount matrix, placing each cell's
// content at its top-left corner and marking spanned cells occupied.
func grid(t docmodel.ExtractedTable) [][]string {
	rows := t.RowCount
	cols := t.ColCount
	if rows <= 0 || cols <= 0 {
		for _, c := range t.Cells {
			if c.Row+1 > rows {
				rows = c.Row + 1
			}
			if c.Col+1 > cols {
				cols = c.Col + 1
			}
		}
	}
	g := make([][]string, rows)
	occupied := make([][]bool, rows)
	for r := range g {
		g[r] = make([]string, cols)
		occupied[r] = make([]bool, cols)
	}
	for _, c := range t.Cells {
		rs, cs := c.RowSpan, c.ColSpan
		if rs < 1 {
			rs = 1
		}
		if cs < 1 {
			cs = 1
		}
		if c.Row < 0 || c.Row >= rows || c.Col < 0 || c.Col >= cols {
			continue
		}
		for dr := 0; dr < rs && c.Row+dr < rows; dr++ {
			for dc := 0; dc < cs && c.Col+dc < cols; dc++ {
				if dr == 0 && dc == 0 {
					g[c.Row][c.Col] = c.Content
				}
				occupied[c.Row+dr][c.Col+dc] = true
			}
		}
	}
	return g
}

func renderPlain(t docmodel.ExtractedTable) string {
	g := grid(t)
	if len(g) == 0 {
		return ""
	}
	cols := len(g[0])
	widths := make([]int, cols)
	for c := 0; c < cols; c++ {
		widths[c] = minColWidth
	}
	for _, row := range g {
		for c, cell := range row {
			if n := len(cell); n > widths[c] {
				widths[c] = n
			}
		}
	}

	sep := func() string {
		var b strings.Builder
		for _, w := range widths {
			b.WriteString("+" + strings.Repeat("-", w+2))
		}
		b.WriteString("+")
		return b.String()
	}

	var b strings.Builder
	b.WriteString(sep())
	b.WriteString("\n")
	for r, row := range g {
		b.WriteString("|")
		for c, cell := range row {
			b.WriteString(" " + padRight(cell, widths[c]) + " |")
		}
		b.WriteString("\n")
		if r == 0 || r == len(g)-1 {
			b.WriteString(sep())
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func renderMarkdown(t docmodel.ExtractedTable) string {
	g := grid(t)
	if len(g) == 0 {
		return ""
	}
	var b strings.Builder
	writeRow := func(row []string) {
		b.WriteString("|")
		for _, cell := range row {
			b.WriteString(" " + strings.ReplaceAll(cell, "|", "\\|") + " |")
		}
		b.WriteString("\n")
	}
	writeRow(g[0])
	b.WriteString("|")
	for range g[0] {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range g[1:] {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHTML(t docmodel.ExtractedTable) string {
	var b strings.Builder
	b.WriteString("<table>")
	byRow := map[int][]docmodel.TableCell{}
	for _, c := range t.Cells {
		byRow[c.Row] = append(byRow[c.Row], c)
	}
	for r := 0; r < t.RowCount; r++ {
		row := byRow[r]
		sort.Slice(row, func(i, j int) bool { return row[i].Col < row[j].Col })
		b.WriteString("<tr>")
		for _, c := range row {
			tag := "td"
			if c.Kind == docmodel.CellColumnHeader || c.Kind == docmodel.CellRowHeader {
				tag = "th"
			}
			attrs := ""
			if c.RowSpan > 1 {
				attrs += fmt.Sprintf(` rowspan="%d"`, c.RowSpan)
			}
			if c.ColSpan > 1 {
				attrs += fmt.Sprintf(` colspan="%d"`, c.ColSpan)
			}
			b.WriteString(fmt.Sprintf("<%s%s>%s</%s>", tag, attrs, html.EscapeString(c.Content), tag))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}
