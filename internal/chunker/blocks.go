package chunker

import (
	"regexp"
	"strings"

	"docforge/internal/docmodel"
)

var figureSpanRe = regexp.MustCompile(`(?is)<figure[^>]*>.*?</figure>`)

// sentenceBoundary matches the punctuation spec §4.1 splits text blocks on.
var sentenceBoundary = regexp.MustCompile(`[.!?。！？‼⁇⁈⁉]+`)

type blockKind int

const (
	blockText blockKind = iota
	blockFigure
)

type block struct {
	kind blockKind
	text string
}

// preparePageText implements step 1: expand every figure and table
// placeholder into a complete <figure id="…">…</figure> wrapper. Figures get
// an id/title/description wrapper; table placeholders get their C5 rendering.
func preparePageText(page docmodel.ExtractedPage) string {
	text := page.Text
	for _, fig := range page.Figures {
		if fig.Placeholder == "" {
			continue
		}
		text = strings.Replace(text, fig.Placeholder, figureWrapper(fig), 1)
	}
	for _, tbl := range page.Tables {
		if tbl.Placeholder == "" {
			continue
		}
		text = strings.Replace(text, tbl.Placeholder, tableWrapper(tbl), 1)
	}
	return text
}

func figureWrapper(fig docmodel.ExtractedImage) string {
	var b strings.Builder
	b.WriteString(`<figure id="`)
	b.WriteString(fig.FigureID)
	b.WriteString(`"`)
	if fig.Title != "" {
		b.WriteString(` title="`)
		b.WriteString(fig.Title)
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(fig.Description)
	b.WriteString("</figure>")
	return b.String()
}

func tableWrapper(tbl docmodel.ExtractedTable) string {
	return `<figure id="` + tbl.TableID + `">` + tbl.RenderedText + `</figure>`
}

// splitBlocks implements step 3: scan <figure>…</figure> spans case
// insensitively and greedily within one figure, producing an ordered list of
// text/figure blocks.
func splitBlocks(text string) []block {
	locs := figureSpanRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []block{{kind: blockText, text: text}}
	}
	var blocks []block
	last := 0
	for _, loc := range locs {
		if pre := text[last:loc[0]]; strings.TrimSpace(pre) != "" {
			blocks = append(blocks, block{kind: blockText, text: pre})
		}
		blocks = append(blocks, block{kind: blockFigure, text: text[loc[0]:loc[1]]})
		last = loc[1]
	}
	if tail := text[last:]; strings.TrimSpace(tail) != "" {
		blocks = append(blocks, block{kind: blockText, text: tail})
	}
	return blocks
}

// sentenceSpans splits a text block into sentence-like spans, keeping the
// terminating punctuation attached to its sentence. Never called on figure
// blocks, so there is no risk of splitting inside a <figure> region.
func sentenceSpans(text string) []string {
	locs := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}
	var spans []string
	last := 0
	for _, loc := range locs {
		spans = append(spans, text[last:loc[1]])
		last = loc[1]
	}
	if tail := text[last:]; strings.TrimSpace(tail) != "" {
		spans = append(spans, tail)
	}
	return spans
}

func isFigureBlock(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(strings.ToLower(t), "<figure")
}

func containsFigure(text string) bool {
	return strings.Contains(strings.ToLower(text), "<figure")
}

var tableRefSentenceRe = regexp.MustCompile(`(?i)\(?Table\s+\d+(?:-\d+)?[^).]*\)?[.!?]?\s*$`)

// tailTableReference looks for a table-reference sentence at the tail of
// built text, within tableRefWindowChars characters of the end.
func tailTableReference(built string) (ref string, rest string, found bool) {
	trimmed := strings.TrimRight(built, " \t\n")
	window := trimmed
	if len(window) > tableRefWindowChars {
		window = window[len(window)-tableRefWindowChars:]
	}
	loc := tableRefSentenceRe.FindStringIndex(window)
	if loc == nil {
		return "", built, false
	}
	cut := len(trimmed) - len(window) + loc[0]
	return trimmed[cut:], trimmed[:cut], true
}
