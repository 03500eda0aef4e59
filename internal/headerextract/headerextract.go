// Package headerextract derives a page's section title from its markup (C14).
// The fallback chain mirrors the boundary-detection style of the teacher's
// documents.BoundaryDetector: ordered regexp passes over the page text, each
// one a last resort for the one before it.
package headerextract

import (
	"regexp"
	"strings"
)

var (
	pageHeaderRe = regexp.MustCompile(`(?i)<!--PageHeader="([^"]*)"-->`)
	pageFooterRe = regexp.MustCompile(`(?i)<!--PageFooter="[^"]*"-->`)
	pageNumberRe = regexp.MustCompile(`(?i)<!--PageNumber="[^"]*"-->`)
	chapterPfxRe = regexp.MustCompile(`^[\dA-Za-z]+-\d+\s+`)
	mdHeaderRe   = regexp.MustCompile(`(?m)^(#{1,3})\s+(.+)$`)
	tableCapRe   = regexp.MustCompile(`(?i)Table\s+\d+(?:-\d+)?\s*[:.]?\s*(.+)`)
	figureBlockRe = regexp.MustCompile(`(?is)<figure[^>]*>(.*?)</figure>`)
)

// Result is the outcome of extracting a page header.
type Result struct {
	Text       string // page text with header/footer/pagenumber markers stripped
	PageHeader string // "" when no header could be derived
}

// Extract implements C14's fallback chain against raw page text.
func Extract(pageText string) Result {
	header := fromPageHeaderMarkers(pageText)
	cleaned := stripMarkers(pageText)

	if header == "" {
		header = fromMarkdownHeading(cleaned)
	}
	if header == "" {
		header = fromTableCaption(cleaned)
	}
	return Result{Text: cleaned, PageHeader: header}
}

func stripMarkers(text string) string {
	text = pageHeaderRe.ReplaceAllString(text, "")
	text = pageFooterRe.ReplaceAllString(text, "")
	text = pageNumberRe.ReplaceAllString(text, "")
	return text
}

// fromPageHeaderMarkers implements fallback 1: parse every PageHeader marker,
// normalize each, dedup case-insensitively, and join survivors with " | ".
func fromPageHeaderMarkers(text string) string {
	matches := pageHeaderRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ""
	}
	seen := map[string]bool{}
	var parts []string
	for _, m := range matches {
		v := normalizeHeader(m[1])
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, v)
	}
	return strings.Join(parts, " | ")
}

func normalizeHeader(raw string) string {
	v := strings.TrimSpace(raw)
	v = chapterPfxRe.ReplaceAllString(v, "")
	v = strings.TrimSpace(v)
	// Collapse an "X X" duplication (e.g. "Overview Overview") into "X".
	if fields := strings.Fields(v); len(fields)%2 == 0 && len(fields) > 0 {
		half := len(fields) / 2
		if strings.EqualFold(strings.Join(fields[:half], " "), strings.Join(fields[half:], " ")) {
			v = strings.Join(fields[:half], " ")
		}
	}
	return v
}

// fromMarkdownHeading implements fallback 2: the first level-1..3 markdown
// heading whose text is at least 10 characters.
func fromMarkdownHeading(text string) string {
	for _, m := range mdHeaderRe.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[2])
		if len(candidate) >= 10 {
			return candidate
		}
	}
	return ""
}

// fromTableCaption implements fallback 3: the first "Table N[-M]: caption"
// found inside a <figure> block, prefixed with "Table: ".
func fromTableCaption(text string) string {
	for _, block := range figureBlockRe.FindAllStringSubmatch(text, -1) {
		m := tableCapRe.FindStringSubmatch(block[1])
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if len(candidate) >= 10 {
			return "Table: " + candidate
		}
	}
	return ""
}
