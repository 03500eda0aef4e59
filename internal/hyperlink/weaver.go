// Package hyperlink weaves detected hyperlink rectangles into inline
// markdown-style links within page text (C13).
package hyperlink

import (
	"regexp"
	"sort"
	"strings"

	"docforge/internal/docmodel"
)

var (
	existingLinkRe = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)
	urlInFooterRe  = regexp.MustCompile(`https?://[^\s"'<>]+`)
	trailingPunct  = regexp.MustCompile(`[.,;:!?)\]]+$`)
	pageFooterRe   = regexp.MustCompile(`<!--PageFooter="([^"]*)"-->`)
)

// span is a half-open byte range [start, end) already consumed by a link.
type span struct{ start, end int }

// Weave applies C13 to a page's text and hyperlinks, returning the rewritten
// text. Hyperlinks sharing a URL are merged into one combined link_text
// before substitution (multi-line link recovery).
func Weave(text string, links []docmodel.PageHyperlink) string {
	byURL := groupByURL(links)

	urls := make([]string, 0, len(byURL))
	for u := range byURL {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var occupied []span
	for _, url := range urls {
		linkText := byURL[url]
		text, occupied = substituteOne(text, linkText, url, occupied)
	}

	text = insertFooterReferences(text)
	return text
}

// groupByURL combines multiple link rectangles sharing a URL into one
// space-joined link_text, preserving first-seen order of components.
func groupByURL(links []docmodel.PageHyperlink) map[string]string {
	order := map[string][]string{}
	for _, l := range links {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		order[l.URL] = append(order[l.URL], l.LinkText)
	}
	out := make(map[string]string, len(order))
	for url, parts := range order {
		out[url] = strings.Join(parts, " ")
	}
	return out
}

// substituteOne replaces the first non-linked occurrence of linkText with
// [linkText](url), trying progressively looser match rules.
func substituteOne(text, linkText, url string, occupied []span) (string, []span) {
	candidates := []string{
		strings.Trim(linkText, `"'`), // exact cleaned text
		linkText,                     // exact original text
	}
	flexible := flexibleWhitespacePattern(candidates[0])
	trimmedPunct := trailingPunct.ReplaceAllString(candidates[0], "")

	tryPlain := func(needle string) (int, int, bool) {
		if needle == "" {
			return 0, 0, false
		}
		start := 0
		for {
			idx := strings.Index(text[start:], needle)
			if idx < 0 {
				return 0, 0, false
			}
			absStart := start + idx
			absEnd := absStart + len(needle)
			if !overlapsAny(absStart, absEnd, occupied) && !insideExistingLink(text, absStart, absEnd) {
				return absStart, absEnd, true
			}
			start = absStart + 1
			if start >= len(text) {
				return 0, 0, false
			}
		}
	}

	for _, c := range candidates {
		if s, e, ok := tryPlain(c); ok {
			return replaceRange(text, s, e, linkText, url, occupied)
		}
	}
	if flexible != nil {
		if loc := firstNonOverlapping(flexible, text, occupied); loc != nil {
			return replaceRange(text, loc[0], loc[1], linkText, url, occupied)
		}
	}
	if s, e, ok := tryPlain(trimmedPunct); ok && trimmedPunct != "" {
		return replaceRange(text, s, e, linkText, url, occupied)
	}
	return text, occupied
}

func flexibleWhitespacePattern(s string) *regexp.Regexp {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	pattern := strings.Join(parts, `\s+`)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}

func firstNonOverlapping(re *regexp.Regexp, text string, occupied []span) []int {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if !overlapsAny(loc[0], loc[1], occupied) && !insideExistingLink(text, loc[0], loc[1]) {
			return loc
		}
	}
	return nil
}

func overlapsAny(start, end int, occupied []span) bool {
	for _, s := range occupied {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

func insideExistingLink(text string, start, end int) bool {
	for _, loc := range existingLinkRe.FindAllStringIndex(text, -1) {
		if start >= loc[0] && end <= loc[1] {
			return true
		}
	}
	return false
}

func replaceRange(text string, start, end int, linkText, url string, occupied []span) (string, []span) {
	replacement := "[" + linkText + "](" + url + ")"
	newText := text[:start] + replacement + text[end:]
	delta := len(replacement) - (end - start)

	newOccupied := make([]span, 0, len(occupied)+1)
	for _, s := range occupied {
		if s.start >= end {
			newOccupied = append(newOccupied, span{s.start + delta, s.end + delta})
		} else {
			newOccupied = append(newOccupied, s)
		}
	}
	newOccupied = append(newOccupied, span{start, start + len(replacement)})
	return newText, newOccupied
}

// insertFooterReferences implements step 3: for every PageFooter marker
// containing a URL absent from the visible text, insert a reference line
// immediately before the marker.
func insertFooterReferences(text string) string {
	matches := pageFooterRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		markerStart, markerEnd := m[0], m[1]
		footerContent := text[m[2]:m[3]]
		url := urlInFooterRe.FindString(footerContent)
		b.WriteString(text[last:markerStart])
		if url != "" && !strings.Contains(text[:markerStart], url) {
			b.WriteString("\n\n**Reference:** " + url + "\n\n")
		}
		b.WriteString(text[markerStart:markerEnd])
		last = markerEnd
	}
	b.WriteString(text[last:])
	return b.String()
}
