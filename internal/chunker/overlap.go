package chunker

import (
	"strings"

	"docforge/internal/docmodel"
)

// findOverlapPrefix implements the binary-search-sized overlap extension
// shared by intra-page and cross-page overlap: locate a prefix of donor
// whose token count is close to target, then extend it to the nearest
// sentence or word boundary (without exceeding 1.5x target tokens).
func findOverlapPrefix(donor string, target int, counter Counter) string {
	if target <= 0 || strings.TrimSpace(donor) == "" {
		return ""
	}
	runes := []rune(donor)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi) / 2
		if counter.Count(string(runes[:mid])) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	cut := lo
	limit := int(float64(target) * overlapBoundarySearchRatio)
	for cut < len(runes) {
		if counter.Count(string(runes[:cut+1])) > limit {
			break
		}
		if sentenceEndSet[runes[cut]] || isWordBreak(runes[cut]) {
			cut++
			break
		}
		cut++
	}
	if cut > len(runes) {
		cut = len(runes)
	}
	return strings.TrimSpace(string(runes[:cut]))
}

// applyOverlap extends prev's text with a boundary-aligned prefix of donor,
// rejecting the extension if either side is an atomic figure block or the
// combined chunk would exceed the hard cap.
func (c *Chunker) applyOverlap(prev *docmodel.TextChunk, donor string) bool {
	if c.cfg.OverlapPercent <= 0 {
		return false
	}
	if containsFigure(prev.Text) || isFigureBlock(donor) {
		return false
	}
	prefix := findOverlapPrefix(donor, c.cfg.overlapTargetTokens(), c.counter)
	if prefix == "" {
		return false
	}
	combined := joinWithSpace(prev.Text, prefix)
	if c.counter.Count(combined) > c.cfg.MaxSectionTokens {
		c.warn("blocked overlap: combined chunk would exceed hard cap")
		return false
	}
	prev.Text = combined
	prev.TokenCount = c.counter.Count(combined)
	return true
}

// intraPageOverlap implements spec §4.1's intra-page overlap: for i=1..n-1,
// extend chunk i-1 with a prefix of chunk i's text (donor text is preserved,
// not removed — the overlap is a lookahead duplication).
func (c *Chunker) intraPageOverlap(chunks []docmodel.TextChunk) {
	for i := 1; i < len(chunks); i++ {
		c.applyOverlap(&chunks[i-1], chunks[i].Text)
	}
}

// crossPageOverlapDonor picks the overlap source for the cross-page case: if
// the next chunk starts with <figure, use the text preceding the figure (or
// following it, if none precedes).
func crossPageOverlapDonor(next docmodel.TextChunk) string {
	if !isFigureBlock(next.Text) {
		return next.Text
	}
	loc := figureSpanRe.FindStringIndex(next.Text)
	if loc == nil {
		return next.Text
	}
	if pre := strings.TrimSpace(next.Text[:loc[0]]); pre != "" {
		return pre
	}
	return strings.TrimSpace(next.Text[loc[1]:])
}
