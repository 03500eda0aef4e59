package chunker

import (
	"strings"
	"unicode"

	"docforge/internal/docmodel"
)

func isTableHeader(h string) bool { return strings.HasPrefix(h, "Table: ") }

func endsInSentencePunct(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	r := []rune(trimmed)
	return sentenceEndSet[r[len(r)-1]]
}

func firstLine(text string) string {
	lines := strings.SplitN(strings.TrimLeft(text, " \t\n"), "\n", 2)
	return lines[0]
}

func startsWithHash(text string) bool {
	return strings.HasPrefix(strings.TrimLeft(text, " \t\n"), "#")
}

func startsWithLowercase(text string) bool {
	t := strings.TrimLeft(text, " \t\n")
	if t == "" {
		return false
	}
	r := []rune(t)[0]
	return unicode.IsLower(r)
}

// samePageOrphanMerge implements spec §4.1's same-page orphan merge: walk
// chunks left-to-right, folding any non-atomic orphan into its predecessor.
func (c *Chunker) samePageOrphanMerge(chunks []docmodel.TextChunk) []docmodel.TextChunk {
	threshold := c.cfg.orphanThreshold()
	out := make([]docmodel.TextChunk, 0, len(chunks))
	for _, cur := range chunks {
		if len(out) == 0 {
			out = append(out, cur)
			continue
		}
		prev := &out[len(out)-1]
		isOrphan := cur.TokenCount < threshold && !containsFigure(cur.Text)
		if !isOrphan {
			out = append(out, cur)
			continue
		}
		combined := cur.TokenCount + prev.TokenCount
		prevOverCap := prev.TokenCount > c.cfg.MaxSectionTokens
		orphanIsTiny := float64(cur.TokenCount) < 0.3*float64(prev.TokenCount)
		if combined <= c.cfg.MaxSectionTokens || (prevOverCap && orphanIsTiny) {
			prev.Text = joinWithSpace(prev.Text, cur.Text)
			prev.TokenCount = c.counter.Count(prev.Text)
			continue
		}
		out = append(out, cur)
	}
	return out
}

// crossPageMerge implements spec §4.1's cross-page look-behind merge at the
// seam between the last chunk already accumulated and the first chunk of
// the new page, then applies cross-page overlap to whatever boundary
// remains.
func (c *Chunker) crossPageMerge(all []docmodel.TextChunk, pageChunks []docmodel.TextChunk) []docmodel.TextChunk {
	if len(pageChunks) == 0 {
		return all
	}
	prev := &all[len(all)-1]
	first := pageChunks[0]

	if prev.PageHeader != "" && first.PageHeader != "" &&
		!isTableHeader(prev.PageHeader) && !isTableHeader(first.PageHeader) &&
		!strings.EqualFold(prev.PageHeader, first.PageHeader) {
		return c.appendWithCrossPageOverlap(all, pageChunks)
	}
	if containsFigure(prev.Text) && containsFigure(first.Text) {
		return c.appendWithCrossPageOverlap(all, pageChunks)
	}

	combinedOrphan := prev.TokenCount + first.TokenCount
	if first.TokenCount < crossPageSafetyNetTokenCeiling && !containsFigure(prev.Text) && !containsFigure(first.Text) &&
		float64(combinedOrphan) <= crossPageSafetyNetCombinedRatio*float64(c.cfg.MaxTokens) {
		prev.Text = joinWithSpace(prev.Text, first.Text)
		prev.TokenCount = c.counter.Count(prev.Text)
		return c.appendWithCrossPageOverlap(all, pageChunks[1:])
	}

	if c.cfg.CrossPageOverlap {
		if startsWithHash(first.Text) || isHeadingLikeFirstLine(first.Text) {
			return c.appendWithCrossPageOverlap(all, pageChunks)
		}
	} else {
		if !(!endsInSentencePunct(prev.Text) && !startsWithHash(first.Text) && startsWithLowercase(first.Text)) {
			return c.appendWithCrossPageOverlap(all, pageChunks)
		}
	}

	combinedFull := prev.TokenCount + first.TokenCount
	combinedChars := len(prev.Text) + len(first.Text)
	if combinedFull <= c.cfg.MaxTokens && float64(combinedChars) <= fullMergeCharRatio*float64(c.cfg.MaxChars) {
		prev.Text = joinWithSpace(prev.Text, first.Text)
		prev.TokenCount = c.counter.Count(prev.Text)
		return c.appendWithCrossPageOverlap(all, pageChunks[1:])
	}

	return c.partialSentenceShift(all, pageChunks)
}

func isHeadingLikeFirstLine(text string) bool {
	line := strings.TrimSpace(firstLine(text))
	return strings.HasPrefix(line, "#")
}

// partialSentenceShift implements spec §4.1's fallback when a full merge
// doesn't fit: move the trailing sentence fragment of prev to the front of
// first, if it fits; otherwise split the fragment and insert it standalone.
func (c *Chunker) partialSentenceShift(all []docmodel.TextChunk, pageChunks []docmodel.TextChunk) []docmodel.TextChunk {
	prev := &all[len(all)-1]
	first := pageChunks[0]

	idx := lastSentenceEnd(prev.Text)
	if idx < 0 {
		return c.appendWithCrossPageOverlap(all, pageChunks)
	}
	retained := strings.TrimSpace(prev.Text[:idx])
	fragment := strings.TrimSpace(prev.Text[idx:])
	if fragment == "" {
		return c.appendWithCrossPageOverlap(all, pageChunks)
	}

	combined := joinWithSpace(fragment, first.Text)
	combinedChars := len(fragment) + len(first.Text)
	if c.counter.Count(combined) <= c.cfg.MaxTokens && float64(combinedChars) <= fullMergeCharRatio*float64(c.cfg.MaxChars) {
		first.Text = combined
		first.TokenCount = c.counter.Count(combined)
		if retained == "" {
			all = all[:len(all)-1]
		} else {
			prev.Text = retained
			prev.TokenCount = c.counter.Count(retained)
		}
		pageChunks = append([]docmodel.TextChunk{first}, pageChunks[1:]...)
		return c.appendWithCrossPageOverlap(all, pageChunks)
	}

	if retained == "" {
		all = all[:len(all)-1]
	} else {
		prev.Text = retained
		prev.TokenCount = c.counter.Count(retained)
	}
	var inserted []docmodel.TextChunk
	for _, piece := range recursiveMidSplit(fragment, c.cfg, c.counter, c.warn) {
		inserted = append(inserted, docmodel.TextChunk{PageNum: first.PageNum, Text: piece, TokenCount: c.counter.Count(piece), PageHeader: prev.PageHeader})
	}
	all = append(all, inserted...)
	return c.appendWithCrossPageOverlap(all, pageChunks)
}

func lastSentenceEnd(text string) int {
	locs := sentenceBoundary.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return -1
	}
	return locs[len(locs)-1][1]
}

// appendWithCrossPageOverlap applies cross-page overlap to the boundary
// between the current tail of all and the first of the remaining page
// chunks (unconditionally, per spec §4.1, whenever overlapPercent > 0),
// then appends the remainder.
func (c *Chunker) appendWithCrossPageOverlap(all []docmodel.TextChunk, pageChunks []docmodel.TextChunk) []docmodel.TextChunk {
	if len(all) > 0 && len(pageChunks) > 0 {
		donor := crossPageOverlapDonor(pageChunks[0])
		c.applyOverlap(&all[len(all)-1], donor)
	}
	return append(all, pageChunks...)
}

// finalOrphanPass implements spec §4.1's document-wide final orphan pass.
func (c *Chunker) finalOrphanPass(chunks []docmodel.TextChunk) []docmodel.TextChunk {
	threshold := c.cfg.orphanThreshold()
	out := make([]docmodel.TextChunk, 0, len(chunks))
	for _, cur := range chunks {
		if len(out) == 0 {
			out = append(out, cur)
			continue
		}
		prev := &out[len(out)-1]
		if cur.TokenCount >= threshold {
			out = append(out, cur)
			continue
		}
		if isHeadingLikeFirstLine(cur.Text) && strings.HasPrefix(strings.TrimSpace(firstLine(cur.Text)), "##") {
			out = append(out, cur)
			continue
		}
		if isPurelyAtomic(*prev) {
			out = append(out, cur)
			continue
		}
		if prev.PageHeader != "" && cur.PageHeader != "" && cur.TokenCount >= finalOrphanHeaderMinTokens &&
			!strings.EqualFold(prev.PageHeader, cur.PageHeader) {
			out = append(out, cur)
			continue
		}

		combined := prev.TokenCount + cur.TokenCount
		ceil := c.cfg.MaxSectionTokens
		switch {
		case float64(cur.TokenCount) < finalOrphanTinyRatio*float64(c.cfg.MaxSectionTokens):
			ceil = int(finalOrphanTinyOvershoot * float64(c.cfg.MaxSectionTokens))
		case float64(cur.TokenCount) < finalOrphanSmallRatio*float64(c.cfg.MaxSectionTokens):
			ceil = int(finalOrphanSmallOvershoot * float64(c.cfg.MaxSectionTokens))
		}
		if combined <= ceil {
			prev.Text = joinWithSpace(prev.Text, cur.Text)
			prev.TokenCount = c.counter.Count(prev.Text)
			continue
		}
		out = append(out, cur)
	}
	return out
}

func isPurelyAtomic(c docmodel.TextChunk) bool {
	if !containsFigure(c.Text) {
		return false
	}
	textOnly := figureSpanRe.ReplaceAllString(c.Text, "")
	return len(strings.Fields(textOnly)) < purelyAtomicTextTokenCeil
}
