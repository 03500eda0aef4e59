package chunker

import (
	"regexp"
	"strings"

	"docforge/internal/docmodel"
	"docforge/internal/headerextract"
)

// Counter is the subset of tokencount.Counter the chunker depends on. Kept
// local (duck-typed) so this package never imports an embedding-model
// concern it doesn't otherwise need.
type Counter interface {
	Count(text string) int
}

// Chunker turns pages into bounded, layout-aware chunks (C7).
type Chunker struct {
	cfg     Config
	counter Counter
	warn    func(string)
}

// New builds a Chunker. cfg is adjusted per spec §4.1's dynamic limit rule
// before use; warn receives one message per non-fatal chunking anomaly
// (oversized atomic blocks, non-progressing splits, blocked overlaps,
// missing image matches). A nil warn discards them.
func New(cfg Config, counter Counter, warn func(string)) *Chunker {
	if warn == nil {
		warn = func(string) {}
	}
	return &Chunker{cfg: cfg.adjusted(), counter: counter, warn: warn}
}

// Chunk implements the whole of C7 over an ordered page list: per-page
// accumulation, same-page orphan merge, intra/cross-page overlap, cross-page
// look-behind merge, a final document-wide orphan pass, and table/figure
// re-association by textual id scan. The chunker never fails a document;
// anomalies are reported through warn.
func (c *Chunker) Chunk(pages []docmodel.ExtractedPage) []docmodel.TextChunk {
	var all []docmodel.TextChunk

	for pageIdx, page := range pages {
		pageChunks := c.processPage(page, pageIdx)
		pageChunks = c.samePageOrphanMerge(pageChunks)
		c.intraPageOverlap(pageChunks)

		if len(all) == 0 {
			all = pageChunks
			continue
		}
		all = c.crossPageMerge(all, pageChunks)
	}

	all = c.finalOrphanPass(all)
	c.associateTablesAndFigures(all, pages)
	renumber(all)
	return all
}

// processPage implements spec §4.1 steps 1-5 for a single page.
func (c *Chunker) processPage(page docmodel.ExtractedPage, pageIdx int) []docmodel.TextChunk {
	text := preparePageText(page)
	hr := headerextract.Extract(text)
	blocks := splitBlocks(hr.Text)

	var out []docmodel.TextChunk
	bld := newBuilder(c.counter)

	flush := func() {
		if bld.empty() {
			return
		}
		txt := strings.TrimSpace(bld.text())
		bld.reset()
		if txt == "" {
			return
		}
		out = append(out, docmodel.TextChunk{
			PageNum:    pageIdx,
			Text:       txt,
			TokenCount: c.counter.Count(txt),
			PageHeader: hr.PageHeader,
		})
	}
	emitStandalone := func(txt string) {
		txt = strings.TrimSpace(txt)
		if txt == "" {
			return
		}
		out = append(out, docmodel.TextChunk{
			PageNum:    pageIdx,
			Text:       txt,
			TokenCount: c.counter.Count(txt),
			PageHeader: hr.PageHeader,
		})
	}

	for i := 0; i < len(blocks); i++ {
		blk := blocks[i]
		if blk.kind == blockFigure {
			i = c.accumulateFigure(bld, blocks, i, flush, emitStandalone)
			continue
		}
		c.accumulateTextBlock(bld, blk.text, flush, emitStandalone)
	}
	flush()
	return out
}

// accumulateFigure implements spec §4.1 step 4's figure-block rule (a)-(d),
// returning the (possibly advanced) block index.
func (c *Chunker) accumulateFigure(bld *chunkBuilder, blocks []block, i int, flush func(), emitStandalone func(string)) int {
	figureText := blocks[i].text

	if ref, rest, found := tailTableReference(bld.text()); found {
		if c.counter.Count(rest) >= tableRefMinFloorTokens {
			bld.reset()
			if strings.TrimSpace(rest) != "" {
				bld.append(rest)
				flush()
			}
			figureText = strings.TrimSpace(ref) + " " + figureText
		}
	}

	bld.append(figureText)
	if bld.tokenLen > figureWarnCeilingTokens {
		c.warn("atomic figure block exceeds warning ceiling: " + preview(figureText))
	} else if c.counter.Count(figureText) > c.cfg.MaxSectionTokens {
		c.warn("atomic figure block exceeds hard cap, emitted whole: " + preview(figureText))
	}

	if i+1 < len(blocks) && blocks[i+1].kind == blockText {
		nextTokens := c.counter.Count(blocks[i+1].text)
		if float64(bld.tokenLen+nextTokens) <= float64(c.cfg.MaxTokens)*tableLegendBufferMultiplier {
			bld.append(blocks[i+1].text)
			i++
		}
	}

	flush()
	return i
}

// accumulateTextBlock implements spec §4.1 step 4's text-block rule.
func (c *Chunker) accumulateTextBlock(bld *chunkBuilder, text string, flush func(), emitStandalone func(string)) {
	for _, span := range sentenceSpans(text) {
		spanTokens := c.counter.Count(span)

		if spanTokens > c.cfg.MaxTokens {
			if bld.tokenLen >= tableRefMinFloorTokens || float64(spanTokens) >= 1.5*float64(c.cfg.MaxTokens) {
				flush()
			}
			for _, piece := range recursiveMidSplit(span, c.cfg, c.counter, c.warn) {
				emitStandalone(piece)
			}
			continue
		}

		if canFit(bld, span, c.cfg) {
			bld.append(span)
			continue
		}
		if bld.tokenLen < c.cfg.MaxTokens && bld.tokenLen+spanTokens <= c.cfg.MaxSectionTokens {
			bld.append(span)
			continue
		}
		flush()
		if canFit(bld, span, c.cfg) {
			bld.append(span)
		} else {
			emitStandalone(span)
		}
	}
}

func renumber(chunks []docmodel.TextChunk) {
	counters := map[int]int{}
	for i := range chunks {
		p := chunks[i].PageNum
		chunks[i].ChunkIndexOnPage = counters[p]
		counters[p]++
	}
}

var idScanRe = regexp.MustCompile(`id="([^"]+)"`)

// associateTablesAndFigures implements spec §4.1's final, purely textual
// table/figure re-association: every chunk scans its own text for
// `id="…"` and attaches whichever extractor table/figure matches.
func (c *Chunker) associateTablesAndFigures(chunks []docmodel.TextChunk, pages []docmodel.ExtractedPage) {
	tablesByID := map[string]docmodel.ExtractedTable{}
	figuresByID := map[string]docmodel.ExtractedImage{}
	for _, p := range pages {
		for _, t := range p.Tables {
			tablesByID[t.TableID] = t
		}
		for _, f := range p.Figures {
			figuresByID[f.FigureID] = f
		}
	}
	for i := range chunks {
		for _, m := range idScanRe.FindAllStringSubmatch(chunks[i].Text, -1) {
			id := m[1]
			if t, ok := tablesByID[id]; ok {
				chunks[i].Tables = append(chunks[i].Tables, t)
				continue
			}
			if f, ok := figuresByID[id]; ok {
				chunks[i].Figures = append(chunks[i].Figures, f)
			}
		}
	}
}
