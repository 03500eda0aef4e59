package chunker

import (
	"strings"
	"testing"

	"docforge/internal/docmodel"
	"docforge/internal/tokencount"
)

func countWarns() (func(string), *[]string) {
	var got []string
	return func(s string) { got = append(got, s) }, &got
}

func TestChunkZeroPagesYieldsZeroChunks(t *testing.T) {
	warn, _ := countWarns()
	ch := New(DefaultConfig(), tokencount.RuneCounter{}, warn)
	out := ch.Chunk(nil)
	if len(out) != 0 {
		t.Fatalf("expected 0 chunks, got %d", len(out))
	}
}

func TestChunkSinglePageSingleChunk(t *testing.T) {
	warn, _ := countWarns()
	cfg := Config{MaxTokens: 500, MaxSectionTokens: 750, MaxChars: 4000, OverlapPercent: 10, CrossPageOverlap: true}
	ch := New(cfg, tokencount.RuneCounter{}, warn)
	pages := []docmodel.ExtractedPage{{PageNum: 0, Text: "A short page of prose that fits in one chunk easily."}}
	out := ch.Chunk(pages)
	if len(out) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %+v", len(out), out)
	}
}

func TestChunkAtomicFigureNeverSplit(t *testing.T) {
	warn, warns := countWarns()
	cfg := Config{MaxTokens: 50, MaxSectionTokens: 80, MaxChars: 4000, OverlapPercent: 0}
	ch := New(cfg, tokencount.RuneCounter{}, warn)

	bigFigure := `<figure id="table_7">` + strings.Repeat("x", 900) + `</figure>`
	pages := []docmodel.ExtractedPage{{PageNum: 0, Text: bigFigure}}
	out := ch.Chunk(pages)

	if len(out) != 1 {
		t.Fatalf("expected exactly one chunk for the atomic figure, got %d", len(out))
	}
	if !strings.Contains(out[0].Text, "</figure>") || !strings.Contains(out[0].Text, "<figure") {
		t.Fatalf("figure block was split: %q", out[0].Text)
	}
	if len(*warns) == 0 {
		t.Fatalf("expected a warning for an oversized atomic figure")
	}
}

func TestChunkFigureAssociation(t *testing.T) {
	warn, _ := countWarns()
	cfg := DefaultConfig()
	ch := New(cfg, tokencount.RuneCounter{}, warn)

	pages := []docmodel.ExtractedPage{
		{
			PageNum: 0,
			Text:    `Some text. <figure id="fig_1"/> more text.`,
			Figures: []docmodel.ExtractedImage{{FigureID: "fig_1", Placeholder: `<figure id="fig_1"/>`, Description: "a chart"}},
		},
	}
	out := ch.Chunk(pages)
	found := false
	for _, c := range out {
		if len(c.Figures) == 1 && c.Figures[0].FigureID == "fig_1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected figure fig_1 to be associated with a chunk: %+v", out)
	}
}

func TestChunkNeverEmptyTextChunks(t *testing.T) {
	warn, _ := countWarns()
	cfg := DefaultConfig()
	ch := New(cfg, tokencount.RuneCounter{}, warn)
	pages := []docmodel.ExtractedPage{{PageNum: 0, Text: "Hello world."}, {PageNum: 1, Text: "Page two content here."}}
	out := ch.Chunk(pages)
	for _, c := range out {
		if strings.TrimSpace(c.Text) == "" {
			t.Fatalf("found empty chunk: %+v", out)
		}
	}
}

func TestChunkIsDeterministic(t *testing.T) {
	warn, _ := countWarns()
	cfg := DefaultConfig()
	pages := []docmodel.ExtractedPage{
		{PageNum: 0, Text: strings.Repeat("Lorem ipsum dolor sit amet. ", 40)},
		{PageNum: 1, Text: strings.Repeat("Consectetur adipiscing elit. ", 40)},
	}
	ch1 := New(cfg, tokencount.RuneCounter{}, warn)
	out1 := ch1.Chunk(pages)
	ch2 := New(cfg, tokencount.RuneCounter{}, warn)
	out2 := ch2.Chunk(pages)
	if len(out1) != len(out2) {
		t.Fatalf("non-deterministic chunk count: %d vs %d", len(out1), len(out2))
	}
	for i := range out1 {
		if out1[i].Text != out2[i].Text {
			t.Fatalf("non-deterministic chunk %d text", i)
		}
	}
}

func TestDynamicLimitAdjustment(t *testing.T) {
	cfg := Config{MaxTokens: 500, MaxSectionTokens: 750, OverlapPercent: 10, EmbeddingMaxTokens: 256}
	adj := cfg.adjusted()
	if adj.MaxSectionTokens != 197 {
		t.Fatalf("MaxSectionTokens = %d, want 197 (floor(256*0.85/1.1))", adj.MaxSectionTokens)
	}
	if adj.MaxTokens != 197 {
		t.Fatalf("MaxTokens = %d, want 197 since safe < maxTokens too", adj.MaxTokens)
	}
}

func TestRespectsHardCapForNonAtomicChunks(t *testing.T) {
	warn, _ := countWarns()
	cfg := Config{MaxTokens: 40, MaxSectionTokens: 60, MaxChars: 4000, OverlapPercent: 0}
	ch := New(cfg, tokencount.RuneCounter{}, warn)
	text := strings.Repeat("word ", 200) + "."
	pages := []docmodel.ExtractedPage{{PageNum: 0, Text: text}}
	out := ch.Chunk(pages)
	// A fragment shorter than recursiveMidSplitMinChars is allowed to exceed
	// the hard cap (spec §4.1's recursive mid-split: "too short to split
	// further, emit as-is and warn"); everything else must respect it.
	for _, c := range out {
		if containsFigure(c.Text) {
			continue
		}
		if c.TokenCount > cfg.MaxSectionTokens && len(c.Text) >= recursiveMidSplitMinChars {
			t.Fatalf("chunk exceeds hard cap: %d > %d (text=%q)", c.TokenCount, cfg.MaxSectionTokens, c.Text)
		}
	}
}
