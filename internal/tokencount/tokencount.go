// Package tokencount provides model-aware token counting for the chunker
// (C1). The default counter wraps tiktoken-go; a rune-counting fallback is
// used when no model encoding is configured or tiktoken fails to load.
package tokencount

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens the way a target embedding model would.
type Counter interface {
	Count(text string) int
	Name() string
}

// RuneCounter counts Unicode code points. It never fails and is used as the
// fallback when a model-specific encoding cannot be loaded.
type RuneCounter struct{}

func (RuneCounter) Count(text string) int { return utf8.RuneCountInString(text) }
func (RuneCounter) Name() string          { return "rune" }

// TiktokenCounter wraps github.com/pkoukk/tiktoken-go for a named encoding.
// Encoding lookup happens once at construction; Count is safe for concurrent
// use (the underlying BPE tables are read-only after load).
type TiktokenCounter struct {
	encodingName string
	enc          *tiktoken.Tiktoken
}

// Option configures a TiktokenCounter.
type Option func(*tiktokenOpts)

type tiktokenOpts struct {
	encodingName string
}

// WithEncoding selects a tiktoken encoding by name (e.g. "o200k_base",
// "cl100k_base", "p50k_base", "gpt2"). Default: "o200k_base".
func WithEncoding(name string) Option {
	return func(o *tiktokenOpts) { o.encodingName = name }
}

// NewTiktoken builds a TiktokenCounter, falling back to a plain RuneCounter
// (whose Name is "rune") if the encoding cannot be loaded (e.g. the BPE rank
// file is unavailable offline).
func NewTiktoken(opts ...Option) Counter {
	cfg := tiktokenOpts{encodingName: "o200k_base"}
	for _, opt := range opts {
		opt(&cfg)
	}
	enc, err := tiktoken.GetEncoding(cfg.encodingName)
	if err != nil {
		return RuneCounter{}
	}
	return &TiktokenCounter{encodingName: cfg.encodingName, enc: enc}
}

func (t *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

func (t *TiktokenCounter) Name() string { return t.encodingName }

// cachedByModel memoizes counters per model name so the chunker and the
// embedder can share one BPE table per process instead of reloading it for
// every document.
var (
	cacheMu sync.Mutex
	cache   = map[string]Counter{}
)

// ForModel returns a process-wide cached Counter for the given model/encoding
// name, constructing it on first use.
func ForModel(encodingName string) Counter {
	if encodingName == "" {
		return RuneCounter{}
	}
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if c, ok := cache[encodingName]; ok {
		return c
	}
	c := NewTiktoken(WithEncoding(encodingName))
	cache[encodingName] = c
	return c
}
