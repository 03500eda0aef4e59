package chunker

import "strings"

// chunkBuilder accumulates blocks/spans into one pending chunk (spec §4.1
// step 4's "ChunkBuilder"), tracking running token length without
// recomputing it on every append.
type chunkBuilder struct {
	parts   []string
	tokenLen int
	counter Counter
}

func newBuilder(counter Counter) *chunkBuilder {
	return &chunkBuilder{counter: counter}
}

func (b *chunkBuilder) text() string { return strings.Join(b.parts, "") }

func (b *chunkBuilder) empty() bool { return len(b.parts) == 0 }

func (b *chunkBuilder) append(s string) {
	b.parts = append(b.parts, s)
	b.tokenLen += b.counter.Count(s)
}

func (b *chunkBuilder) reset() {
	b.parts = nil
	b.tokenLen = 0
}

// joinWithSpace concatenates a and b, inserting a single space only when
// both adjacent characters are alphanumeric and no whitespace boundary
// already separates them.
func joinWithSpace(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	ar := []rune(a)
	br := []rune(b)
	last := ar[len(ar)-1]
	first := br[0]
	if isAlnum(last) && isAlnum(first) {
		return a + " " + b
	}
	return a + b
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// canFit implements spec §4.1 step 4's fit test: fits iff the builder is
// empty and the span alone stays under the hard max, or the builder's new
// total stays under the hard max and (when enabled) under the soft char
// ceiling.
func canFit(b *chunkBuilder, span string, cfg Config) bool {
	spanTokens := b.counter.Count(span)
	if b.empty() {
		return spanTokens <= cfg.MaxSectionTokens
	}
	if b.tokenLen+spanTokens > cfg.MaxSectionTokens {
		return false
	}
	if !cfg.DisableCharLimit {
		if len(b.text())+len(span) > cfg.MaxChars {
			return false
		}
	}
	return true
}
