// Package embedder implements C8, the embeddings-provider capability
// interface: batched vector generation with a declared max sequence length.
package embedder

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"docforge/internal/config"
)

// Embedder is C8 (spec.md §6): embedBatch preserves input order,
// getDimensions reports the vector width, getMaxSeqLength reports the
// embedding model's token ceiling so the chunker can self-adjust.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	GetDimensions() int
	GetMaxSeqLength() int
	Name() string
	Ping(ctx context.Context) error
}

// clientEmbedder calls a live OpenAI-compatible embeddings endpoint.
type clientEmbedder struct {
	cfg       config.EmbeddingConfig
	batchSize int
	mu        sync.Mutex
	lastCall  time.Time
	minDelay  time.Duration
}

// NewClient constructs an Embedder that calls cfg's HTTP endpoint, batching
// at most cfg.BatchSize texts per request (grounded on
// intelligencedev-manifold's internal/rag/embedder/embedder.go; batch size 1
// there avoided llama.cpp batching crashes, so this keeps that cautious
// default when unset).
func NewClient(cfg config.EmbeddingConfig) Embedder {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	return &clientEmbedder{cfg: cfg, batchSize: batchSize}
}

func (c *clientEmbedder) Name() string         { return c.cfg.Model }
func (c *clientEmbedder) GetDimensions() int    { return 0 } // unknown until first response; caller may override via config
func (c *clientEmbedder) GetMaxSeqLength() int  { return c.cfg.MaxSeqLength }
func (c *clientEmbedder) Ping(ctx context.Context) error { return checkReachability(ctx, c.cfg) }

func (c *clientEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) <= c.batchSize {
		return c.rateLimitedCall(ctx, texts)
	}
	var all [][]float32
	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.rateLimitedCall(ctx, texts[i:end])
		if err != nil {
			return all, err
		}
		all = append(all, vecs...)
	}
	return all, nil
}

func (c *clientEmbedder) rateLimitedCall(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	if !c.lastCall.IsZero() {
		if elapsed := time.Since(c.lastCall); elapsed < c.minDelay {
			time.Sleep(c.minDelay - elapsed)
		}
	}
	c.lastCall = time.Now()
	c.mu.Unlock()
	return embedText(ctx, c.cfg, texts)
}

// deterministicEmbedder hashes byte 3-grams into a fixed-size vector; used
// in tests and offline/dev runs so the pipeline never needs network access.
type deterministicEmbedder struct {
	dim          int
	maxSeqLength int
	normalize    bool
	seed         uint64
}

// NewDeterministic builds a deterministic, network-free Embedder.
func NewDeterministic(dim int, maxSeqLength int, normalize bool, seed uint64) Embedder {
	if dim <= 0 {
		dim = 64
	}
	return &deterministicEmbedder{dim: dim, maxSeqLength: maxSeqLength, normalize: normalize, seed: seed}
}

func (d *deterministicEmbedder) Name() string        { return "deterministic" }
func (d *deterministicEmbedder) GetDimensions() int  { return d.dim }
func (d *deterministicEmbedder) GetMaxSeqLength() int { return d.maxSeqLength }
func (d *deterministicEmbedder) Ping(context.Context) error { return nil }

func (d *deterministicEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = d.embedOne(t)
	}
	return out, nil
}

func (d *deterministicEmbedder) embedOne(s string) []float32 {
	v := make([]float32, d.dim)
	b := []byte(s)
	if len(b) == 0 {
		return v
	}
	if len(b) < 3 {
		hashGramInto(d.seed, b, v)
	} else {
		for i := 0; i <= len(b)-3; i++ {
			hashGramInto(d.seed, b[i:i+3], v)
		}
	}
	if d.normalize {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if sum > 0 {
			inv := float32(1.0 / math.Sqrt(sum))
			for i := range v {
				v[i] *= inv
			}
		}
	}
	return v
}

func hashGramInto(seed uint64, gram []byte, v []float32) {
	h := fnv.New64a()
	if seed != 0 {
		var tmp [8]byte
		for i := 0; i < 8; i++ {
			tmp[i] = byte(seed >> (8 * i))
		}
		_, _ = h.Write(tmp[:])
	}
	_, _ = h.Write(gram)
	hv := h.Sum64()
	idx := int(hv % uint64(len(v)))
	w := float32(int32(hv>>32)) / float32(1<<31)
	v[idx] += w
}
