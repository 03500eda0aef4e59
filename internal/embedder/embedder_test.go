package embedder

import (
	"context"
	"testing"
)

func TestDeterministicEmbedderIsDeterministic(t *testing.T) {
	e1 := NewDeterministic(32, 256, true, 7)
	e2 := NewDeterministic(32, 256, true, 7)
	out1, err := e1.EmbedBatch(context.Background(), []string{"hello world", "second chunk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := e2.EmbedBatch(context.Background(), []string{"hello world", "second chunk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range out1 {
		for j := range out1[i] {
			if out1[i][j] != out2[i][j] {
				t.Fatalf("non-deterministic embedding at [%d][%d]: %v vs %v", i, j, out1[i][j], out2[i][j])
			}
		}
	}
}

func TestDeterministicEmbedderPreservesOrder(t *testing.T) {
	e := NewDeterministic(16, 0, false, 0)
	out, err := e.EmbedBatch(context.Background(), []string{"aaa", "bbb", "ccc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(out))
	}
	if out[0][0] == out[1][0] && out[1][0] == out[2][0] {
		t.Fatalf("embeddings for distinct inputs should not be trivially identical")
	}
	for i, text := range []string{"aaa", "bbb", "ccc"} {
		single, err := e.EmbedBatch(context.Background(), []string{text})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for j := range single[0] {
			if out[i][j] != single[0][j] {
				t.Fatalf("batch vector %d does not match the embedding of %q at [%d]", i, text, j)
			}
		}
	}
}

func TestDeterministicEmbedderReportsMaxSeqLength(t *testing.T) {
	e := NewDeterministic(16, 256, false, 0)
	if e.GetMaxSeqLength() != 256 {
		t.Fatalf("GetMaxSeqLength() = %d, want 256", e.GetMaxSeqLength())
	}
	if e.GetDimensions() != 16 {
		t.Fatalf("GetDimensions() = %d, want 16", e.GetDimensions())
	}
}

func TestDeterministicEmbedderPing(t *testing.T) {
	e := NewDeterministic(8, 0, false, 0)
	if err := e.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
