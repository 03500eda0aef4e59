package vectorstore

import (
	"context"
	"testing"

	"docforge/internal/docmodel"
)

func testChunk(sourcefile, chunkID string) docmodel.ChunkDocument {
	return docmodel.ChunkDocument{
		Document:  docmodel.DocumentMeta{SourceFile: sourcefile},
		ChunkID:   chunkID,
		Embedding: []float32{0.1, 0.2, 0.3},
	}
}

func TestMemoryUploadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(3).(*memoryStore)
	chunks := []docmodel.ChunkDocument{testChunk("a.pdf", "a.pdf#0"), testChunk("a.pdf", "a.pdf#1")}

	if _, err := store.Upload(ctx, chunks, true); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if _, err := store.Upload(ctx, chunks, true); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if got := store.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2 after repeated upload of the same chunk_ids", got)
	}
}

func TestMemoryDeleteByFilename(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(3).(*memoryStore)
	if _, err := store.Upload(ctx, []docmodel.ChunkDocument{
		testChunk("a.pdf", "a.pdf#0"),
		testChunk("b.pdf", "b.pdf#0"),
	}, true); err != nil {
		t.Fatalf("upload: %v", err)
	}

	deleted, err := store.DeleteByFilename(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if store.CountByFilename("a.pdf") != 0 {
		t.Fatalf("expected a.pdf points gone")
	}
	if store.CountByFilename("b.pdf") != 1 {
		t.Fatalf("expected b.pdf points untouched")
	}
}

func TestMemoryDeleteAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(3).(*memoryStore)
	if _, err := store.Upload(ctx, []docmodel.ChunkDocument{
		testChunk("a.pdf", "a.pdf#0"),
		testChunk("b.pdf", "b.pdf#0"),
	}, true); err != nil {
		t.Fatalf("upload: %v", err)
	}
	deleted, err := store.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
	if store.Count() != 0 {
		t.Fatalf("expected empty store after DeleteAll")
	}
}

func TestMemoryGetDimensions(t *testing.T) {
	store := NewMemory(768)
	if got := store.GetDimensions(); got != 768 {
		t.Fatalf("GetDimensions() = %d, want 768", got)
	}
}
