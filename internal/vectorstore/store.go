// Package vectorstore implements C9, the vector-store capability interface:
// idempotent upsert, delete-by-filename, delete-all.
package vectorstore

import (
	"context"

	"docforge/internal/docmodel"
)

// VectorStore is C9 (spec.md §6). Upload must be idempotent on chunk_id
// (upsert semantics): running ADD twice over the same bytes must not grow
// the stored count.
type VectorStore interface {
	// Upload upserts chunkDocs, embedding vectors included only when
	// includeEmbeddings is true (false when the store performs its own
	// server-side vectorization). Returns the number of points written.
	Upload(ctx context.Context, chunkDocs []docmodel.ChunkDocument, includeEmbeddings bool) (int, error)
	// DeleteByFilename removes every point whose sourcefile metadata matches
	// filename, returning the number deleted. Called before every ADD run
	// over that filename (full-replace semantics, spec.md §3 invariant 3).
	DeleteByFilename(ctx context.Context, filename string) (int, error)
	// DeleteAll removes every point in the store, returning the number
	// deleted.
	DeleteAll(ctx context.Context) (int, error)
	// GetDimensions reports the configured vector width.
	GetDimensions() int
	// Ping verifies the store is reachable, used by the validate-only probe.
	Ping(ctx context.Context) error
}

// Metadata field names shared by every VectorStore implementation.
const (
	FieldSourceFile  = "sourcefile"
	FieldChunkID     = "chunk_id"
	FieldPageNum     = "page_num"
	FieldTitle       = "title"
	FieldStorageURL  = "storage_url"
	FieldOriginalID  = "_original_id"
)

// chunkMetadata builds the metadata map stored alongside one chunk's vector.
func chunkMetadata(c docmodel.ChunkDocument) map[string]string {
	md := map[string]string{
		FieldSourceFile: c.Document.SourceFile,
		FieldChunkID:    c.ChunkID,
	}
	if c.Title != "" {
		md[FieldTitle] = c.Title
	}
	if c.PageBlobURL != "" {
		md[FieldStorageURL] = c.PageBlobURL
	}
	return md
}
