package artifactstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"docforge/internal/objectstore"
)

// ArtifactStore is C2 (spec.md §6.1): named writes for the artifacts one
// document produces during ingestion, plus bulk deletion and idempotent
// provisioning.
type ArtifactStore interface {
	WritePageJSON(ctx context.Context, docName string, pageIdx1Based int, obj any) (string, error)
	WritePageRendering(ctx context.Context, docName string, pageIdx1Based int, data []byte) (string, error)
	WriteFullDocument(ctx context.Context, docName string, data []byte) (string, error)
	WriteChunkJSON(ctx context.Context, docName string, pageIdx1Based, chunkIdx int, obj any) (string, error)
	WriteImage(ctx context.Context, docName string, pageIdx1Based int, originalName string, data []byte, figureIdxOnPage int) (string, error)
	WriteManifest(ctx context.Context, docName string, obj any) (string, error)
	WriteStatus(ctx context.Context, runName string, obj any) (string, error)
	DeleteArtifacts(ctx context.Context, docName string) (int, error)
	DeleteAll(ctx context.Context) (int, error)
	EnsureReady(ctx context.Context) error
}

// store is the remote-backed ArtifactStore. It spreads artifacts across
// three logical containers the way intelligencedev-manifold's Azure-oriented
// persistence layer does: a main container for page/chunk JSON, images and
// manifests; a pages container for per-page PDF renderings; and a citations
// container holding each document's full original bytes under its own name.
type store struct {
	main      objectstore.ObjectStore
	pages     objectstore.ObjectStore
	citations objectstore.ObjectStore
}

// New builds a remote ArtifactStore over three already-scoped ObjectStore
// containers. Each container knows how to construct its own public URL
// (objectstore.ObjectStore.PublicURL), so the store no longer needs a
// separate URL-formatting callback.
func New(main, pages, citations objectstore.ObjectStore) ArtifactStore {
	return &store{main: main, pages: pages, citations: citations}
}

func (s *store) put(ctx context.Context, os objectstore.ObjectStore, container, key string, data []byte, contentType string) (string, error) {
	if _, err := os.Put(ctx, key, bytes.NewReader(data), objectstore.PutOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("put %s/%s: %w", container, key, err)
	}
	return os.PublicURL(key), nil
}

func (s *store) putJSON(ctx context.Context, container, key string, obj any) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.put(ctx, s.main, container, key, data, "application/json")
}

func (s *store) WritePageJSON(ctx context.Context, docName string, pageIdx1Based int, obj any) (string, error) {
	return s.putJSON(ctx, "main", pageJSONKey(docName, pageIdx1Based), obj)
}

func (s *store) WritePageRendering(ctx context.Context, docName string, pageIdx1Based int, data []byte) (string, error) {
	return s.put(ctx, s.pages, "pages", pageRenderingKey(docName, pageIdx1Based), data, "application/pdf")
}

func (s *store) WriteFullDocument(ctx context.Context, docName string, data []byte) (string, error) {
	return s.put(ctx, s.citations, "citations", docName, data, "application/octet-stream")
}

func (s *store) WriteChunkJSON(ctx context.Context, docName string, pageIdx1Based, chunkIdx int, obj any) (string, error) {
	return s.putJSON(ctx, "main", chunkJSONKey(docName, pageIdx1Based, chunkIdx), obj)
}

func (s *store) WriteImage(ctx context.Context, docName string, pageIdx1Based int, originalName string, data []byte, figureIdxOnPage int) (string, error) {
	ext := extOf(originalName)
	return s.put(ctx, s.main, "main", imageKey(docName, pageIdx1Based, figureIdxOnPage, ext), data, mimeForExt(ext))
}

func (s *store) WriteManifest(ctx context.Context, docName string, obj any) (string, error) {
	return s.putJSON(ctx, "main", manifestKey(docName), obj)
}

func (s *store) WriteStatus(ctx context.Context, runName string, obj any) (string, error) {
	return s.putJSON(ctx, "main", statusKey(runName), obj)
}

func (s *store) DeleteArtifacts(ctx context.Context, docName string) (int, error) {
	count := 0
	prefix := stem(docName)
	res, err := s.main.List(ctx, objectstore.ListOptions{Prefix: prefix})
	if err != nil {
		return count, fmt.Errorf("list main artifacts for %s: %w", docName, err)
	}
	for _, obj := range res.Objects {
		if err := s.main.Delete(ctx, obj.Key); err != nil {
			return count, fmt.Errorf("delete %s: %w", obj.Key, err)
		}
		count++
	}
	pageRes, err := s.pages.List(ctx, objectstore.ListOptions{Prefix: prefix})
	if err != nil {
		return count, fmt.Errorf("list page renderings for %s: %w", docName, err)
	}
	for _, obj := range pageRes.Objects {
		if err := s.pages.Delete(ctx, obj.Key); err != nil {
			return count, fmt.Errorf("delete %s: %w", obj.Key, err)
		}
		count++
	}
	if err := s.citations.Delete(ctx, docName); err == nil {
		count++
	}
	return count, nil
}

func (s *store) DeleteAll(ctx context.Context) (int, error) {
	count := 0
	for _, os := range []objectstore.ObjectStore{s.main, s.pages, s.citations} {
		res, err := os.List(ctx, objectstore.ListOptions{})
		if err != nil {
			return count, fmt.Errorf("list for delete-all: %w", err)
		}
		for _, obj := range res.Objects {
			if err := os.Delete(ctx, obj.Key); err != nil {
				return count, fmt.Errorf("delete %s: %w", obj.Key, err)
			}
			count++
		}
	}
	return count, nil
}

// EnsureReady pings every underlying container. Buckets themselves are
// provisioned out of band; this only confirms they're reachable.
func (s *store) EnsureReady(ctx context.Context) error {
	for name, os := range map[string]objectstore.ObjectStore{"main": s.main, "pages": s.pages, "citations": s.citations} {
		if err := os.Ping(ctx); err != nil {
			return fmt.Errorf("%s container unreachable: %w", name, err)
		}
	}
	return nil
}
