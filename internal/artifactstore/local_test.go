package artifactstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoreWritePageJSONThenDeleteArtifacts(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)
	ctx := context.Background()

	if err := s.EnsureReady(ctx); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	url, err := s.WritePageJSON(ctx, "report.pdf", 1, map[string]string{"text": "hello"})
	if err != nil {
		t.Fatalf("WritePageJSON: %v", err)
	}
	if url == "" {
		t.Fatalf("expected non-empty URL")
	}
	if _, err := os.Stat(filepath.Join(dir, "report", "page-0001.json")); err != nil {
		t.Fatalf("expected page json on disk: %v", err)
	}

	deleted, err := s.DeleteArtifacts(ctx, "report.pdf")
	if err != nil {
		t.Fatalf("DeleteArtifacts: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if _, err := os.Stat(filepath.Join(dir, "report")); !os.IsNotExist(err) {
		t.Fatalf("expected report dir removed, stat err = %v", err)
	}
}

func TestLocalStoreWriteFullDocumentIsNoop(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)
	url, err := s.WriteFullDocument(context.Background(), "report.pdf", []byte("would normally be written"))
	if err != nil {
		t.Fatalf("WriteFullDocument: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "report.pdf")); !os.IsNotExist(statErr) {
		t.Fatalf("expected WriteFullDocument to not create a file on local backend")
	}
	if url == "" {
		t.Fatalf("expected a URI pointing at the already-local file")
	}
}

func TestLocalStoreDeleteAll(t *testing.T) {
	dir := t.TempDir()
	s := NewLocal(dir)
	ctx := context.Background()
	if _, err := s.WritePageJSON(ctx, "a.pdf", 1, map[string]string{}); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if _, err := s.WritePageJSON(ctx, "b.pdf", 1, map[string]string{}); err != nil {
		t.Fatalf("write b: %v", err)
	}
	deleted, err := s.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
}
