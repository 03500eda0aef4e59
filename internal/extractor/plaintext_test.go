package extractor

import (
	"context"
	"testing"
)

func TestPlainTextExtractorSplitsOnFormFeed(t *testing.T) {
	e := NewPlainText()
	pages, err := e.Extract(context.Background(), "notes.txt", []byte("page one\f page two\fpage three"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("len(pages) = %d, want 3", len(pages))
	}
	if pages[0].PageNum != 0 || pages[2].PageNum != 2 {
		t.Fatalf("unexpected page numbering: %+v", pages)
	}
}

func TestPlainTextExtractorSupports(t *testing.T) {
	e := NewPlainText()
	for _, name := range []string{"a.txt", "a.md", "a.MARKDOWN"} {
		if !e.Supports(name) {
			t.Fatalf("expected Supports(%q) = true", name)
		}
	}
	if e.Supports("a.pdf") {
		t.Fatalf("expected Supports(\"a.pdf\") = false")
	}
}

func TestRegistryDispatchesToSupportingExtractor(t *testing.T) {
	r := NewRegistry(NewPlainText())
	if _, err := r.Extract(context.Background(), "a.pdf", nil); err == nil {
		t.Fatalf("expected ErrUnsupported for a.pdf")
	}
	pages, err := r.Extract(context.Background(), "a.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("len(pages) = %d, want 1", len(pages))
	}
}
