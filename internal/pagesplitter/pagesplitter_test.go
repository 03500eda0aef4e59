package pagesplitter

import (
	"context"
	"testing"
)

func TestSupportsDetectsPDFMagic(t *testing.T) {
	s := NewPDF()
	if !s.Supports([]byte("%PDF-1.7\n...")) {
		t.Fatalf("expected PDF magic to be recognized")
	}
	if s.Supports([]byte("not a pdf")) {
		t.Fatalf("expected non-PDF bytes to be rejected")
	}
}

func TestCountPagesIgnoresPagesTreeNode(t *testing.T) {
	doc := []byte("1 0 obj <</Type /Pages /Count 2>> endobj\n" +
		"2 0 obj <</Type /Page /Parent 1 0 R>> endobj\n" +
		"3 0 obj <</Type /Page /Parent 1 0 R>> endobj\n")
	if got := countPages(doc); got != 2 {
		t.Fatalf("countPages() = %d, want 2", got)
	}
}

func TestSplitReturnsOneRenderingPerPage(t *testing.T) {
	doc := []byte("%PDF-1.7\n" +
		"1 0 obj <</Type/Pages/Count 2>> endobj\n" +
		"2 0 obj <</Type/Page>> endobj\n" +
		"3 0 obj <</Type/Page>> endobj\n")
	out, err := NewPDF().Split(context.Background(), doc)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}
