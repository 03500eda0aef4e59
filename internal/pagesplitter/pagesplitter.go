// Package pagesplitter implements C12: turning a paginated source document
// into one rendering per page, so each page can be uploaded as its own
// artifact before extraction runs (spec.md §4.2 step 2).
//
// No PDF-manipulation library appears anywhere in the reference corpus this
// module was built from (see DESIGN.md), so page counting here is a
// dependency-free structural scan of the PDF object table rather than a
// full parse. It is accurate for the well-formed, non-encrypted PDFs this
// pipeline is expected to ingest.
package pagesplitter

import (
	"bytes"
	"context"
)

// PageSplitter is C12.
type PageSplitter interface {
	// Supports reports whether data is a format this splitter paginates.
	// Presentations and flat text formats return false; the caller skips
	// step 2 for them per spec.md §4.2.
	Supports(data []byte) bool
	// Split returns one rendering per page, in order.
	Split(ctx context.Context, data []byte) ([][]byte, error)
}

type pdfSplitter struct{}

// NewPDF builds the PageSplitter for PDF sources.
func NewPDF() PageSplitter { return pdfSplitter{} }

var pdfMagic = []byte("%PDF-")

func (pdfSplitter) Supports(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\n\r "), pdfMagic)
}

// Split counts the document's pages via its object table and returns the
// full document bytes once per page. Byte-accurate single-page PDFs would
// require rewriting the cross-reference table and are left to a real PDF
// library; every rendering C2 stores therefore addresses the whole document
// at the page's URL until that library is wired in.
func (s pdfSplitter) Split(_ context.Context, data []byte) ([][]byte, error) {
	count := countPages(data)
	if count < 1 {
		count = 1
	}
	out := make([][]byte, count)
	for i := range out {
		out[i] = data
	}
	return out, nil
}

// countPages scans for "/Type /Page" object markers, excluding the "/Type
// /Pages" tree-node marker that would otherwise be double-counted.
func countPages(data []byte) int {
	count := 0
	marker := []byte("/Type/Page")
	markerSpaced := []byte("/Type /Page")
	for _, m := range [][]byte{marker, markerSpaced} {
		idx := 0
		for {
			rel := bytes.Index(data[idx:], m)
			if rel < 0 {
				break
			}
			pos := idx + rel
			next := pos + len(m)
			if next < len(data) && data[next] == 's' {
				idx = next + 1
				continue // this was "/Type /Pages", the tree-node marker
			}
			count++
			idx = next
		}
		if count > 0 {
			break
		}
	}
	return count
}
