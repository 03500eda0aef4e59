// Package extractor defines C4, the extraction capability: turning one
// document's raw bytes into an ordered list of docmodel.ExtractedPage.
//
// The real PDF layout analyzer and office-format reader are external
// collaborators (spec.md §1 Out of scope): this package only defines the
// interface and a deterministic offline implementation for plain-text and
// Markdown sources, used for local development and tests without a live
// extraction service.
package extractor

import (
	"context"

	"docforge/internal/docmodel"
)

// Extractor is C4: produces the ordered page list for one document.
type Extractor interface {
	// Extract returns the document's pages in order. name is used only for
	// format dispatch/logging; it carries no path semantics here.
	Extract(ctx context.Context, name string, data []byte) ([]docmodel.ExtractedPage, error)
	// Supports reports whether this extractor handles the given filename.
	Supports(name string) bool
}

// Registry dispatches to the first Extractor that supports a given name.
type Registry struct {
	extractors []Extractor
}

// NewRegistry builds a Registry trying each extractor in order.
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

func (r *Registry) Extract(ctx context.Context, name string, data []byte) ([]docmodel.ExtractedPage, error) {
	for _, e := range r.extractors {
		if e.Supports(name) {
			return e.Extract(ctx, name, data)
		}
	}
	return nil, ErrUnsupported{Name: name}
}

// ErrUnsupported is returned when no registered Extractor handles a name.
type ErrUnsupported struct{ Name string }

func (e ErrUnsupported) Error() string {
	return "extractor: no extractor supports " + e.Name
}
