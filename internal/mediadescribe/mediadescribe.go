// Package mediadescribe defines C6, the media-description capability: a
// natural-language description of one extracted figure image. The real
// vision-model-backed describer is an external collaborator (spec.md §1 Out
// of scope); this package defines the interface plus a disabled/offline
// implementation used when description is turned off or no endpoint is
// configured.
package mediadescribe

import "context"

// MediaDescriber is C6.
type MediaDescriber interface {
	// Describe returns a natural-language description of the image, or ""
	// if description is disabled.
	Describe(ctx context.Context, imageBytes []byte, mimeType, title string) (string, error)
}

// noop never calls out and always returns an empty description.
type noop struct{}

// NewNoop builds a MediaDescriber that leaves every figure undescribed.
func NewNoop() MediaDescriber { return noop{} }

func (noop) Describe(context.Context, []byte, string, string) (string, error) { return "", nil }
