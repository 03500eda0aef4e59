package extractor

import (
	"context"
	"path"
	"strings"

	"docforge/internal/docmodel"
)

// plainTextExtractor handles .txt and .md sources without calling any
// external layout-analysis service, splitting on form-feed page breaks the
// way intelligencedev-manifold's textsplitters.layoutSplitter does.
type plainTextExtractor struct{}

// NewPlainText builds the offline fallback Extractor for .txt/.md sources.
func NewPlainText() Extractor { return plainTextExtractor{} }

func (plainTextExtractor) Supports(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".txt", ".md", ".markdown":
		return true
	default:
		return false
	}
}

func (plainTextExtractor) Extract(_ context.Context, _ string, data []byte) ([]docmodel.ExtractedPage, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	var rawPages []string
	if strings.Contains(text, "\f") {
		rawPages = strings.Split(text, "\f")
	} else {
		rawPages = []string{text}
	}

	pages := make([]docmodel.ExtractedPage, 0, len(rawPages))
	offset := 0
	for i, raw := range rawPages {
		body := strings.TrimRight(raw, "\n")
		pages = append(pages, docmodel.ExtractedPage{
			PageNum: i,
			Text:    body,
			Offset:  offset,
		})
		offset += len(raw)
	}
	return pages, nil
}
