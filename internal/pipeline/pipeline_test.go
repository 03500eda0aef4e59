package pipeline

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"docforge/internal/artifactstore"
	"docforge/internal/chunker"
	"docforge/internal/config"
	"docforge/internal/embedder"
	"docforge/internal/extractor"
	"docforge/internal/mediadescribe"
	"docforge/internal/obs"
	"docforge/internal/pagesplitter"
	"docforge/internal/tablerender"
	"docforge/internal/tokencount"
	"docforge/internal/vectorstore"
)

func newTestPipeline(t *testing.T) (*Pipeline, vectorstore.VectorStore) {
	t.Helper()
	dims := 8
	vs := vectorstore.NewMemory(dims)
	p := &Pipeline{
		Artifacts:  artifactstore.NewLocal(t.TempDir()),
		Vectors:    vs,
		Extractors: extractor.NewRegistry(extractor.NewPlainText()),
		Describer:  mediadescribe.NewNoop(),
		Splitter:   pagesplitter.NewPDF(),
		Embed:      embedder.NewDeterministic(dims, 512, true, 1),
		Chunk:      chunker.New(chunker.DefaultConfig(), tokencount.RuneCounter{}, nil),
		TableMode:  tablerender.Markdown,
		Concurrency: config.ConcurrencyConfig{MaxImageConcurrency: 4},
		Metrics:    obs.NewMockMetrics(),
		Logger:     zerolog.Nop(),
	}
	return p, vs
}

func TestProcessPlainTextDocumentSucceeds(t *testing.T) {
	p, _ := newTestPipeline(t)
	data := []byte("Hello world. This is a small plain-text document used for a pipeline test.")

	result := p.Process(context.Background(), "note.txt", data, "file:///tmp/note.txt")
	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if result.ChunksIndexed == 0 {
		t.Fatalf("expected at least one chunk indexed")
	}
}

func TestProcessUnsupportedExtensionFails(t *testing.T) {
	p, _ := newTestPipeline(t)
	result := p.Process(context.Background(), "report.xyz", []byte("data"), "")
	if result.Success {
		t.Fatalf("expected failure for unsupported extension")
	}
	if result.Error == "" {
		t.Fatalf("expected a captured error message")
	}
}
