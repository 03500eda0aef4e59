package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"docforge/internal/artifactstore"
	"docforge/internal/chunker"
	"docforge/internal/config"
	"docforge/internal/embedder"
	"docforge/internal/extractor"
	"docforge/internal/inputsource"
	"docforge/internal/mediadescribe"
	"docforge/internal/obs"
	"docforge/internal/pagesplitter"
	"docforge/internal/pipeline"
	"docforge/internal/tablerender"
	"docforge/internal/tokencount"
	"docforge/internal/vectorstore"
)

func newTestRunner(t *testing.T, inputDir string) (*Runner, vectorstore.VectorStore, artifactstore.ArtifactStore) {
	t.Helper()
	dims := 8
	vs := vectorstore.NewMemory(dims)
	as := artifactstore.NewLocal(t.TempDir())

	build := func(_ context.Context, _ string) (*pipeline.Pipeline, error) {
		return &pipeline.Pipeline{
			Artifacts:  as,
			Vectors:    vs,
			Extractors: extractor.NewRegistry(extractor.NewPlainText()),
			Describer:  mediadescribe.NewNoop(),
			Splitter:   pagesplitter.NewPDF(),
			Embed:      embedder.NewDeterministic(dims, 512, true, 1),
			Chunk:      chunker.New(chunker.DefaultConfig(), tokencount.RuneCounter{}, nil),
			TableMode:  tablerender.Markdown,
			Metrics:    obs.NewMockMetrics(),
			Logger:     zerolog.Nop(),
		}, nil
	}

	r := &Runner{
		Action:     config.ActionAdd,
		Input:      inputsource.NewLocal(inputDir),
		Build:      build,
		Vectors:    vs,
		Artifacts:  as,
		MaxWorkers: 2,
		RunID:      "test-run",
		Logger:     zerolog.Nop(),
	}
	return r, vs, as
}

func writeTestDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRunnerAddProcessesAllDocuments(t *testing.T) {
	dir := t.TempDir()
	writeTestDoc(t, dir, "a.txt", "first document with enough words to form a chunk")
	writeTestDoc(t, dir, "b.txt", "second document with enough words to form a chunk")

	r, _, _ := newTestRunner(t, dir)
	status, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status.Total != 2 || status.Succeeded != 2 {
		t.Fatalf("status = %+v, want total=2 succeeded=2", status)
	}
}

func TestRunnerAddFailsWithNoInput(t *testing.T) {
	dir := t.TempDir()
	r, _, _ := newTestRunner(t, dir)
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatalf("expected an error for an empty input source")
	}
}

func TestRunnerRemoveAllClearsVectorStore(t *testing.T) {
	dir := t.TempDir()
	writeTestDoc(t, dir, "a.txt", "a document about removal semantics and idempotent deletes")
	r, vs, _ := newTestRunner(t, dir)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("seed ADD: %v", err)
	}

	r.Action = config.ActionRemoveAll
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("REMOVE_ALL: %v", err)
	}

	remaining, err := vs.DeleteByFilename(context.Background(), "a.txt")
	if err != nil {
		t.Fatalf("DeleteByFilename after REMOVE_ALL: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0 after REMOVE_ALL", remaining)
	}
}
