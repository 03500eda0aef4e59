package inputsource

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestLocalSourceListsAllFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), []byte{0x25, 0x50, 0x44, 0x46})
	writeFile(t, filepath.Join(dir, "sub", "b.docx"), []byte("binary-ish content"))

	src := NewLocal(dir)
	out, errc := src.List(context.Background())

	var names []string
	for doc := range out {
		names = append(names, doc.Name)
	}
	if err := <-errc; err != nil {
		t.Fatalf("List error: %v", err)
	}
	sort.Strings(names)
	want := []string{"a.pdf", filepath.Join("sub", "b.docx")}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("names = %v, want %v", names, want)
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
