package inputsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// localSource walks a directory tree, grounded on intelligencedev-manifold's
// internal/documents/reader.go FileReader. Unlike that reader it does not
// filter out binary content: PDF/DOCX/PPTX source documents are exactly
// what this pipeline expects to enumerate.
type localSource struct {
	root string
}

// NewLocal builds an InputSource that walks the directory tree rooted at dir.
func NewLocal(dir string) InputSource {
	return &localSource{root: dir}
}

func (s *localSource) List(ctx context.Context) (<-chan Document, <-chan error) {
	out := make(chan Document)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			rel, relErr := filepath.Rel(s.root, path)
			if relErr != nil {
				rel = d.Name()
			}
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				return fmt.Errorf("read %s: %w", path, readErr)
			}
			doc := Document{Name: rel, Bytes: data, OriginURL: "file://" + path}
			select {
			case out <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			errc <- err
		}
	}()

	return out, errc
}

// Ping confirms the root path exists and is a directory.
func (s *localSource) Ping(context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.root)
	}
	return nil
}
