package artifactstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// localStore is the disk-backed ArtifactStore used for dev/test runs and for
// deployments that have no S3-compatible object store configured. Per
// spec.md §6.1, WriteFullDocument is a no-op here: the original file already
// lives on disk, so the store just returns its own URI.
type localStore struct {
	root string
}

// NewLocal builds a disk-backed ArtifactStore rooted at dir.
func NewLocal(dir string) ArtifactStore {
	return &localStore{root: dir}
}

func (s *localStore) EnsureReady(context.Context) error {
	return os.MkdirAll(s.root, 0o755)
}

func (s *localStore) writeFile(key string, data []byte) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("mkdir for %s: %w", key, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return "file://" + full, nil
}

func (s *localStore) writeJSON(key string, obj any) (string, error) {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.writeFile(key, data)
}

func (s *localStore) WritePageJSON(_ context.Context, docName string, pageIdx1Based int, obj any) (string, error) {
	return s.writeJSON(pageJSONKey(docName, pageIdx1Based), obj)
}

func (s *localStore) WritePageRendering(_ context.Context, docName string, pageIdx1Based int, data []byte) (string, error) {
	return s.writeFile(pageRenderingKey(docName, pageIdx1Based), data)
}

// WriteFullDocument is a no-op: the source file is already on local disk.
func (s *localStore) WriteFullDocument(_ context.Context, docName string, _ []byte) (string, error) {
	return "file://" + filepath.Join(s.root, docName), nil
}

func (s *localStore) WriteChunkJSON(_ context.Context, docName string, pageIdx1Based, chunkIdx int, obj any) (string, error) {
	return s.writeJSON(chunkJSONKey(docName, pageIdx1Based, chunkIdx), obj)
}

func (s *localStore) WriteImage(_ context.Context, docName string, pageIdx1Based int, originalName string, data []byte, figureIdxOnPage int) (string, error) {
	return s.writeFile(imageKey(docName, pageIdx1Based, figureIdxOnPage, extOf(originalName)), data)
}

func (s *localStore) WriteManifest(_ context.Context, docName string, obj any) (string, error) {
	return s.writeJSON(manifestKey(docName), obj)
}

func (s *localStore) WriteStatus(_ context.Context, runName string, obj any) (string, error) {
	return s.writeJSON(statusKey(runName), obj)
}

func (s *localStore) DeleteArtifacts(_ context.Context, docName string) (int, error) {
	dir := filepath.Join(s.root, stem(docName))
	count, err := removeCountingFiles(dir)
	if err != nil {
		return count, err
	}
	pagePattern := filepath.Join(s.root, stem(docName)+"_page_*.pdf")
	matches, err := filepath.Glob(pagePattern)
	if err != nil {
		return count, fmt.Errorf("glob page renderings: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return count, fmt.Errorf("remove %s: %w", m, err)
		}
		count++
	}
	return count, nil
}

func (s *localStore) DeleteAll(context.Context) (int, error) {
	return removeCountingFiles(s.root)
}

func removeCountingFiles(dir string) (int, error) {
	count := 0
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			n, err := removeCountingFiles(full)
			count += n
			if err != nil {
				return count, err
			}
			continue
		}
		if strings.HasSuffix(e.Name(), ".json") || strings.HasSuffix(e.Name(), ".pdf") || isImageName(e.Name()) {
			count++
		}
		if err := os.Remove(full); err != nil {
			return count, fmt.Errorf("remove %s: %w", full, err)
		}
	}
	return count, os.Remove(dir)
}

func isImageName(name string) bool {
	ext := extOf(name)
	switch ext {
	case "png", "jpg", "jpeg", "gif", "webp":
		return true
	default:
		return false
	}
}
