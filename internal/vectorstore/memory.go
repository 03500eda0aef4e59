package vectorstore

import (
	"context"
	"sync"

	"docforge/internal/docmodel"
)

// memoryStore is an in-process VectorStore for tests and offline/dev runs,
// grounded on intelligencedev-manifold's
// internal/persistence/databases/memory_vector.go.
type memoryStore struct {
	mu         sync.RWMutex
	points     map[string]point
	dimensions int
}

type point struct {
	vector   []float32
	metadata map[string]string
}

// NewMemory builds an in-process VectorStore.
func NewMemory(dimensions int) VectorStore {
	return &memoryStore{points: make(map[string]point), dimensions: dimensions}
}

func (m *memoryStore) Upload(_ context.Context, chunkDocs []docmodel.ChunkDocument, includeEmbeddings bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunkDocs {
		p := point{metadata: chunkMetadata(c)}
		if includeEmbeddings {
			p.vector = append([]float32(nil), c.Embedding...)
		}
		m.points[c.ChunkID] = p
	}
	return len(chunkDocs), nil
}

func (m *memoryStore) DeleteByFilename(_ context.Context, filename string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, p := range m.points {
		if p.metadata[FieldSourceFile] == filename {
			delete(m.points, id)
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) DeleteAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := len(m.points)
	m.points = make(map[string]point)
	return count, nil
}

func (m *memoryStore) GetDimensions() int { return m.dimensions }

func (m *memoryStore) Ping(context.Context) error { return nil }

// Count reports the current number of stored points, used by tests that
// assert the full-replace and idempotent-upsert invariants (spec.md §8).
func (m *memoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

// CountByFilename reports the number of stored points for one sourcefile.
func (m *memoryStore) CountByFilename(filename string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.points {
		if p.metadata[FieldSourceFile] == filename {
			n++
		}
	}
	return n
}
