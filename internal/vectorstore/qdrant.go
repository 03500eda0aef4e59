package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"docforge/internal/config"
	"docforge/internal/docmodel"
)

// qdrantStore implements VectorStore over Qdrant's gRPC API (default port
// 6334), grounded on intelligencedev-manifold's
// internal/persistence/databases/qdrant_vector.go. Qdrant only accepts
// UUIDs or positive integers as point IDs, so chunk_id is mapped to a
// deterministic UUID and the original id is preserved in the payload.
type qdrantStore struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

// NewQdrant connects to Qdrant and ensures the configured collection exists.
func NewQdrant(ctx context.Context, cfg config.QdrantConfig) (VectorStore, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant requires dimensions > 0")
	}
	qcfg := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
		APIKey: cfg.APIKey,
	}
	client, err := qdrant.NewClient(qcfg)
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	q := &qdrantStore{client: client, collection: cfg.Collection, dimension: cfg.Dimensions}
	if err := q.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure collection: %w", err)
	}
	return q, nil
}

func (q *qdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("check collection exists: %w", err)
	}
	if exists {
		return nil
	}
	return q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func pointID(chunkID string) *qdrant.PointId {
	uuidStr := chunkID
	if _, err := uuid.Parse(chunkID); err != nil {
		uuidStr = uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
	}
	return qdrant.NewIDUUID(uuidStr)
}

func (q *qdrantStore) Upload(ctx context.Context, chunkDocs []docmodel.ChunkDocument, includeEmbeddings bool) (int, error) {
	if len(chunkDocs) == 0 {
		return 0, nil
	}
	points := make([]*qdrant.PointStruct, 0, len(chunkDocs))
	for _, c := range chunkDocs {
		md := chunkMetadata(c)
		if _, err := uuid.Parse(c.ChunkID); err != nil {
			md[FieldOriginalID] = c.ChunkID
		}
		metadataAny := make(map[string]any, len(md))
		for k, v := range md {
			metadataAny[k] = v
		}
		point := &qdrant.PointStruct{
			Id:      pointID(c.ChunkID),
			Payload: qdrant.NewValueMap(metadataAny),
		}
		if includeEmbeddings {
			vec := make([]float32, len(c.Embedding))
			copy(vec, c.Embedding)
			point.Vectors = qdrant.NewVectorsDense(vec)
		}
		points = append(points, point)
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant upsert: %w", err)
	}
	return len(points), nil
}

func (q *qdrantStore) DeleteByFilename(ctx context.Context, filename string) (int, error) {
	count, err := q.countByFilter(ctx, FieldSourceFile, filename)
	if err != nil {
		return 0, err
	}
	_, err = q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(FieldSourceFile, filename)},
		}),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant delete by filename: %w", err)
	}
	return count, nil
}

func (q *qdrantStore) DeleteAll(ctx context.Context) (int, error) {
	count, err := q.countByFilter(ctx, "", "")
	if err != nil {
		return 0, err
	}
	if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
		return 0, fmt.Errorf("qdrant delete collection: %w", err)
	}
	if err := q.ensureCollection(ctx); err != nil {
		return 0, fmt.Errorf("recreate collection: %w", err)
	}
	return count, nil
}

func (q *qdrantStore) countByFilter(ctx context.Context, field, value string) (int, error) {
	req := &qdrant.CountPoints{CollectionName: q.collection}
	if field != "" {
		req.Filter = &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewMatch(field, value)}}
	}
	resp, err := q.client.Count(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp), nil
}

func (q *qdrantStore) GetDimensions() int { return q.dimension }

// Ping reuses CollectionExists, already in use by ensureCollection, rather
// than reach for a dedicated health-check RPC.
func (q *qdrantStore) Ping(ctx context.Context) error {
	_, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("qdrant ping: %w", err)
	}
	return nil
}
