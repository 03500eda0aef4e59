package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"docforge/internal/docmodel"
)

// postgresStore implements VectorStore over pgvector, grounded on
// intelligencedev-manifold's
// internal/persistence/databases/postgres_vector.go. Used when the
// deployment has no Qdrant instance but already runs Postgres.
type postgresStore struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int
}

// NewPostgres ensures the pgvector extension and backing table exist and
// returns a VectorStore over them.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, table string, dimensions int) (VectorStore, error) {
	if table == "" {
		table = "docforge_chunks"
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("postgres vector store requires dimensions > 0")
	}
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return nil, fmt.Errorf("create vector extension: %w", err)
	}
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id TEXT PRIMARY KEY,
  vec vector(%d),
  metadata JSONB NOT NULL DEFAULT '{}'::jsonb
);`, table, dimensions)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	return &postgresStore{pool: pool, table: table, dimensions: dimensions}, nil
}

func (p *postgresStore) Upload(ctx context.Context, chunkDocs []docmodel.ChunkDocument, includeEmbeddings bool) (int, error) {
	written := 0
	for _, c := range chunkDocs {
		md := chunkMetadata(c)
		mdJSON, err := json.Marshal(md)
		if err != nil {
			return written, fmt.Errorf("marshal metadata: %w", err)
		}
		var vecLit any
		if includeEmbeddings {
			vecLit = toVectorLiteral(c.Embedding)
		}
		query := fmt.Sprintf(`
INSERT INTO %s(id, vec, metadata) VALUES($1, $2::vector, $3::jsonb)
ON CONFLICT (id) DO UPDATE SET
  vec = COALESCE(EXCLUDED.vec, %s.vec),
  metadata = EXCLUDED.metadata
`, p.table, p.table)
		if _, err := p.pool.Exec(ctx, query, c.ChunkID, vecLit, mdJSON); err != nil {
			return written, fmt.Errorf("upsert chunk %s: %w", c.ChunkID, err)
		}
		written++
	}
	return written, nil
}

func (p *postgresStore) DeleteByFilename(ctx context.Context, filename string) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE metadata->>'%s' = $1`, p.table, FieldSourceFile)
	tag, err := p.pool.Exec(ctx, query, filename)
	if err != nil {
		return 0, fmt.Errorf("delete by filename: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *postgresStore) DeleteAll(ctx context.Context) (int, error) {
	var count int
	if err := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, p.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	if _, err := p.pool.Exec(ctx, fmt.Sprintf(`TRUNCATE TABLE %s`, p.table)); err != nil {
		return 0, fmt.Errorf("truncate table: %w", err)
	}
	return count, nil
}

func (p *postgresStore) GetDimensions() int { return p.dimensions }

func (p *postgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func toVectorLiteral(v []float32) string {
	if len(v) == 0 {
		return "[]"
	}
	b := strings.Builder{}
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(fmt.Sprintf("%g", x))
	}
	b.WriteByte(']')
	return b.String()
}
