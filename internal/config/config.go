// Package config loads docforge's runtime configuration: environment
// variables (via godotenv) for secrets and simple scalars, plus an optional
// YAML document for the parts of configuration that are more naturally a
// tree (chunker limits, concurrency tiers, per-provider settings).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects the extraction provider combination (spec.md §9's "dynamically
// constructed config" redesign flag, frozen as an enum).
type Mode string

const (
	ModeAzureDI    Mode = "azure_di"
	ModeMarkItDown Mode = "markitdown"
	ModeHybrid     Mode = "hybrid"
)

// TableRender selects how ExtractedTable cells are rendered into page text.
type TableRender string

const (
	TableRenderPlain    TableRender = "plain"
	TableRenderMarkdown TableRender = "markdown"
	TableRenderHTML     TableRender = "html"
)

// Action selects the runner's top-level dispatch.
type Action string

const (
	ActionAdd       Action = "add"
	ActionRemove    Action = "remove"
	ActionRemoveAll Action = "removeAll"
)

// S3Config configures an S3 / S3-compatible (MinIO) object store backend.
type S3Config struct {
	Endpoint              string      `yaml:"endpoint"`
	Region                string      `yaml:"region"`
	Bucket                string      `yaml:"bucket"`
	Prefix                string      `yaml:"prefix"`
	AccessKey             string      `yaml:"accessKey"`
	SecretKey             string      `yaml:"secretKey"`
	UsePathStyle          bool        `yaml:"usePathStyle"`
	TLSInsecureSkipVerify bool        `yaml:"tlsInsecureSkipVerify"`
	SSE                   S3SSEConfig `yaml:"sse"`
}

// S3SSEConfig configures server-side encryption for S3 puts/copies.
type S3SSEConfig struct {
	Mode     string `yaml:"mode"` // "", "sse-s3", "sse-kms"
	KMSKeyID string `yaml:"kmsKeyID"`
}

// QdrantConfig configures the primary vector store backend (C9).
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"apiKey"`
	UseTLS     bool   `yaml:"useTLS"`
	Collection string `yaml:"collection"`
	Dimensions int    `yaml:"dimensions"`
}

// PostgresConfig configures the alternate pgvector-backed vector store,
// used when integrated vectorization is disabled (spec.md §6.1).
type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// EmbeddingConfig configures the HTTP embedding provider (C8).
type EmbeddingConfig struct {
	BaseURL        string `yaml:"baseURL"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"apiKey"`
	Path           string `yaml:"path"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	MaxSeqLength   int    `yaml:"maxSeqLength"`
	BatchSize      int    `yaml:"batchSize"`
}

// ChunkerConfig mirrors internal/chunker.Config's tunables so they can be
// set from the config tree instead of hardcoded at call sites.
type ChunkerConfig struct {
	MaxTokens          int     `yaml:"maxTokens"`
	MaxSectionTokens   int     `yaml:"maxSectionTokens"`
	MaxChars           int     `yaml:"maxChars"`
	OverlapPercent     float64 `yaml:"overlapPercent"`
	CrossPageOverlap   bool    `yaml:"crossPageOverlap"`
	DisableCharLimit   bool    `yaml:"disableCharLimit"`
	EmbeddingMaxTokens int     `yaml:"embeddingMaxTokens"`
}

// ConcurrencyConfig holds the bounded-semaphore capacities named in spec.md
// §5's parallelism-tiers table.
type ConcurrencyConfig struct {
	MaxWorkers          int `yaml:"maxWorkers"`          // document fan-out, default 4
	MaxImageConcurrency int `yaml:"maxImageConcurrency"` // figure processing per document, default 8
	FigureExtraction    int `yaml:"figureExtraction"`    // within one extractor call, default 5
	ExtractorRequests   int `yaml:"extractorRequests"`   // across whole process, default 3
	EmbeddingRequests   int `yaml:"embeddingRequests"`   // across whole process, default 5
}

// Config is docforge's fully-resolved runtime configuration.
type Config struct {
	Mode        Mode        `yaml:"mode"`
	TableRender TableRender `yaml:"tableRender"`
	Action      Action      `yaml:"action"`

	LogLevel string `yaml:"logLevel"`
	LogPath  string `yaml:"logPath"`

	LocalArtifactRoot string `yaml:"localArtifactRoot"` // dev/offline artifact mode
	RemoteArtifacts   bool   `yaml:"remoteArtifacts"`

	InputPath string `yaml:"inputPath"`

	S3        S3Config        `yaml:"s3"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// LoadYAML reads a YAML configuration tree from filename, applying defaults
// to any zero-valued field that is awkward to express as a YAML default.
// Mirrors intelligencedev-manifold/internal/config/config.go's LoadConfig.
func LoadYAML(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = ModeHybrid
	}
	if cfg.TableRender == "" {
		cfg.TableRender = TableRenderMarkdown
	}
	if cfg.Action == "" {
		cfg.Action = ActionAdd
	}
	if cfg.Concurrency.MaxWorkers <= 0 {
		cfg.Concurrency.MaxWorkers = 4
	}
	if cfg.Concurrency.MaxImageConcurrency <= 0 {
		cfg.Concurrency.MaxImageConcurrency = 8
	}
	if cfg.Concurrency.FigureExtraction <= 0 {
		cfg.Concurrency.FigureExtraction = 5
	}
	if cfg.Concurrency.ExtractorRequests <= 0 {
		cfg.Concurrency.ExtractorRequests = 3
	}
	if cfg.Concurrency.EmbeddingRequests <= 0 {
		cfg.Concurrency.EmbeddingRequests = 5
	}
	if cfg.Chunker.MaxTokens <= 0 {
		cfg.Chunker.MaxTokens = 500
	}
	if cfg.Chunker.MaxSectionTokens <= 0 {
		cfg.Chunker.MaxSectionTokens = 750
	}
	if cfg.Chunker.MaxChars <= 0 {
		cfg.Chunker.MaxChars = 3000
	}
	if cfg.Chunker.OverlapPercent == 0 {
		cfg.Chunker.OverlapPercent = 10
	}
	if cfg.Embedding.BatchSize <= 0 {
		cfg.Embedding.BatchSize = 16
	}
	if cfg.Embedding.TimeoutSeconds <= 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "docforge"
	}
}
