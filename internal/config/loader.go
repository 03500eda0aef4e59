package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads the YAML tree at configPath when the path is non-empty and the
// file exists, then overlays environment variables (optionally via a .env
// file) on top of it, so a set variable wins over the YAML value. Mirrors
// intelligencedev-manifold/internal/config/loader.go's Overload-then-env
// pattern, pared down to this repo's surface.
func Load(configPath string) (Config, error) {
	_ = godotenv.Overload()

	cfg := Config{}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			loaded, err := LoadYAML(configPath)
			if err != nil {
				return Config{}, fmt.Errorf("load yaml config: %w", err)
			}
			cfg = *loaded
		}
	}

	if v := strings.TrimSpace(os.Getenv("DOCFORGE_MODE")); v != "" {
		cfg.Mode = Mode(v)
	}
	if v := strings.TrimSpace(os.Getenv("DOCFORGE_TABLE_RENDER")); v != "" {
		cfg.TableRender = TableRender(v)
	}
	if v := strings.TrimSpace(os.Getenv("DOCFORGE_ACTION")); v != "" {
		cfg.Action = Action(v)
	}
	cfg.LogLevel = firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), cfg.LogLevel)
	cfg.LogPath = firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_PATH")), cfg.LogPath)
	cfg.InputPath = firstNonEmpty(strings.TrimSpace(os.Getenv("DOCFORGE_INPUT_PATH")), cfg.InputPath)
	cfg.LocalArtifactRoot = firstNonEmpty(strings.TrimSpace(os.Getenv("DOCFORGE_LOCAL_ARTIFACT_ROOT")), cfg.LocalArtifactRoot)

	cfg.S3.Endpoint = firstNonEmpty(strings.TrimSpace(os.Getenv("S3_ENDPOINT")), cfg.S3.Endpoint)
	cfg.S3.Region = firstNonEmpty(strings.TrimSpace(os.Getenv("S3_REGION")), cfg.S3.Region)
	cfg.S3.Bucket = firstNonEmpty(strings.TrimSpace(os.Getenv("S3_BUCKET")), cfg.S3.Bucket)
	cfg.S3.Prefix = firstNonEmpty(strings.TrimSpace(os.Getenv("S3_PREFIX")), cfg.S3.Prefix)
	cfg.S3.AccessKey = firstNonEmpty(strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")), cfg.S3.AccessKey)
	cfg.S3.SecretKey = firstNonEmpty(strings.TrimSpace(os.Getenv("S3_SECRET_KEY")), cfg.S3.SecretKey)
	if v := strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")); v != "" {
		cfg.S3.UsePathStyle = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv("S3_TLS_INSECURE")); v != "" {
		cfg.S3.TLSInsecureSkipVerify = parseBool(v)
	}
	cfg.S3.SSE.Mode = firstNonEmpty(strings.TrimSpace(os.Getenv("S3_SSE_MODE")), cfg.S3.SSE.Mode)
	cfg.S3.SSE.KMSKeyID = firstNonEmpty(strings.TrimSpace(os.Getenv("S3_SSE_KMS_KEY_ID")), cfg.S3.SSE.KMSKeyID)
	if v := strings.TrimSpace(os.Getenv("DOCFORGE_REMOTE_ARTIFACTS")); v != "" {
		cfg.RemoteArtifacts = parseBool(v)
	}

	cfg.Qdrant.Host = firstNonEmpty(strings.TrimSpace(os.Getenv("QDRANT_HOST")), cfg.Qdrant.Host)
	if v := strings.TrimSpace(os.Getenv("QDRANT_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Qdrant.Port = n
		}
	}
	cfg.Qdrant.APIKey = firstNonEmpty(strings.TrimSpace(os.Getenv("QDRANT_API_KEY")), cfg.Qdrant.APIKey)
	cfg.Qdrant.Collection = firstNonEmpty(strings.TrimSpace(os.Getenv("QDRANT_COLLECTION")), cfg.Qdrant.Collection)
	if v := strings.TrimSpace(os.Getenv("QDRANT_USE_TLS")); v != "" {
		cfg.Qdrant.UseTLS = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv("QDRANT_DIMENSIONS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Qdrant.Dimensions = n
		}
	}

	cfg.Postgres.DSN = firstNonEmpty(strings.TrimSpace(os.Getenv("POSTGRES_DSN")), cfg.Postgres.DSN)
	cfg.Postgres.Table = firstNonEmpty(strings.TrimSpace(os.Getenv("POSTGRES_VECTOR_TABLE")), cfg.Postgres.Table)

	cfg.Embedding.BaseURL = firstNonEmpty(strings.TrimSpace(os.Getenv("EMBED_BASE_URL")), cfg.Embedding.BaseURL)
	cfg.Embedding.Model = firstNonEmpty(strings.TrimSpace(os.Getenv("EMBED_MODEL")), cfg.Embedding.Model)
	cfg.Embedding.APIKey = firstNonEmpty(strings.TrimSpace(os.Getenv("EMBED_API_KEY")), cfg.Embedding.APIKey)
	cfg.Embedding.Path = firstNonEmpty(strings.TrimSpace(os.Getenv("EMBED_PATH")), cfg.Embedding.Path)
	if v := strings.TrimSpace(os.Getenv("EMBED_MAX_SEQ_LENGTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.MaxSeqLength = n
		}
	}

	applyDefaults(&cfg)

	if cfg.RemoteArtifacts && cfg.S3.Bucket == "" {
		return Config{}, fmt.Errorf("S3_BUCKET is required when remote artifacts are enabled")
	}
	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}
