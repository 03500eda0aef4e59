package config

import "testing"

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)

	if cfg.Mode != ModeHybrid {
		t.Fatalf("Mode = %q, want %q", cfg.Mode, ModeHybrid)
	}
	if cfg.TableRender != TableRenderMarkdown {
		t.Fatalf("TableRender = %q, want %q", cfg.TableRender, TableRenderMarkdown)
	}
	if cfg.Action != ActionAdd {
		t.Fatalf("Action = %q, want %q", cfg.Action, ActionAdd)
	}
	if cfg.Concurrency.MaxWorkers != 4 {
		t.Fatalf("MaxWorkers = %d, want 4", cfg.Concurrency.MaxWorkers)
	}
	if cfg.Concurrency.MaxImageConcurrency != 8 {
		t.Fatalf("MaxImageConcurrency = %d, want 8", cfg.Concurrency.MaxImageConcurrency)
	}
	if cfg.Chunker.MaxTokens != 500 || cfg.Chunker.MaxSectionTokens != 750 {
		t.Fatalf("unexpected chunker defaults: %+v", cfg.Chunker)
	}
}

func TestApplyDefaultsRespectsExplicitValues(t *testing.T) {
	cfg := Config{Mode: ModeAzureDI, Concurrency: ConcurrencyConfig{MaxWorkers: 2}}
	applyDefaults(&cfg)

	if cfg.Mode != ModeAzureDI {
		t.Fatalf("Mode was overwritten: %q", cfg.Mode)
	}
	if cfg.Concurrency.MaxWorkers != 2 {
		t.Fatalf("MaxWorkers was overwritten: %d", cfg.Concurrency.MaxWorkers)
	}
}

func TestLoadYAMLMissingFile(t *testing.T) {
	if _, err := LoadYAML("/nonexistent/path/config.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
