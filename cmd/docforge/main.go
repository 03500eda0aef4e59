// Command docforge runs the document-ingestion pipeline: ADD/REMOVE/REMOVE_ALL
// over a configured input source, writing page/chunk artifacts and vector
// records. Flags and wiring are grounded on cmd/embedctl's stdlib-flag style
// (intelligencedev-manifold/cmd/embedctl/main.go): no cobra/viper, config.Load
// at the top, fatal on setup errors, a plain summary on stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	zlog "github.com/rs/zerolog/log"

	"docforge/internal/artifactstore"
	"docforge/internal/chunker"
	"docforge/internal/config"
	"docforge/internal/embedder"
	"docforge/internal/extractor"
	"docforge/internal/inputsource"
	"docforge/internal/mediadescribe"
	"docforge/internal/objectstore"
	"docforge/internal/obs"
	"docforge/internal/pagesplitter"
	"docforge/internal/pipeline"
	"docforge/internal/runner"
	"docforge/internal/tablerender"
	"docforge/internal/tokencount"
	"docforge/internal/vectorstore"
)

func main() {
	log.SetFlags(0)

	var (
		configPath   = flag.String("config", "", "path to an optional YAML config file")
		action       = flag.String("action", "", "add | remove | removeAll (overrides config/env)")
		workers      = flag.Int("workers", 0, "document fan-out concurrency (overrides config)")
		validateOnly = flag.Bool("validate-only", false, "probe collaborators and exit without ingesting")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *action != "" {
		cfg.Action = config.Action(*action)
	}
	if *workers > 0 {
		cfg.Concurrency.MaxWorkers = *workers
	}

	obs.InitLogger(cfg.LogPath, cfg.LogLevel)
	logger := zlog.Logger

	ctx := context.Background()

	artifacts, input, err := buildArtifactsAndInput(ctx, cfg)
	if err != nil {
		log.Fatalf("build artifact/input backends: %v", err)
	}
	constructRemoteURL := remoteURLConstructor(cfg)

	vectors, err := buildVectorStore(ctx, cfg)
	if err != nil {
		log.Fatalf("build vector store: %v", err)
	}

	embed := embedder.NewClient(cfg.Embedding)
	metrics := obs.NewOtelMetrics()

	runID := time.Now().UTC().Format("20060102T150405Z")

	build := func(_ context.Context, _ string) (*pipeline.Pipeline, error) {
		chunkCfg := chunkerConfig(cfg)
		if n := embed.GetMaxSeqLength(); n > 0 {
			chunkCfg.EmbeddingMaxTokens = n
		}
		return &pipeline.Pipeline{
			Artifacts:  artifacts,
			Vectors:    vectors,
			Extractors: extractor.NewRegistry(extractor.NewPlainText()),
			Describer:  mediadescribe.NewNoop(),
			Splitter:   pagesplitter.NewPDF(),
			Embed:      embed,
			Chunk:      chunker.New(chunkCfg, tokencount.ForModel(cfg.Embedding.Model), func(msg string) { logger.Warn().Msg(msg) }),
			TableMode:  tableMode(cfg.TableRender),

			Concurrency: cfg.Concurrency,

			CleanArtifacts:          true,
			RemoteArtifacts:         cfg.RemoteArtifacts,
			IntegratedVectorization: cfg.Mode == config.ModeAzureDI,
			OfflineFallback:         extractor.NewPlainText(),
			ConstructRemoteURL:      constructRemoteURL,

			Metrics: metrics,
			Logger:  logger,
		}, nil
	}

	r := &runner.Runner{
		Action:     cfg.Action,
		Input:      input,
		Build:      build,
		Vectors:    vectors,
		Artifacts:  artifacts,
		MaxWorkers: cfg.Concurrency.MaxWorkers,
		RunID:      runID,
		Logger:     logger,
	}

	if *validateOnly {
		runValidate(ctx, r, artifacts, embed, vectors, input)
		return
	}

	status, err := r.Run(ctx)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}
	printSummary(status)
	if status.Failed > 0 {
		os.Exit(1)
	}
}

func buildArtifactsAndInput(ctx context.Context, cfg config.Config) (artifactstore.ArtifactStore, inputsource.InputSource, error) {
	if !cfg.RemoteArtifacts {
		root := cfg.LocalArtifactRoot
		if root == "" {
			root = "./docforge-data"
		}
		inputRoot := cfg.InputPath
		if inputRoot == "" {
			inputRoot = root
		}
		return artifactstore.NewLocal(root), inputsource.NewLocal(inputRoot), nil
	}

	mainStore, err := objectstore.NewS3Container(ctx, cfg.S3, "main")
	if err != nil {
		return nil, nil, fmt.Errorf("construct main object store: %w", err)
	}
	pagesStore, err := objectstore.NewS3Container(ctx, cfg.S3, "pages")
	if err != nil {
		return nil, nil, fmt.Errorf("construct pages object store: %w", err)
	}
	citationsStore, err := objectstore.NewS3Container(ctx, cfg.S3, "citations")
	if err != nil {
		return nil, nil, fmt.Errorf("construct citations object store: %w", err)
	}
	artifacts := artifactstore.New(mainStore, pagesStore, citationsStore)

	inputStore, err := objectstore.NewS3Store(ctx, cfg.S3)
	if err != nil {
		return nil, nil, fmt.Errorf("construct input object store: %w", err)
	}
	input := inputsource.NewRemote(inputStore, cfg.S3.Prefix)

	return artifacts, input, nil
}

// remoteURLConstructor builds the pipeline's deterministic storage_url
// fallback from the citations container layout, mirroring WriteFullDocument's
// key scheme without performing an upload (spec.md §4.2 step 1). The
// pipeline only consults this when RemoteArtifacts is false, e.g. a local
// artifact store is in use but S3 settings are still present to describe
// where the document will eventually live.
func remoteURLConstructor(cfg config.Config) func(name string) (string, bool) {
	if cfg.S3.Bucket == "" {
		return nil
	}
	citationsCfg := cfg.S3
	if citationsCfg.Prefix == "" {
		citationsCfg.Prefix = "citations"
	} else {
		citationsCfg.Prefix = citationsCfg.Prefix + "/citations"
	}
	return func(name string) (string, bool) {
		return objectstore.ConstructURL(citationsCfg, name)
	}
}

func buildVectorStore(ctx context.Context, cfg config.Config) (vectorstore.VectorStore, error) {
	switch {
	case cfg.Qdrant.Host != "":
		return vectorstore.NewQdrant(ctx, cfg.Qdrant)
	case cfg.Postgres.DSN != "":
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return vectorstore.NewPostgres(ctx, pool, cfg.Postgres.Table, cfg.Qdrant.Dimensions)
	default:
		return vectorstore.NewMemory(cfg.Qdrant.Dimensions), nil
	}
}

func chunkerConfig(cfg config.Config) chunker.Config {
	return chunker.Config{
		MaxTokens:          cfg.Chunker.MaxTokens,
		MaxSectionTokens:   cfg.Chunker.MaxSectionTokens,
		MaxChars:           cfg.Chunker.MaxChars,
		OverlapPercent:     int(cfg.Chunker.OverlapPercent),
		CrossPageOverlap:   cfg.Chunker.CrossPageOverlap,
		DisableCharLimit:   cfg.Chunker.DisableCharLimit,
		EmbeddingMaxTokens: cfg.Chunker.EmbeddingMaxTokens,
	}
}

func tableMode(t config.TableRender) tablerender.Mode {
	switch t {
	case config.TableRenderPlain:
		return tablerender.Plain
	case config.TableRenderHTML:
		return tablerender.HTML
	default:
		return tablerender.Markdown
	}
}

func runValidate(ctx context.Context, r *runner.Runner, artifacts artifactstore.ArtifactStore, embed embedder.Embedder, vectors vectorstore.VectorStore, input inputsource.InputSource) {
	probes := []runner.Probe{
		{
			Name:   "embedding provider reachable",
			Check:  embed.Ping,
			Remedy: "check EMBED_BASE_URL and that the embedding service is running",
		},
		{
			Name: "artifact store ready",
			Check: func(ctx context.Context) error {
				return artifacts.EnsureReady(ctx)
			},
			Remedy: "check S3 credentials/bucket or the local artifact root path",
		},
		{
			Name:   "vector store reachable",
			Check:  vectors.Ping,
			Remedy: "check Qdrant/Postgres connection settings",
		},
		{
			Name:   "input source reachable",
			Check:  input.Ping,
			Remedy: "check the configured input path or S3 bucket/prefix",
		},
	}
	results := r.Validate(ctx, probes)

	allOK := true
	for _, res := range results {
		status := "OK"
		if !res.OK {
			status = "FAILED"
			allOK = false
		}
		fmt.Printf("[%s] %s (%.3fs)\n", status, res.Name, res.Elapsed)
		if !res.OK {
			fmt.Printf("  detail: %s\n", res.Detail)
			fmt.Printf("  remedy: %s\n", res.Remedy)
		}
	}
	if !allOK {
		os.Exit(1)
	}
}

func printSummary(status *runner.PipelineStatus) {
	fmt.Printf("run %s: %d total, %d succeeded, %d failed, %d chunks indexed (%.1f%% success)\n",
		status.RunID, status.Total, status.Succeeded, status.Failed, status.ChunksIndexed, status.SuccessRate*100)
	for _, res := range status.Results {
		if !res.Success {
			fmt.Printf("  FAILED %s: %s\n", res.Name, res.Error)
		}
	}
}
