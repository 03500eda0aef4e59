// Package pipeline implements C10, the per-document pipeline: orchestrating
// C3..C9 for one document with failure isolation (spec.md §4.2).
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"docforge/internal/artifactstore"
	"docforge/internal/chunker"
	"docforge/internal/config"
	"docforge/internal/docmodel"
	"docforge/internal/embedder"
	"docforge/internal/extractor"
	"docforge/internal/hyperlink"
	"docforge/internal/ingest/pathutil"
	"docforge/internal/mediadescribe"
	"docforge/internal/obs"
	"docforge/internal/pagesplitter"
	"docforge/internal/tablerender"
	"docforge/internal/vectorstore"

	"github.com/rs/zerolog"
)

// IngestionResult is C10's public return value.
type IngestionResult struct {
	Name          string
	Success       bool
	ChunksIndexed int
	Error         string
	Seconds       float64
}

// Pipeline wires one document's worth of collaborators together.
type Pipeline struct {
	Artifacts  artifactstore.ArtifactStore
	Vectors    vectorstore.VectorStore
	Extractors *extractor.Registry
	Describer  mediadescribe.MediaDescriber
	Splitter   pagesplitter.PageSplitter
	Embed      embedder.Embedder
	Chunk      *chunker.Chunker

	TableMode   tablerender.Mode
	Concurrency config.ConcurrencyConfig

	CleanArtifacts          bool
	RemoteArtifacts         bool
	IntegratedVectorization bool
	OfflineFallback         extractor.Extractor

	// ConstructRemoteURL builds a deterministic storage_url for name from
	// configuration alone, without performing an upload. Used by
	// uploadFullDocument when RemoteArtifacts is false but a remote bucket
	// is still configured for it to land in eventually (spec.md §4.2 step 1).
	// May be nil.
	ConstructRemoteURL func(name string) (url string, ok bool)

	Metrics obs.Metrics
	Logger  zerolog.Logger
}

// Process implements C10's public operation. It never returns an error:
// every failure is captured into the result per spec.md §4.2.
func (p *Pipeline) Process(ctx context.Context, name string, data []byte, originURL string) IngestionResult {
	start := time.Now()
	log := p.Logger
	result := IngestionResult{Name: name}

	chunkDocs, err := p.run(ctx, name, data, originURL, log)
	result.Seconds = time.Since(start).Seconds()
	if err != nil {
		result.Error = err.Error()
		log.Error().Err(err).Str("document", name).Msg("ingestion failed")
		p.Metrics.IncCounter(obs.MetricDocsTotal, map[string]string{"status": "failed"})
		return result
	}

	indexed, uploadErr := p.Vectors.Upload(ctx, chunkDocs, !p.IntegratedVectorization)
	if uploadErr != nil {
		result.Error = uploadErr.Error()
		log.Error().Err(uploadErr).Str("document", name).Msg("vector upload failed")
		p.Metrics.IncCounter(obs.MetricDocsTotal, map[string]string{"status": "failed"})
		return result
	}
	if indexed < len(chunkDocs) {
		log.Warn().Int("attempted", len(chunkDocs)).Int("indexed", indexed).Str("document", name).Msg("partial upload failure")
	}

	result.Success = true
	result.ChunksIndexed = indexed
	p.Metrics.IncCounter(obs.MetricDocsTotal, map[string]string{"status": "ok"})
	for i := 0; i < indexed; i++ {
		p.Metrics.IncCounter(obs.MetricChunksTotal, nil)
	}
	p.Metrics.ObserveHistogram(obs.MetricStageDurationMS, result.Seconds*1000, map[string]string{"stage": "total"})
	return result
}

// run implements steps 0-9, returning the chunk documents ready for step 10
// (upload), which the caller performs so a failed upload is still reported
// against an otherwise-successful extraction/chunk pass.
func (p *Pipeline) run(ctx context.Context, name string, data []byte, originURL string, log zerolog.Logger) ([]docmodel.ChunkDocument, error) {
	// Step 0 — deletion (best-effort, parallel, never aborts the run).
	p.deleteExisting(ctx, name, log)

	// Step 1 — full-document upload. When remote artifacts are configured,
	// storage_url must never degrade to a local file:// URI (spec.md §3
	// invariant #2 / §6.2), so a failed upload aborts the run.
	docURL, err := p.uploadFullDocument(ctx, name, data, originURL, log)
	if err != nil {
		return nil, fmt.Errorf("upload full document for %s: %w", name, err)
	}

	// Step 2 — paginated rendering.
	pagePDFURLs := p.renderPages(ctx, name, data, log)

	// Step 3 — extraction.
	pages, err := p.extract(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}

	// Step 4 — figure processing (bounded concurrency).
	p.processFigures(ctx, name, pages, log)

	// Step 5 — table rendering.
	p.renderTables(pages)

	// Weave hyperlinks into page text before chunking (data-flow order per
	// spec.md §2: "hyperlinks are woven into page text -> pages are chunked").
	for i := range pages {
		pages[i].Text = hyperlink.Weave(pages[i].Text, pages[i].Hyperlinks)
	}

	// Step 6 — per-page artifact write.
	p.writePageArtifacts(ctx, name, pages, log)

	// Step 7 — manifest.
	p.writeManifest(ctx, name, docURL, len(pages), log)

	// Step 8 — chunking.
	textChunks := p.Chunk.Chunk(pages)
	chunkDocs := p.buildChunkDocuments(name, docURL, originURL, textChunks, pagePDFURLs)
	p.writeChunkArtifacts(ctx, name, chunkDocs, log)

	// Step 9 — embedding.
	if err := p.embedChunks(ctx, chunkDocs); err != nil {
		return nil, fmt.Errorf("embed chunks for %s: %w", name, err)
	}

	return chunkDocs, nil
}

func (p *Pipeline) deleteExisting(ctx context.Context, name string, log zerolog.Logger) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := p.Vectors.DeleteByFilename(ctx, name); err != nil {
			log.Warn().Err(err).Str("document", name).Msg("delete-by-filename failed")
		}
	}()
	if p.CleanArtifacts && p.RemoteArtifacts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Artifacts.DeleteArtifacts(ctx, name); err != nil {
				log.Warn().Err(err).Str("document", name).Msg("delete-artifacts failed")
			}
		}()
	}
	wg.Wait()
}

// uploadFullDocument resolves the storage_url for the full original document
// per spec.md §4.2 step 1, grounded on ingestor/pipeline.py's
// upload_full_document: reuse a remote origin, else upload when remote
// artifacts are configured (a failure here is fatal, not a fallback), else
// construct a deterministic URL from configuration, else fall back to a
// local file:// URI as a last resort.
func (p *Pipeline) uploadFullDocument(ctx context.Context, name string, data []byte, originURL string, log zerolog.Logger) (string, error) {
	if strings.HasPrefix(originURL, "http://") || strings.HasPrefix(originURL, "https://") {
		return originURL, nil
	}
	if p.RemoteArtifacts {
		url, err := p.Artifacts.WriteFullDocument(ctx, name, data)
		if err != nil {
			return "", fmt.Errorf("upload to artifact store: %w", err)
		}
		return url, nil
	}
	if p.ConstructRemoteURL != nil {
		if url, ok := p.ConstructRemoteURL(name); ok {
			return url, nil
		}
	}
	log.Warn().Str("document", name).Msg("full-document URL fell back to a local URI")
	return p.Artifacts.WriteFullDocument(ctx, name, data)
}

func (p *Pipeline) renderPages(ctx context.Context, name string, data []byte, log zerolog.Logger) map[int]string {
	urls := map[int]string{}
	if p.Splitter == nil || !p.Splitter.Supports(data) {
		return urls
	}
	renderings, err := p.Splitter.Split(ctx, data)
	if err != nil {
		log.Warn().Err(err).Str("document", name).Msg("page rendering failed")
		return urls
	}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for idx, rendering := range renderings {
		wg.Add(1)
		go func(idx int, rendering []byte) {
			defer wg.Done()
			url, err := p.Artifacts.WritePageRendering(ctx, name, idx+1, rendering)
			if err != nil {
				log.Warn().Err(err).Str("document", name).Int("page", idx+1).Msg("page rendering upload failed")
				return
			}
			mu.Lock()
			urls[idx] = url
			mu.Unlock()
		}(idx, rendering)
	}
	wg.Wait()
	return urls
}

func (p *Pipeline) extract(ctx context.Context, name string, data []byte) ([]docmodel.ExtractedPage, error) {
	pages, err := p.Extractors.Extract(ctx, name, data)
	if err != nil && p.OfflineFallback != nil && p.OfflineFallback.Supports(name) {
		return p.OfflineFallback.Extract(ctx, name, data)
	}
	return pages, err
}

func (p *Pipeline) processFigures(ctx context.Context, name string, pages []docmodel.ExtractedPage, log zerolog.Logger) {
	maxConcurrency := p.Concurrency.MaxImageConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	sem := semaphore.NewWeighted(int64(maxConcurrency))
	var wg sync.WaitGroup

	for pi := range pages {
		for fi := range pages[pi].Figures {
			fig := &pages[pi].Figures[fi]
			wg.Add(1)
			go func(pageIdx1Based, figIdxOnPage int, fig *docmodel.ExtractedImage) {
				defer wg.Done()
				if err := sem.Acquire(ctx, 1); err != nil {
					return
				}
				defer sem.Release(1)

				desc, err := p.Describer.Describe(ctx, fig.ImageBytes, fig.MimeType, fig.Title)
				if err != nil {
					log.Warn().Err(err).Str("document", name).Str("figure", fig.FigureID).Msg("figure description failed")
				} else {
					fig.Description = desc
				}

				url, err := p.Artifacts.WriteImage(ctx, name, pageIdx1Based, fig.Filename, fig.ImageBytes, figIdxOnPage)
				if err != nil {
					log.Warn().Err(err).Str("document", name).Str("figure", fig.FigureID).Msg("figure upload failed")
					return
				}
				fig.URL = url
			}(pi+1, fi+1, fig)
		}
	}
	wg.Wait()
}

func (p *Pipeline) renderTables(pages []docmodel.ExtractedPage) {
	for pi := range pages {
		for ti := range pages[pi].Tables {
			pages[pi].Tables[ti].RenderedText = tablerender.Render(pages[pi].Tables[ti], p.TableMode)
		}
	}
}

func (p *Pipeline) writePageArtifacts(ctx context.Context, name string, pages []docmodel.ExtractedPage, log zerolog.Logger) {
	var wg sync.WaitGroup
	for pi := range pages {
		wg.Add(1)
		go func(pageIdx1Based int, page docmodel.ExtractedPage) {
			defer wg.Done()
			summary := pageArtifactSummary(page)
			if _, err := p.Artifacts.WritePageJSON(ctx, name, pageIdx1Based, summary); err != nil {
				log.Warn().Err(err).Str("document", name).Int("page", pageIdx1Based).Msg("page artifact write failed")
			}
		}(pi+1, pages[pi])
	}
	wg.Wait()
}

type pageArtifact struct {
	PageNum int      `json:"page_num"`
	Text    string   `json:"text"`
	Tables  []string `json:"tables,omitempty"`
	Figures []string `json:"figures,omitempty"`
}

func pageArtifactSummary(page docmodel.ExtractedPage) pageArtifact {
	out := pageArtifact{PageNum: page.PageNum, Text: page.Text}
	for _, t := range page.Tables {
		out.Tables = append(out.Tables, t.TableID)
	}
	for _, f := range page.Figures {
		out.Figures = append(out.Figures, f.FigureID)
	}
	return out
}

type manifest struct {
	Filename    string    `json:"filename"`
	SourceURL   string    `json:"sourceURL"`
	PageCount   int       `json:"pageCount"`
	ExtractedAt time.Time `json:"extractedAt"`
}

func (p *Pipeline) writeManifest(ctx context.Context, name, sourceURL string, pageCount int, log zerolog.Logger) {
	m := manifest{Filename: name, SourceURL: sourceURL, PageCount: pageCount, ExtractedAt: time.Now().UTC()}
	if _, err := p.Artifacts.WriteManifest(ctx, name, m); err != nil {
		log.Warn().Err(err).Str("document", name).Msg("manifest write failed")
	}
}

// buildChunkDocuments stamps each chunk with its deterministic chunk_id and
// resolves sourcepage per spec.md §4.2 step 8.
func (p *Pipeline) buildChunkDocuments(name, docURL, originURL string, chunks []docmodel.TextChunk, pagePDFURLs map[int]string) []docmodel.ChunkDocument {
	meta := docmodel.DocumentMeta{SourceFile: name, StorageURL: docURL, IngestedAt: time.Now().UTC()}
	stemSlug := pathutil.Slugify(pathutil.Stem(name))

	out := make([]docmodel.ChunkDocument, 0, len(chunks))
	for _, c := range chunks {
		chunkID := fmt.Sprintf("%s_page%d_chunk%d", stemSlug, c.PageNum+1, c.ChunkIndexOnPage+1)
		sourcepage, pageBlobURL := resolveSourcePage(name, c.PageNum, pagePDFURLs)
		out = append(out, docmodel.ChunkDocument{
			Document:         meta,
			PageNum:          c.PageNum + 1,
			SourcePage:       sourcepage,
			PageBlobURL:      pageBlobURL,
			ChunkID:          chunkID,
			ChunkIndexOnPage: c.ChunkIndexOnPage,
			Text:             c.Text,
			TokenCount:       c.TokenCount,
			Title:            c.PageHeader,
			Tables:           c.Tables,
			Figures:          c.Figures,
		})
	}
	return out
}

func resolveSourcePage(name string, pageNum0Based int, pagePDFURLs map[int]string) (sourcepage, pageBlobURL string) {
	if url, ok := pagePDFURLs[pageNum0Based]; ok && url != "" {
		return fmt.Sprintf("%s#page=%d", pathutil.LastTwoPathParts(url), pageNum0Based+1), url
	}
	base := pathutil.Basename(name)
	if isPresentation(name) {
		return fmt.Sprintf("%s#slide=%d", base, pageNum0Based+1), ""
	}
	return fmt.Sprintf("%s#page=%d", base, pageNum0Based+1), ""
}

func isPresentation(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".ppt") || strings.HasSuffix(lower, ".pptx")
}

func (p *Pipeline) writeChunkArtifacts(ctx context.Context, name string, chunkDocs []docmodel.ChunkDocument, log zerolog.Logger) {
	if p.RemoteArtifacts {
		return // remote mode: the vector store record is the source of truth.
	}
	var wg sync.WaitGroup
	for i := range chunkDocs {
		wg.Add(1)
		go func(c *docmodel.ChunkDocument) {
			defer wg.Done()
			url, err := p.Artifacts.WriteChunkJSON(ctx, name, c.PageNum, c.ChunkIndexOnPage+1, c)
			if err != nil {
				log.Warn().Err(err).Str("document", name).Str("chunk_id", c.ChunkID).Msg("chunk artifact write failed")
				return
			}
			c.Artifact.URL = url
		}(&chunkDocs[i])
	}
	wg.Wait()
}

func (p *Pipeline) embedChunks(ctx context.Context, chunkDocs []docmodel.ChunkDocument) error {
	if p.IntegratedVectorization || len(chunkDocs) == 0 {
		return nil
	}
	texts := make([]string, len(chunkDocs))
	for i, c := range chunkDocs {
		texts[i] = c.Text
	}
	vectors, err := p.Embed.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunkDocs) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunkDocs))
	}
	for i := range chunkDocs {
		chunkDocs[i].Embedding = vectors[i]
	}
	return nil
}
