// Package runner implements C11, the pipeline runner: ADD/REMOVE/REMOVE_ALL
// dispatch, bounded fan-out over documents, status aggregation, and the
// optional pre-flight validate() probe.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"docforge/internal/artifactstore"
	"docforge/internal/config"
	"docforge/internal/inputsource"
	"docforge/internal/pipeline"
	"docforge/internal/vectorstore"

	"github.com/rs/zerolog"
)

// PipelineStatus is the runner's summary of one ADD run, written as the
// status-manifest artifact (spec.md §4.3).
type PipelineStatus struct {
	RunID           string                      `json:"run_id"`
	StartedAt       time.Time                   `json:"started_at"`
	FinishedAt      time.Time                   `json:"finished_at"`
	Total           int                         `json:"total"`
	Succeeded       int                         `json:"succeeded"`
	Failed          int                         `json:"failed"`
	ChunksIndexed   int                         `json:"chunks_indexed"`
	SuccessRate     float64                     `json:"success_rate"`
	Results         []pipeline.IngestionResult  `json:"results"`
}

// Runner is C11.
type Runner struct {
	Action config.Action
	Input  inputsource.InputSource
	Build  func(ctx context.Context, name string) (*pipeline.Pipeline, error)

	Vectors   vectorstore.VectorStore
	Artifacts artifactstore.ArtifactStore

	MaxWorkers int
	RunID      string

	Logger zerolog.Logger
}

// Run dispatches on r.Action.
func (r *Runner) Run(ctx context.Context) (*PipelineStatus, error) {
	switch r.Action {
	case config.ActionAdd:
		return r.runAdd(ctx)
	case config.ActionRemove:
		return r.runRemove(ctx)
	case config.ActionRemoveAll:
		return r.runRemoveAll(ctx)
	default:
		return nil, fmt.Errorf("unknown action %q", r.Action)
	}
}

func (r *Runner) runAdd(ctx context.Context) (*PipelineStatus, error) {
	docs, errc := r.Input.List(ctx)

	var (
		mu      sync.Mutex
		results []pipeline.IngestionResult
		wg      sync.WaitGroup
	)
	maxWorkers := r.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	sem := semaphore.NewWeighted(int64(maxWorkers))
	started := time.Now().UTC()

	for doc := range docs {
		doc := doc
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			p, buildErr := r.Build(ctx, doc.Name)
			var result pipeline.IngestionResult
			if buildErr != nil {
				result = pipeline.IngestionResult{Name: doc.Name, Error: buildErr.Error()}
			} else {
				log := r.Logger.With().Str("run_id", r.RunID).Str("document", doc.Name).Logger()
				p.Logger = log
				result = p.Process(ctx, doc.Name, doc.Bytes, doc.OriginURL)
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if err := <-errc; err != nil {
		return nil, fmt.Errorf("enumerate input: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no input documents found")
	}

	status := summarize(r.RunID, started, results)
	r.writeStatus(ctx, status)
	return status, nil
}

func (r *Runner) runRemove(ctx context.Context) (*PipelineStatus, error) {
	docs, errc := r.Input.List(ctx)

	var (
		mu      sync.Mutex
		results []pipeline.IngestionResult
		wg      sync.WaitGroup
	)
	started := time.Now().UTC()

	for doc := range docs {
		doc := doc
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			_, err := r.Vectors.DeleteByFilename(ctx, doc.Name)
			if err == nil && r.Artifacts != nil {
				_, err = r.Artifacts.DeleteArtifacts(ctx, doc.Name)
			}
			res := pipeline.IngestionResult{Name: doc.Name, Success: err == nil, Seconds: time.Since(start).Seconds()}
			if err != nil {
				res.Error = err.Error()
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if err := <-errc; err != nil {
		return nil, fmt.Errorf("enumerate input: %w", err)
	}

	status := summarize(r.RunID, started, results)
	r.writeStatus(ctx, status)
	return status, nil
}

func (r *Runner) runRemoveAll(ctx context.Context) (*PipelineStatus, error) {
	started := time.Now().UTC()
	_, err := r.Vectors.DeleteAll(ctx)
	res := pipeline.IngestionResult{Name: "*", Success: err == nil, Seconds: time.Since(started).Seconds()}
	if err != nil {
		res.Error = err.Error()
	}
	status := summarize(r.RunID, started, []pipeline.IngestionResult{res})
	r.writeStatus(ctx, status)
	return status, err
}

func summarize(runID string, started time.Time, results []pipeline.IngestionResult) *PipelineStatus {
	status := &PipelineStatus{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Total:      len(results),
		Results:    results,
	}
	for _, res := range results {
		if res.Success {
			status.Succeeded++
		} else {
			status.Failed++
		}
		status.ChunksIndexed += res.ChunksIndexed
	}
	if status.Total > 0 {
		status.SuccessRate = float64(status.Succeeded) / float64(status.Total)
	}
	return status
}

func (r *Runner) writeStatus(ctx context.Context, status *PipelineStatus) {
	if r.Artifacts == nil {
		return
	}
	name := fmt.Sprintf("pipeline_status_%s", status.FinishedAt.Format("20060102T150405Z"))
	if _, err := r.Artifacts.WriteStatus(ctx, name, status); err != nil {
		r.Logger.Warn().Err(err).Str("run_id", r.RunID).Msg("status manifest write failed")
	}
}
