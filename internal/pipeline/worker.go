package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"citematch/internal/analysis"
	"citematch/internal/dataset"
	"citematch/internal/lawdb"
	"citematch/internal/store"
)

// Worker processes analysis jobs end to end: load the uploaded dataset, run
// the grouping and comparison pipeline, persist the run.
type Worker struct {
	registry *lawdb.Registry
	store    *store.Store
	log      *slog.Logger

	dataDir        string
	compareWorkers int
	contextWindow  int
}

func NewWorker(registry *lawdb.Registry, st *store.Store, log *slog.Logger, dataDir string, compareWorkers, contextWindow int) *Worker {
	return &Worker{
		registry:       registry,
		store:          st,
		log:            log,
		dataDir:        dataDir,
		compareWorkers: compareWorkers,
		contextWindow:  contextWindow,
	}
}

// Process runs the full analysis pipeline for a job. Failures are recorded on
// the job itself: the orchestrator has nowhere to send an error.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "run_id", job.RunID)
	start := time.Now()

	// Phase 1: Load
	job.SetStatus(StatusLoading, "loading")
	elements, err := loadElements(job.Filename, job.FileData())
	if err != nil {
		log.Error("load failed", "error", err)
		job.AddError(fmt.Sprintf("load: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return
	}
	job.ClearFileData()
	if len(elements) == 0 {
		log.Warn("no elements with citations")
		job.AddError("no elements with citations")
		job.SetStatus(StatusFailed, "loading")
		return
	}
	job.SetElements(len(elements))
	log.Info("dataset loaded", "elements", len(elements))

	// Match records stream to disk; only aggregates go to the database.
	matchesPath := filepath.Join(w.dataDir, "matches_"+job.RunID+".jsonl")
	f, err := os.Create(matchesPath)
	if err != nil {
		log.Error("create matches file failed", "error", err)
		job.AddError(fmt.Sprintf("matches file: %s", err))
		job.SetStatus(StatusFailed, "comparing")
		return
	}
	bw := bufio.NewWriterSize(f, 1<<20)

	// Phase 2+3: Group and compare
	job.SetStatus(StatusGrouping, "grouping")
	var comparing sync.Once
	result, err := analysis.Analyze(ctx, elements, bw, analysis.Options{
		Registry:      w.registry,
		Logger:        log,
		Label:         job.Label,
		SourceFile:    job.Filename,
		Normalize:     job.Preprocess,
		ContextWindow: w.contextWindow,
		Workers:       w.compareWorkers,
		Progress: func(done, total, matches int64) {
			comparing.Do(func() {
				job.SetStatus(StatusComparing, "comparing")
			})
			job.SetComparisons(done, matches)
		},
	})
	if err != nil {
		f.Close()
		os.Remove(matchesPath)
		log.Error("analysis failed", "error", err)
		job.AddError(fmt.Sprintf("analyze: %s", err))
		job.SetStatus(StatusFailed, "comparing")
		return
	}
	flushErr := bw.Flush()
	if closeErr := f.Close(); flushErr == nil {
		flushErr = closeErr
	}
	if flushErr != nil {
		os.Remove(matchesPath)
		log.Error("write matches file failed", "error", flushErr)
		job.AddError(fmt.Sprintf("matches file: %s", flushErr))
		job.SetStatus(StatusFailed, "comparing")
		return
	}
	job.SetGrouping(result.Stats.ParsedCitations, result.Stats.UnparseableCitations,
		result.Stats.RescuedCitations, result.Stats.TotalComparisons)
	job.SetComparisons(result.Stats.TotalComparisons, result.Stats.SameArticleMatches)

	// Phase 4: Persist
	job.SetStatus(StatusStoring, "storing")
	run := &store.Run{
		ID:          job.RunID,
		Stats:       result.Stats,
		MatchesPath: matchesPath,
		CreatedAt:   time.Now(),
	}
	if err := w.store.SaveRun(ctx, run, result.Groups, result.Unparseable); err != nil {
		log.Error("save run failed", "error", err)
		job.AddError(fmt.Sprintf("save run: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info("job completed",
		"citations", result.Stats.TotalCitations,
		"comparisons", result.Stats.TotalComparisons,
		"same_article_matches", result.Stats.SameArticleMatches,
		"elapsed", time.Since(start).Round(time.Millisecond))
}

// loadElements parses uploaded dataset bytes by file extension.
func loadElements(filename string, data []byte) ([]dataset.Element, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return dataset.ReadCSV(bytes.NewReader(data))
	case ".jsonl", ".json":
		return dataset.ReadJSONL(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want .csv or .jsonl)", filepath.Ext(filename))
	}
}
