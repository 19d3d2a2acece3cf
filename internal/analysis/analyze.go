package analysis

import (
	"context"
	"io"
	"log/slog"
	"time"

	"citematch/internal/dataset"
	"citematch/internal/lawdb"
	"citematch/internal/normalize"
)

// Options configures an analysis run.
type Options struct {
	Registry *lawdb.Registry
	Logger   *slog.Logger

	// Label identifies the run in stats and reports.
	Label string
	// SourceFile is recorded in the stats for traceability.
	SourceFile string
	// Normalize runs the citation cleanup pass on every element first.
	Normalize bool
	// ContextWindow is the character window for context rescue; 0 uses the
	// default. Rescue only runs when elements carry their part text.
	ContextWindow int
	// Workers bounds the comparison worker pool; 0 uses all CPUs.
	Workers int
	// Progress, when set, receives comparison counters while phase 2 runs.
	Progress Progress
}

// Result is the full outcome of an analysis run. Match records are streamed
// to the writer passed to Analyze, not held in memory: a corpus of tens of
// thousands of citations produces millions of pairs.
type Result struct {
	Stats          RunStats
	Groups         Groups
	Unparseable    []Unparseable
	Rescued        []Rescued
	NormalizeStats normalize.Stats
}

// Analyze runs the full pipeline over a loaded dataset: optional citation
// normalization, grouping by law, context rescue of unparseable citations,
// and pairwise comparison within groups.
func Analyze(ctx context.Context, elements []dataset.Element, matchOut io.Writer, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	result := &Result{}

	if opts.Normalize {
		for i := range elements {
			cleaned, stats := normalize.Citations(elements[i].Citation)
			elements[i].Citation = cleaned
			result.NormalizeStats.Merge(stats)
		}
		logger.Info("citations normalized",
			"processed", result.NormalizeStats.Processed,
			"kept", result.NormalizeStats.Kept,
			"removed_digit_only", result.NormalizeStats.RemovedDigitOnly,
			"removed_garbage", result.NormalizeStats.RemovedGarbage,
			"enriched", result.NormalizeStats.Enriched)
	}

	groups, unparseable := GroupByLaw(elements, opts.Registry)
	logger.Info("citations grouped by law",
		"elements", len(elements),
		"parsed", groups.CitationCount(),
		"unparseable", len(unparseable),
		"laws", len(groups),
		"federal", groups.FederalCount(),
		"cantonal", groups.CantonalCount())

	unparseable, rescued := RescueWithContext(elements, groups, unparseable, opts.Registry, opts.ContextWindow)
	if len(rescued) > 0 {
		logger.Info("citations rescued from context",
			"rescued", len(rescued),
			"still_unparseable", len(unparseable))
	}
	result.Groups = groups
	result.Unparseable = unparseable
	result.Rescued = rescued

	logger.Info("comparing within law groups",
		"expected_comparisons", groups.ExpectedComparisons(),
		"workers", opts.Workers)
	compared, err := CompareGroups(ctx, groups, matchOut, opts.Workers, opts.Progress)
	if err != nil {
		return nil, err
	}

	byTitle := 0
	for _, r := range rescued {
		if r.ByTitle {
			byTitle++
		}
	}

	result.Stats = RunStats{
		Label:                opts.Label,
		SourceFile:           opts.SourceFile,
		TotalCitations:       groups.CitationCount() + len(unparseable),
		ParsedCitations:      groups.CitationCount(),
		UnparseableCitations: len(unparseable),
		RescuedCitations:     len(rescued),
		MatchedByTitle:       byTitle,
		UniqueLaws:           len(groups),
		FederalLaws:          groups.FederalCount(),
		CantonalLaws:         groups.CantonalCount(),
		TotalComparisons:     compared.Comparisons,
		SameArticleMatches:   compared.SameArticleMatches,
		Elapsed:              time.Since(start),
	}
	logger.Info("analysis complete",
		"comparisons", compared.Comparisons,
		"same_article_matches", compared.SameArticleMatches,
		"elapsed", result.Stats.Elapsed.Round(time.Millisecond))
	return result, nil
}
