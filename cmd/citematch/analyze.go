package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"citematch/internal/analysis"
	"citematch/internal/dataset"
	"citematch/internal/lawdb"
	"citematch/internal/report"
	"citematch/internal/store"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		label         string
		normalize     bool
		matchesPath   string
		workers       int
		contextWindow int
		tripletsPath  string
		titlesPath    string
		dbPath        string
		reportPath    string
	)

	cmd := &cobra.Command{
		Use:   "analyze <dataset.csv|dataset.jsonl>",
		Short: "Group citations by law and compare them pairwise",
		Long: `Analyze loads a dataset export, groups its citations by the law they
cite, rescues unparseable citations from their element context, and
compares every citation pair within each law group. Match records are
streamed to a JSONL file; aggregates go to stdout and optionally to a
SQLite database for later comparison.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcPath := args[0]
			if label == "" {
				label = strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
			}
			if matchesPath == "" {
				matchesPath = strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + "_matches.jsonl"
			}

			registry, err := lawdb.Load(tripletsPath, titlesPath)
			if err != nil {
				return fmt.Errorf("load law registry: %w", err)
			}
			slog.Info("law registry loaded", "laws", registry.Size())

			elements, err := dataset.Load(srcPath)
			if err != nil {
				return err
			}
			slog.Info("dataset loaded", "elements", len(elements))

			f, err := os.Create(matchesPath)
			if err != nil {
				return fmt.Errorf("create matches file: %w", err)
			}
			bw := bufio.NewWriterSize(f, 1<<20)

			// Log progress at most once per percent of the expected total.
			var lastReported atomic.Int64
			progress := func(done, total, matches int64) {
				if total == 0 {
					return
				}
				pct := done * 100 / total
				if pct > lastReported.Load() && pct%5 == 0 {
					lastReported.Store(pct)
					slog.Info("comparing", "done", done, "total", total, "matches", matches, "pct", pct)
				}
			}

			result, err := analysis.Analyze(cmd.Context(), elements, bw, analysis.Options{
				Registry:      registry,
				Label:         label,
				SourceFile:    filepath.Base(srcPath),
				Normalize:     normalize,
				ContextWindow: contextWindow,
				Workers:       workers,
				Progress:      progress,
			})
			if err != nil {
				f.Close()
				os.Remove(matchesPath)
				return err
			}
			if err := bw.Flush(); err != nil {
				f.Close()
				return fmt.Errorf("write matches file: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close matches file: %w", err)
			}

			if dbPath != "" {
				runID, err := saveRun(cmd, dbPath, matchesPath, result)
				if err != nil {
					return err
				}
				slog.Info("run saved", "db", dbPath, "run_id", runID)
			}

			if reportPath != "" {
				if err := writeReportFile(reportPath, report.Run(&result.Stats)); err != nil {
					return err
				}
				slog.Info("report written", "path", reportPath)
			}

			return printJSON(result.Stats)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "run label (default: dataset file name)")
	cmd.Flags().BoolVarP(&normalize, "normalize", "n", false, "normalize citations before grouping")
	cmd.Flags().StringVarP(&matchesPath, "matches", "m", "", "match records output path (default: <input>_matches.jsonl)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "comparison workers (default: all CPUs)")
	cmd.Flags().IntVar(&contextWindow, "context-window", 0, "characters of context for citation rescue")
	cmd.Flags().StringVar(&tripletsPath, "triplets", "./registry/abbreviation_triplets.json", "law abbreviation triplets path")
	cmd.Flags().StringVar(&titlesPath, "titles", "./registry/titles_mapping.json", "law titles mapping path")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to record the run in")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a markdown (or .html) report to this path")
	return cmd
}

func saveRun(cmd *cobra.Command, dbPath, matchesPath string, result *analysis.Result) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()
	if err := st.InitSchema(); err != nil {
		return "", fmt.Errorf("initialize schema: %w", err)
	}

	run := &store.Run{
		ID:          uuid.NewString(),
		Stats:       result.Stats,
		MatchesPath: matchesPath,
		CreatedAt:   time.Now(),
	}
	if err := st.SaveRun(cmd.Context(), run, result.Groups, result.Unparseable); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return run.ID, nil
}

// writeReportFile writes markdown, rendering to HTML when the path says so.
func writeReportFile(path, markdown string) error {
	data := []byte(markdown)
	if strings.EqualFold(filepath.Ext(path), ".html") {
		rendered, err := report.HTML(markdown)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		data = rendered
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
