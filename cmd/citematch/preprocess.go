package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"citematch/internal/dataset"
)

func newPreprocessCmd() *cobra.Command {
	var (
		outPath      string
		failuresPath string
	)

	cmd := &cobra.Command{
		Use:   "preprocess <dataset.csv>",
		Short: "Clean the citation column of a dataset export",
		Long: `Preprocess normalizes every citation in the dataset: spacing and
abbreviation fixes, removal of digit-only and garbage entries, and
enrichment of article-only citations from their element context. Dropped
citations are appended to a JSONL failures log.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath := args[0]
			if outPath == "" {
				outPath = strings.TrimSuffix(inPath, ".csv") + "_preprocessed.csv"
			}
			if failuresPath == "" {
				failuresPath = strings.TrimSuffix(inPath, ".csv") + "_failures.jsonl"
			}

			stats, err := dataset.Preprocess(inPath, outPath, failuresPath)
			if err != nil {
				return err
			}
			slog.Info("preprocessing complete",
				"elements", stats.Elements,
				"processed", stats.Citations.Processed,
				"kept", stats.Citations.Kept,
				"changed", stats.Citations.Changed,
				"removed_digit_only", stats.Citations.RemovedDigitOnly,
				"removed_garbage", stats.Citations.RemovedGarbage,
				"enriched", stats.Citations.Enriched,
				"short_fragments", stats.ShortFragments,
				"out", outPath,
				"failures", failuresPath)
			return printJSON(stats)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output CSV path (default: <input>_preprocessed.csv)")
	cmd.Flags().StringVar(&failuresPath, "failures", "", "failures log path (default: <input>_failures.jsonl)")
	return cmd
}
