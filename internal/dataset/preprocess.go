package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"citematch/internal/normalize"
)

// PreprocessStats summarizes a preprocessing run.
type PreprocessStats struct {
	Elements       int             `json:"elements"`
	Citations      normalize.Stats `json:"citations"`
	ShortFragments int             `json:"short_fragments"`
	Failures       int             `json:"failures"`
}

// failureRecord is one line of the failures log: a citation that was dropped
// or flagged during preprocessing, with enough context to trace it back.
type failureRecord struct {
	UUID       string `json:"uuid"`
	Part       string `json:"part_number"`
	Original   string `json:"original"`
	Normalized string `json:"normalized,omitempty"`
	Reason     string `json:"reason"`
}

// Preprocess rewrites the CSV export at inPath into a cleaned copy at outPath:
// citations are normalized, digit-only and garbage entries dropped,
// article-only citations enriched, and the bulky part_content column removed.
// Dropped and suspicious citations are appended to the JSONL failures log at
// failuresPath so nothing disappears silently.
func Preprocess(inPath, outPath, failuresPath string) (PreprocessStats, error) {
	var stats PreprocessStats

	in, err := os.Open(inPath)
	if err != nil {
		return stats, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return stats, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	failures, err := os.Create(failuresPath)
	if err != nil {
		return stats, fmt.Errorf("create failures log: %w", err)
	}
	defer failures.Close()
	failureEnc := json.NewEncoder(failures)

	reader := csv.NewReader(in)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	uuidCol, ok := cols["uuid"]
	if !ok {
		return stats, fmt.Errorf("csv header missing uuid column")
	}
	partCol, ok := cols["part_number"]
	if !ok {
		return stats, fmt.Errorf("csv header missing part_number column")
	}
	analysisCol, ok := cols["analysis"]
	if !ok {
		return stats, fmt.Errorf("csv header missing analysis column")
	}
	contentCol, hasContent := cols["part_content"]

	writer := csv.NewWriter(out)
	defer writer.Flush()

	outHeader := make([]string, 0, len(header))
	for i, name := range header {
		if hasContent && i == contentCol {
			continue
		}
		outHeader = append(outHeader, name)
	}
	if err := writer.Write(outHeader); err != nil {
		return stats, fmt.Errorf("write csv header: %w", err)
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return stats, fmt.Errorf("read csv row %d: %w", line, err)
		}
		if uuidCol >= len(row) || partCol >= len(row) || analysisCol >= len(row) {
			continue
		}
		stats.Elements++
		uuid, part := row[uuidCol], row[partCol]

		var analysis analysisDoc
		if err := json.Unmarshal([]byte(row[analysisCol]), &analysis); err != nil {
			analysis.Articles = nil
		}

		kept := make([]string, 0, len(analysis.Articles))
		for _, cit := range analysis.Articles {
			stats.Citations.Processed++
			normalized, changed, digitOnly := normalize.Citation(cit)
			if digitOnly {
				stats.Citations.RemovedDigitOnly++
				stats.Failures++
				logFailure(failureEnc, uuid, part, cit, normalized, "digit_only")
				continue
			}
			if reason, garbage := normalize.Garbage(normalized); garbage {
				stats.Citations.RemovedGarbage++
				stats.Failures++
				logFailure(failureEnc, uuid, part, cit, normalized, string(reason))
				continue
			}
			if normalize.IsShortFragment(normalized) {
				stats.ShortFragments++
				logFailure(failureEnc, uuid, part, cit, normalized, "short_fragment")
			}
			kept = append(kept, normalized)
			stats.Citations.Kept++
			if changed {
				stats.Citations.Changed++
			}
		}

		enriched, n := normalize.EnrichArticleOnly(kept)
		stats.Citations.Enriched += n

		analysisJSON, err := json.Marshal(analysisDoc{Articles: enriched})
		if err != nil {
			return stats, fmt.Errorf("marshal analysis row %d: %w", line, err)
		}

		outRow := make([]string, 0, len(row))
		for i, cell := range row {
			if hasContent && i == contentCol {
				continue
			}
			if i == analysisCol {
				cell = string(analysisJSON)
			}
			outRow = append(outRow, cell)
		}
		if err := writer.Write(outRow); err != nil {
			return stats, fmt.Errorf("write csv row %d: %w", line, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}
	return stats, nil
}

func logFailure(enc *json.Encoder, uuid, part, original, normalized, reason string) {
	if original == normalized {
		normalized = ""
	}
	_ = enc.Encode(failureRecord{
		UUID:       uuid,
		Part:       part,
		Original:   original,
		Normalized: normalized,
		Reason:     reason,
	})
}
