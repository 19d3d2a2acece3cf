// Package report renders analysis results as markdown and HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"citematch/internal/analysis"
)

// FormatNumber renders n with thousands separators: 1234567 -> "1,234,567".
func FormatNumber[T int | int64](n T) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatSigned renders n with an explicit sign: "+1,234" or "-56".
func FormatSigned[T int | int64](n T) string {
	if n < 0 {
		return FormatNumber(n)
	}
	return "+" + FormatNumber(n)
}

// FormatDuration renders a duration as "5s", "3m 07s" or "1h 02m 03s".
func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %02ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh %02dm %02ds", secs/3600, (secs%3600)/60, secs%60)
	}
}

// Run renders a single analysis run as markdown.
func Run(s *analysis.RunStats) string {
	var b strings.Builder
	label := s.Label
	if label == "" {
		label = s.SourceFile
	}
	fmt.Fprintf(&b, "## Analysis: %s\n\n", label)
	if s.SourceFile != "" {
		fmt.Fprintf(&b, "Source: `%s`\n\n", s.SourceFile)
	}

	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total citations | %s |\n", FormatNumber(s.TotalCitations))
	fmt.Fprintf(&b, "| Successfully parsed | %s (%.1f%%) |\n", FormatNumber(s.ParsedCitations), s.ParsingRate())
	fmt.Fprintf(&b, "| Unparseable | %s (%.1f%%) |\n", FormatNumber(s.UnparseableCitations), s.UnparseableRate())
	if s.RescuedCitations > 0 {
		fmt.Fprintf(&b, "| Rescued from context | %s |\n", FormatNumber(s.RescuedCitations))
	}
	fmt.Fprintf(&b, "| Unique laws | %s |\n", FormatNumber(s.UniqueLaws))
	fmt.Fprintf(&b, "| Federal laws (RS) | %s |\n", FormatNumber(s.FederalLaws))
	fmt.Fprintf(&b, "| Cantonal laws | %s |\n", FormatNumber(s.CantonalLaws))
	fmt.Fprintf(&b, "| Pairwise comparisons | %s |\n", FormatNumber(s.TotalComparisons))
	fmt.Fprintf(&b, "| Same-article matches | %s (%.2f%%) |\n", FormatNumber(s.SameArticleMatches), s.MatchRate())
	if s.Elapsed > 0 {
		fmt.Fprintf(&b, "| Elapsed | %s |\n", FormatDuration(s.Elapsed))
	}
	return b.String()
}

// Comparison renders a before/after report for a baseline run and a run over
// the preprocessed corpus.
func Comparison(original, preprocessed *analysis.RunStats) string {
	impact := analysis.PreprocessingImpact(original, preprocessed)
	var b strings.Builder

	b.WriteString("# Preprocessing impact\n\n")

	b.WriteString("## Parsing results\n\n")
	b.WriteString("| | Original | Preprocessed | Improvement |\n|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| Total citations | %s | %s | |\n",
		FormatNumber(original.TotalCitations), FormatNumber(preprocessed.TotalCitations))
	fmt.Fprintf(&b, "| Successfully parsed | %s | %s | %s |\n",
		FormatNumber(original.ParsedCitations), FormatNumber(preprocessed.ParsedCitations),
		FormatSigned(preprocessed.ParsedCitations-original.ParsedCitations))
	fmt.Fprintf(&b, "| Parsing rate | %.1f%% | %.1f%% | %+.1f%% |\n",
		original.ParsingRate(), preprocessed.ParsingRate(), impact.ParsingRateDelta)
	fmt.Fprintf(&b, "| Unparseable | %s | %s | %s |\n\n",
		FormatNumber(original.UnparseableCitations), FormatNumber(preprocessed.UnparseableCitations),
		FormatSigned(preprocessed.UnparseableCitations-original.UnparseableCitations))

	b.WriteString("## Law coverage\n\n")
	b.WriteString("| | Original | Preprocessed | Change |\n|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| Total unique laws | %s | %s | %s |\n",
		FormatNumber(original.UniqueLaws), FormatNumber(preprocessed.UniqueLaws),
		FormatSigned(preprocessed.UniqueLaws-original.UniqueLaws))
	fmt.Fprintf(&b, "| Federal laws (RS) | %s | %s | %s |\n",
		FormatNumber(original.FederalLaws), FormatNumber(preprocessed.FederalLaws),
		FormatSigned(preprocessed.FederalLaws-original.FederalLaws))
	fmt.Fprintf(&b, "| Cantonal laws | %s | %s | %s |\n\n",
		FormatNumber(original.CantonalLaws), FormatNumber(preprocessed.CantonalLaws),
		FormatSigned(preprocessed.CantonalLaws-original.CantonalLaws))

	b.WriteString("## Comparison analysis\n\n")
	b.WriteString("| | Original | Preprocessed | Change |\n|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| Total comparisons | %s | %s | %s |\n",
		FormatNumber(original.TotalComparisons), FormatNumber(preprocessed.TotalComparisons),
		FormatSigned(impact.AddedComparisons))
	fmt.Fprintf(&b, "| Same-article matches | %s | %s | %s |\n",
		FormatNumber(original.SameArticleMatches), FormatNumber(preprocessed.SameArticleMatches),
		FormatSigned(impact.AddedMatches))
	fmt.Fprintf(&b, "| Match rate | %.2f%% | %.2f%% | %+.2f%% |\n\n",
		original.MatchRate(), preprocessed.MatchRate(), impact.MatchRateDelta)

	b.WriteString("## Key insights\n\n")
	fmt.Fprintf(&b, "- Citations rescued by preprocessing: %s\n", FormatNumber(impact.Rescued))
	fmt.Fprintf(&b, "- Parsing failure reduction: %.1f%%\n", impact.FailureReduction)
	fmt.Fprintf(&b, "- Additional comparisons enabled: %s\n", FormatSigned(impact.AddedComparisons))
	fmt.Fprintf(&b, "- Additional matches discovered: %s\n", FormatSigned(impact.AddedMatches))

	return b.String()
}
