package report

import (
	"strings"
	"testing"
	"time"

	"citematch/internal/analysis"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{45020, "45,020"},
		{1234567, "1,234,567"},
		{-5508, "-5,508"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	if got := FormatSigned(1500); got != "+1,500" {
		t.Errorf("FormatSigned(1500) = %q", got)
	}
	if got := FormatSigned(-42); got != "-42" {
		t.Errorf("FormatSigned(-42) = %q", got)
	}
	if got := FormatSigned(0); got != "+0" {
		t.Errorf("FormatSigned(0) = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{187 * time.Second, "3m 07s"},
		{3723 * time.Second, "1h 02m 03s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func sampleStats() (*analysis.RunStats, *analysis.RunStats) {
	original := &analysis.RunStats{
		Label: "original", SourceFile: "data.csv",
		TotalCitations: 45020, ParsedCitations: 39512, UnparseableCitations: 5508,
		UniqueLaws: 420, FederalLaws: 310, CantonalLaws: 110,
		TotalComparisons: 2100000, SameArticleMatches: 310000,
	}
	preprocessed := &analysis.RunStats{
		Label: "preprocessed", SourceFile: "data_clean.csv",
		TotalCitations: 44800, ParsedCitations: 41200, UnparseableCitations: 3600,
		UniqueLaws: 415, FederalLaws: 312, CantonalLaws: 103,
		TotalComparisons: 2350000, SameArticleMatches: 352000,
	}
	return original, preprocessed
}

func TestRunReport(t *testing.T) {
	original, _ := sampleStats()
	md := Run(original)

	for _, want := range []string{"45,020", "39,512", "5,508", "87.8%"} {
		if !strings.Contains(md, want) {
			t.Errorf("report misses %q:\n%s", want, md)
		}
	}
}

func TestComparisonReport(t *testing.T) {
	original, preprocessed := sampleStats()
	md := Comparison(original, preprocessed)

	for _, want := range []string{
		"## Parsing results",
		"## Law coverage",
		"## Comparison analysis",
		"## Key insights",
		"+1,688",    // rescued citations
		"+250,000",  // additional comparisons
		"+42,000",   // additional matches
		"2,100,000", // original comparisons
	} {
		if !strings.Contains(md, want) {
			t.Errorf("comparison report misses %q", want)
		}
	}
}

func TestHTML(t *testing.T) {
	original, preprocessed := sampleStats()
	out, err := HTML(Comparison(original, preprocessed))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	html := string(out)
	for _, want := range []string{"<table>", "<h2", "Key insights", "</html>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html output misses %q", want)
		}
	}
}
