package analysis

import "time"

// RunStats summarizes one full analysis run.
type RunStats struct {
	Label                string        `json:"label"`
	SourceFile           string        `json:"source_file"`
	TotalCitations       int           `json:"total_citations"`
	ParsedCitations      int           `json:"parsed_citations"`
	UnparseableCitations int           `json:"unparseable_citations"`
	RescuedCitations     int           `json:"rescued_citations"`
	MatchedByTitle       int           `json:"matched_by_title"`
	UniqueLaws           int           `json:"unique_laws"`
	FederalLaws          int           `json:"federal_laws"`
	CantonalLaws         int           `json:"cantonal_laws"`
	TotalComparisons     int64         `json:"total_comparisons"`
	SameArticleMatches   int64         `json:"same_article_matches"`
	Elapsed              time.Duration `json:"elapsed"`
}

// ParsingRate returns the share of citations assigned to a law, in percent.
func (s *RunStats) ParsingRate() float64 {
	return 100 * float64(s.ParsedCitations) / float64(max(s.TotalCitations, 1))
}

// UnparseableRate returns the share of unassignable citations, in percent.
func (s *RunStats) UnparseableRate() float64 {
	return 100 * float64(s.UnparseableCitations) / float64(max(s.TotalCitations, 1))
}

// MatchRate returns the share of comparisons that found a same-article match,
// in percent.
func (s *RunStats) MatchRate() float64 {
	return 100 * float64(s.SameArticleMatches) / float64(max(s.TotalComparisons, 1))
}

// Impact quantifies what a preprocessing pass changed between two runs over
// the same corpus.
type Impact struct {
	Rescued          int     `json:"rescued"`
	FailureReduction float64 `json:"failure_reduction"`
	AddedComparisons int64   `json:"added_comparisons"`
	AddedMatches     int64   `json:"added_matches"`
	ParsingRateDelta float64 `json:"parsing_rate_delta"`
	MatchRateDelta   float64 `json:"match_rate_delta"`
}

// PreprocessingImpact compares a baseline run against a run over the
// preprocessed corpus.
func PreprocessingImpact(original, preprocessed *RunStats) Impact {
	rescued := preprocessed.ParsedCitations - original.ParsedCitations
	failureReduction := 0.0
	if original.UnparseableCitations > 0 && rescued > 0 {
		failureReduction = 100 * float64(rescued) / float64(original.UnparseableCitations)
	}
	return Impact{
		Rescued:          rescued,
		FailureReduction: failureReduction,
		AddedComparisons: preprocessed.TotalComparisons - original.TotalComparisons,
		AddedMatches:     preprocessed.SameArticleMatches - original.SameArticleMatches,
		ParsingRateDelta: preprocessed.ParsingRate() - original.ParsingRate(),
		MatchRateDelta:   preprocessed.MatchRate() - original.MatchRate(),
	}
}
