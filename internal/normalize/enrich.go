package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// swissLawAbbrevs are well-known federal law abbreviations used to anchor
// article-only citations to a law mentioned elsewhere in the same element.
var swissLawAbbrevs = []string{
	"stgb", "zgb", "or", "bv", "schkg", "zpo", "stpo",
	"uvg", "ahvg", "kvg", "bvg", "avig", "urg", "dsg",
	"usg", "mwstg", "dbg", "vwvg", "pa", "cp", "cc",
	"cst", "cste", "but", "cost", "bgg", "svg", "emrk", "cedh",
}

var (
	rsNumberRef     = regexp.MustCompile(`\b(?:rs|sr)\s*(\d+(?:\.\d+)*)\b`)
	abbrevWordCache = map[string]*regexp.Regexp{}
)

func init() {
	for _, a := range swissLawAbbrevs {
		abbrevWordCache[a] = regexp.MustCompile(`\b` + regexp.QuoteMeta(a) + `\b`)
	}
}

// lawReferences collects every known Swiss law reference across a set of
// citations: RS/SR numbers as "RS <number>", known abbreviations uppercased.
func lawReferences(citations []string) []string {
	var refs []string
	for _, cit := range citations {
		lower := strings.ToLower(cit)
		if m := rsNumberRef.FindStringSubmatch(lower); m != nil {
			refs = append(refs, "RS "+m[1])
			continue
		}
		for _, a := range swissLawAbbrevs {
			if abbrevWordCache[a].MatchString(lower) {
				refs = append(refs, strings.ToUpper(a))
				break
			}
		}
	}
	return refs
}

// maxArticleOnlyLength bounds what still counts as an article-only citation.
const maxArticleOnlyLength = 25

func isArticleOnly(cit string) bool {
	lower := strings.ToLower(strings.TrimSpace(cit))
	if !strings.HasPrefix(lower, "art") {
		return false
	}
	if utf8.RuneCountInString(cit) >= maxArticleOnlyLength {
		return false
	}
	for _, a := range swissLawAbbrevs {
		if strings.Contains(lower, a) {
			return false
		}
	}
	if strings.Contains(lower, "rs ") || strings.Contains(lower, "sr ") ||
		strings.Contains(lower, "rs.") || strings.Contains(lower, "sr.") {
		return false
	}
	if allCapsAbbrev.MatchString(cit) || mixedCaseAbbrev.MatchString(cit) {
		return false
	}
	return true
}

// EnrichArticleOnly appends a law reference to article-only citations
// ("art. 128") when the element's citations mention exactly one known Swiss
// law. With zero or several candidate laws the citations are left untouched:
// guessing between laws would create false matches downstream.
func EnrichArticleOnly(citations []string) ([]string, int) {
	unique := map[string]struct{}{}
	for _, ref := range lawReferences(citations) {
		unique[ref] = struct{}{}
	}
	if len(unique) != 1 {
		return citations, 0
	}
	var lawRef string
	for ref := range unique {
		lawRef = ref
	}

	out := make([]string, 0, len(citations))
	enriched := 0
	for _, cit := range citations {
		if isArticleOnly(cit) {
			out = append(out, cit+" "+lawRef)
			enriched++
		} else {
			out = append(out, cit)
		}
	}
	return out, enriched
}

// Stats aggregates the outcome of normalizing one or more citation lists.
type Stats struct {
	Processed        int `json:"processed"`
	Kept             int `json:"kept"`
	Changed          int `json:"changed"`
	RemovedDigitOnly int `json:"removed_digit_only"`
	RemovedGarbage   int `json:"removed_garbage"`
	Enriched         int `json:"enriched"`
}

func (s *Stats) Merge(other Stats) {
	s.Processed += other.Processed
	s.Kept += other.Kept
	s.Changed += other.Changed
	s.RemovedDigitOnly += other.RemovedDigitOnly
	s.RemovedGarbage += other.RemovedGarbage
	s.Enriched += other.Enriched
}

// Citations normalizes one element's citation list: applies the text fixes,
// drops digit-only and garbage entries, then enriches article-only citations.
func Citations(citations []string) ([]string, Stats) {
	var stats Stats
	kept := make([]string, 0, len(citations))

	for _, cit := range citations {
		stats.Processed++
		normalized, changed, digitOnly := Citation(cit)
		if digitOnly {
			stats.RemovedDigitOnly++
			continue
		}
		if _, garbage := Garbage(normalized); garbage {
			stats.RemovedGarbage++
			continue
		}
		kept = append(kept, normalized)
		stats.Kept++
		if changed {
			stats.Changed++
		}
	}

	enriched, n := EnrichArticleOnly(kept)
	stats.Enriched = n
	return enriched, stats
}
