// Package citation parses Swiss legal citations ("Art. 42 al. 2 LTF",
// "43 a CP", "RS 173.110") into a law reference and a set of article numbers.
package citation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ConstitutionKey is the pseudo-abbreviation used for all constitution
// references, regardless of language or variant spelling.
const ConstitutionKey = "Cst."

// openRangeSpan is how many articles an open range like "art. 5 ss" covers
// beyond its starting article.
const openRangeSpan = 10

var (
	rsPattern = regexp.MustCompile(`(?i)\bRS\s*(\d+(?:\.\d+)*)\b`)
	srPattern = regexp.MustCompile(`(?i)\bSR\s*(\d+(?:\.\d+)*)\b`)

	// A capitalized word of 2-16 letters, e.g. "StGB", "BauR", "Cst".
	abbrevPattern      = regexp.MustCompile(`\b([A-ZÄÖÜ][A-ZÄÖÜa-zäöü]{1,15})\b`)
	parenAbbrevPattern = regexp.MustCompile(`\(([A-ZÄÖÜ][A-ZÄÖÜa-zäöü-]{1,15})\)`)

	artOpenRangePattern = regexp.MustCompile(`(?i)art\.?\s*(\d+)\s*(?:ss|ff|sqq?)`)
	artRangePattern     = regexp.MustCompile(`(?i)art\.?\s*(\d+)\s*(?:-|à|bis)\s*(\d+)`)
	artSimplePattern    = regexp.MustCompile(`(?i)art\.?\s*(\d+)`)
)

// commonWords are capitalized words that look like abbreviations but are not:
// article and structural markers, connectives, months, and generic legal terms
// in French and German.
var commonWords = map[string]struct{}{
	"art": {}, "artikel": {}, "article": {},
	"abs": {}, "al": {}, "lit": {}, "let": {}, "ch": {}, "bst": {},
	"ziff": {}, "satz": {}, "anhang": {},
	"du": {}, "de": {}, "vom": {}, "der": {}, "des": {}, "und": {}, "et": {},
	"bzw": {}, "recte": {}, "ff": {}, "ss": {},
	"antrag": {}, "verordnung": {}, "gesetzes": {}, "loi": {},
	"constitution": {}, "convention": {}, "conseil": {}, "proposition": {},
	"tribunal": {}, "gegen": {}, "für": {}, "über": {},
	"januar": {}, "februar": {}, "märz": {}, "april": {}, "mai": {},
	"juni": {}, "juli": {}, "august": {}, "september": {}, "oktober": {},
	"november": {}, "dezember": {},
	"janvier": {}, "février": {}, "mars": {}, "avril": {}, "juin": {},
	"juillet": {}, "août": {}, "septembre": {}, "octobre": {},
	"novembre": {}, "décembre": {},
	"le": {}, "la": {}, "les": {}, "planungs": {}, "baureglements": {},
}

// constitutionAbbrevs covers Cst./Cste. (FR), BV (DE), Cost. (IT) and the
// "But" OCR variant.
var constitutionAbbrevs = map[string]struct{}{
	"cst": {}, "cste": {}, "bv": {}, "cost": {}, "but": {},
}

// IsCommonWord reports whether a word is in the abbreviation stop set.
func IsCommonWord(w string) bool {
	_, ok := commonWords[strings.ToLower(w)]
	return ok
}

// IsRSNumber reports whether s looks like an RS classification number
// (digits and dots only).
func IsRSNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// NormalizeAbbrev lowercases an abbreviation and strips dots, so that
// "Cst.", "cst" and "CST." all map to the same registry key.
func NormalizeAbbrev(abbrev string) string {
	return strings.TrimSpace(strings.ToLower(strings.ReplaceAll(abbrev, ".", "")))
}

// ExtractAbbreviation finds the law reference in a citation. Priority order:
// RS/SR number, constitution reference, parenthesized abbreviation, then any
// capitalized word not in the stop set.
func ExtractAbbreviation(cit string) (string, bool) {
	if m := rsPattern.FindStringSubmatch(cit); m != nil {
		return m[1], true
	}
	if m := srPattern.FindStringSubmatch(cit); m != nil {
		return m[1], true
	}

	lower := strings.ToLower(cit)
	if strings.Contains(lower, "constitution") ||
		strings.Contains(lower, "verfassung") ||
		strings.Contains(lower, "costituzione") {
		return ConstitutionKey, true
	}
	for _, m := range parenAbbrevPattern.FindAllStringSubmatch(cit, -1) {
		if _, ok := constitutionAbbrevs[strings.ToLower(m[1])]; ok {
			return ConstitutionKey, true
		}
	}
	for _, m := range abbrevPattern.FindAllStringSubmatch(cit, -1) {
		if _, ok := constitutionAbbrevs[strings.ToLower(m[1])]; ok {
			return ConstitutionKey, true
		}
	}

	// Parenthesized abbreviations like "(BGG)" or "(WUB, BS 6 173)" win over
	// bare capitalized words.
	for _, m := range parenAbbrevPattern.FindAllStringSubmatch(cit, -1) {
		if !IsCommonWord(m[1]) {
			return m[1], true
		}
	}
	for _, m := range abbrevPattern.FindAllStringSubmatch(cit, -1) {
		if !IsCommonWord(m[1]) {
			return m[1], true
		}
	}
	return "", false
}

// ArticleSet is the set of article numbers a citation refers to.
type ArticleSet map[int]struct{}

func (s ArticleSet) Add(n int) { s[n] = struct{}{} }

// Intersect returns the articles present in both sets.
func (s ArticleSet) Intersect(other ArticleSet) ArticleSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(ArticleSet)
	for n := range small {
		if _, ok := large[n]; ok {
			out.Add(n)
		}
	}
	return out
}

// Sorted returns the article numbers in ascending order. Always non-nil,
// so it serializes as [] rather than null.
func (s ArticleSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// ExtractArticles collects every article number a citation mentions:
// open ranges ("art. 5 ss" covers 5..15), explicit ranges ("art. 7-9",
// "art. 7 à 9", "art. 7 bis 9") and simple references.
func ExtractArticles(cit string) ArticleSet {
	articles := make(ArticleSet)

	for _, m := range artOpenRangePattern.FindAllStringSubmatch(cit, -1) {
		if start, err := strconv.Atoi(m[1]); err == nil {
			for n := start; n <= start+openRangeSpan; n++ {
				articles.Add(n)
			}
		}
	}
	for _, m := range artRangePattern.FindAllStringSubmatch(cit, -1) {
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && start <= end {
			for n := start; n <= end; n++ {
				articles.Add(n)
			}
		}
	}
	for _, m := range artSimplePattern.FindAllStringSubmatch(cit, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			articles.Add(n)
		}
	}
	return articles
}
