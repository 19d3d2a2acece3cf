// Package normalize cleans up raw citation strings before parsing: spacing
// fixes, footnote stripping, garbage filtering and context enrichment.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// "43 aCP" -> "43 a CP": a lone "a" glued to an abbreviation after a digit.
	digitGluedA = regexp.MustCompile(`(\d+)\s+a([A-ZÄÖÜ][A-ZÄÖÜa-zäöüß]+)\b`)
	// " aBauR" -> " a BauR": same, after whitespace.
	spaceGluedA = regexp.MustCompile(`(\s)a([A-ZÄÖÜ][A-ZÄÖÜa-zäöüß]+)\b`)
	// "Art.6VwVG" -> "Art. 6 VwVG": missing spaces around the article number.
	gluedArt = regexp.MustCompile(`\b([Aa]rt)\.?(\d+)([A-ZÄÖÜ][A-ZÄÖÜa-zäöü]+)\b`)
	// "Loi sur l'administration3" -> footnote digits after a final letter.
	trailingFootnote = regexp.MustCompile(`([a-zàâäéèêëïîôùûüÿœæç])\d+$`)
)

// Citation applies the normalization fixes to a single citation. It reports
// whether the text changed and whether the result is digits-only (an article
// number without any law context, which callers should drop).
func Citation(cit string) (out string, changed, digitOnly bool) {
	out = cit
	out = digitGluedA.ReplaceAllString(out, "${1} a ${2}")
	out = spaceGluedA.ReplaceAllString(out, "${1}a ${2}")
	out = gluedArt.ReplaceAllString(out, "${1}. ${2} ${3}")
	out = trailingFootnote.ReplaceAllString(out, "${1}")
	return out, out != cit, isDigitOnly(out)
}

func isDigitOnly(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var (
	// All-caps abbreviation: StGB, ZGB, OR, BV.
	allCapsAbbrev = regexp.MustCompile(`\b[A-ZÄÖÜ]{2,}\b`)
	// Mixed-case abbreviation: VwVG, SchKG, BauR.
	mixedCaseAbbrev = regexp.MustCompile(`\b[A-ZÄÖÜ][a-zäöü]*[A-ZÄÖÜ]`)
)

// knownAbbrevMarkers are substrings that mark a citation as carrying a known
// Swiss law reference; used when deciding whether a short citation is a
// fragment worth logging.
var knownAbbrevMarkers = []string{
	"rs ", "sr ", "constitution", "verfassung", "costituzione",
	"cst.", "cste.", "cst", "cste", "but", "bv", "cost.", "cost",
	"stgb", "zgb", "or", "svg", "schkg", "zpo", "stpo",
	"uvg", "ahvg", "kvg", "bvg", "avig", "urg", "dsg",
	"usg", "mwstg", "dbg", "vesr", "fiskalg",
}

// IsShortFragment reports whether a normalized citation is a short fragment
// without any recognizable law reference. These go to the failures log.
func IsShortFragment(cit string) bool {
	if utf8.RuneCountInString(strings.TrimSpace(cit)) >= 15 {
		return false
	}
	lower := strings.ToLower(cit)
	for _, marker := range knownAbbrevMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	if allCapsAbbrev.MatchString(cit) || mixedCaseAbbrev.MatchString(cit) {
		return false
	}
	return true
}
