package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// GarbageReason classifies why a citation is filtered out before parsing.
type GarbageReason string

const (
	ReasonFragmentMarker      GarbageReason = "fragment_marker"
	ReasonDateReference       GarbageReason = "date_reference"
	ReasonPageReference       GarbageReason = "page_reference"
	ReasonIncompleteFragment  GarbageReason = "incomplete_fragment"
	ReasonLegislativeProposal GarbageReason = "legislative_proposal"
	ReasonNonCitationText     GarbageReason = "non_citation_text"
)

var (
	leadingMarker  = regexp.MustCompile(`^(Abs\.|Al\.|al\.|lit\.|let\.|Lit\.|Let\.)\s`)
	hasArticleRef  = regexp.MustCompile(`\b[Aa]rt\.?\s*\d`)
	pageReference  = regexp.MustCompile(`^\d+\s*ff?\.?$`)
	danglingMarker = regexp.MustCompile(`(Abs|abs|Art|art)\s*$`)
)

// monthNames in French, German and Italian. A citation that is mainly a date
// (month name, no article reference) is not a law citation. Law titles that
// embed a date ("loi du 14 décembre 1990") keep their article marker and pass.
var monthNames = []string{
	"januar", "februar", "märz", "april", "mai", "juni", "juli", "august",
	"september", "oktober", "november", "dezember",
	"janvier", "février", "mars", "avril", "juin", "juillet", "août",
	"septembre", "octobre", "novembre", "décembre",
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio",
	"agosto", "settembre", "ottobre", "dicembre",
}

var incompleteEndings = []string{
	"de la", "du", "des", "de l'", "della", "del", "ist (", "sind (",
	"sowie ", "et art", "e art",
}

var proposalWords = []string{
	"proposition", "motion", "postulat", "initiative", "anfrage",
}

// maxTextualLength is the rune count beyond which text without an article
// reference is treated as prose rather than a citation.
const maxTextualLength = 50

// Garbage classifies a citation that should be filtered out entirely.
// Returns the reason and true when the citation is garbage.
func Garbage(cit string) (GarbageReason, bool) {
	lower := strings.ToLower(cit)

	if leadingMarker.MatchString(cit) {
		return ReasonFragmentMarker, true
	}

	hasMonth := false
	for _, m := range monthNames {
		if strings.Contains(lower, m) {
			hasMonth = true
			break
		}
	}
	if hasMonth && !hasArticleRef.MatchString(cit) {
		return ReasonDateReference, true
	}

	if pageReference.MatchString(cit) {
		return ReasonPageReference, true
	}

	for _, ending := range incompleteEndings {
		if strings.HasSuffix(cit, ending) {
			return ReasonIncompleteFragment, true
		}
	}

	for _, w := range proposalWords {
		if strings.Contains(lower, w) {
			return ReasonLegislativeProposal, true
		}
	}

	if danglingMarker.MatchString(cit) {
		return ReasonIncompleteFragment, true
	}

	if utf8.RuneCountInString(cit) > maxTextualLength && !hasArticleRef.MatchString(cit) {
		return ReasonNonCitationText, true
	}

	return "", false
}
