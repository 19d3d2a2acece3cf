package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"citematch/internal/citation"
	"citematch/internal/dataset"
	"citematch/internal/lawdb"
	"citematch/internal/normalize"
)

// DefaultContextWindow is the number of characters pulled around a citation
// when probing the decision text for a law reference. Wide enough to capture
// a full law title preceding the citation.
const DefaultContextWindow = 300

// lowerRunes lowercases rune by rune, so rune offsets stay aligned with the
// original text.
func lowerRunes(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// ExtractContext locates cit inside content and returns the complete citation
// (extended to balance any unclosed parentheses) together with the
// surrounding context window. Lookup is case-insensitive; when the citation
// does not appear verbatim a whitespace-normalized search is tried.
func ExtractContext(cit, content string, window int) (complete, context string, ok bool) {
	citLower := lowerRunes(cit)
	contentLower := lowerRunes(content)

	if idx := strings.Index(contentLower, citLower); idx >= 0 {
		runes := []rune(content)
		start := utf8.RuneCountInString(contentLower[:idx])
		end := start + utf8.RuneCountInString(cit)
		if end > len(runes) {
			end = len(runes)
		}

		if balance := strings.Count(cit, "(") - strings.Count(cit, ")"); balance > 0 {
			for i := end; i < len(runes); i++ {
				switch runes[i] {
				case '(':
					balance++
				case ')':
					balance--
				}
				if balance == 0 {
					end = i + 1
					break
				}
			}
		}

		ctxStart := start - window
		if ctxStart < 0 {
			ctxStart = 0
		}
		ctxEnd := end + window
		if ctxEnd > len(runes) {
			ctxEnd = len(runes)
		}
		return string(runes[start:end]), string(runes[ctxStart:ctxEnd]), true
	}

	// Whitespace-normalized fallback: OCR and PDF extraction often mangle
	// spacing between the citation list and the decision text.
	citNorm := strings.Join(strings.Fields(citLower), " ")
	contentNorm := strings.Join(strings.Fields(contentLower), " ")
	pos := strings.Index(contentNorm, citNorm)
	if pos < 0 || citNorm == "" {
		return "", "", false
	}

	words := strings.Fields(content)
	wordsBefore := len(strings.Fields(contentNorm[:pos]))
	wordEnd := wordsBefore + len(strings.Fields(citNorm))
	if wordEnd > len(words) {
		wordEnd = len(words)
	}

	citText := strings.Join(words[wordsBefore:wordEnd], " ")
	if balance := strings.Count(citText, "(") - strings.Count(citText, ")"); balance > 0 {
	extend:
		for i := wordEnd; i < len(words); i++ {
			wordEnd = i + 1
			for _, r := range words[i] {
				switch r {
				case '(':
					balance++
				case ')':
					balance--
				}
				if balance == 0 {
					break extend
				}
			}
		}
	}

	const contextWords = 20
	ctxStart := wordsBefore - contextWords
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := wordEnd + contextWords
	if ctxEnd > len(words) {
		ctxEnd = len(words)
	}
	return strings.Join(words[wordsBefore:wordEnd], " "),
		strings.Join(words[ctxStart:ctxEnd], " "), true
}

// Rescued records a citation recovered by context lookup.
type Rescued struct {
	ElementID string `json:"element_id"`
	Original  string `json:"original"`
	Fixed     string `json:"fixed"`
	Law       string `json:"law"`
	ByTitle   bool   `json:"by_title"`
}

// RescueWithContext retries unparseable citations against the decision text
// they came from. For each citation it pulls the surrounding context, fixes
// the spacing, and tries abbreviation extraction on the completed citation and
// its context, then title matching on both. Only laws known to the registry
// qualify: a rescue that invents a law would poison the groups. Recovered
// citations are appended to their law group; the rest is returned.
func RescueWithContext(
	elements []dataset.Element,
	groups Groups,
	unparseable []Unparseable,
	registry *lawdb.Registry,
	window int,
) (still []Unparseable, rescued []Rescued) {
	if window <= 0 {
		window = DefaultContextWindow
	}

	contentByID := make(map[string]string, len(elements))
	for i := range elements {
		if elements[i].Content != "" {
			contentByID[elements[i].ID()] = elements[i].Content
		}
	}

	for _, up := range unparseable {
		if up.Reason != ReasonNoAbbreviation {
			still = append(still, up)
			continue
		}
		content, ok := contentByID[up.ElementID]
		if !ok {
			still = append(still, up)
			continue
		}
		complete, context, found := ExtractContext(up.Citation, content, window)
		if !found {
			still = append(still, up)
			continue
		}

		normalized, _, _ := normalize.Citation(complete)

		lawKey := ""
		byTitle := false
		if abbrev, ok := citation.ExtractAbbreviation(normalized); ok {
			if rs, known := registry.ResolveAbbrev(abbrev); known {
				lawKey = rs
			}
		}
		if lawKey == "" {
			if abbrev, ok := citation.ExtractAbbreviation(context); ok {
				if rs, known := registry.ResolveAbbrev(abbrev); known {
					lawKey = rs
				}
			}
		}
		if lawKey == "" {
			if rs, ok := registry.MatchTitle(normalized); ok {
				lawKey = rs
				byTitle = true
			} else if rs, ok := registry.MatchTitle(context); ok {
				lawKey = rs
				byTitle = true
			}
		}
		if lawKey == "" {
			still = append(still, up)
			continue
		}

		groups[lawKey] = append(groups[lawKey], CitationInfo{
			ElementID: up.ElementID,
			Citation:  normalized,
			Law:       lawKey,
			Articles:  citation.ExtractArticles(normalized),
		})
		rescued = append(rescued, Rescued{
			ElementID: up.ElementID,
			Original:  up.Citation,
			Fixed:     lawKey + " " + normalized,
			Law:       lawKey,
			ByTitle:   byTitle,
		})
	}
	return still, rescued
}
