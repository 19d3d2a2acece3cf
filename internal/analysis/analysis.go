// Package analysis groups law citations by the cited law and compares
// citations pairwise within each group. Comparing only within groups turns an
// infeasible cartesian product over all citations into a tractable per-law
// problem with identical results: citations of different laws can never be
// same-law matches.
package analysis

import (
	"strings"

	"citematch/internal/citation"
	"citematch/internal/dataset"
	"citematch/internal/lawdb"
)

// CantonalPrefix marks law group keys for laws outside the federal RS
// registry, keyed by their uppercased abbreviation.
const CantonalPrefix = "CANTONAL_"

// IsCantonal reports whether a law group key denotes a cantonal or regional
// law rather than a federal RS number.
func IsCantonal(lawKey string) bool {
	return strings.HasPrefix(lawKey, CantonalPrefix)
}

// CitationInfo is one parsed citation assigned to a law group.
type CitationInfo struct {
	ElementID string
	Citation  string
	Law       string
	Articles  citation.ArticleSet
}

// Unparseable records a citation that could not be assigned to any law.
type Unparseable struct {
	ElementID string `json:"element_id"`
	Citation  string `json:"citation"`
	Reason    string `json:"reason"`
}

// ReasonNoAbbreviation is the unparseable reason for citations where neither
// an abbreviation nor a matching title could be found.
const ReasonNoAbbreviation = "no_abbreviation_found"

// Groups maps law keys (RS numbers or CANTONAL_* keys) to their citations.
type Groups map[string][]CitationInfo

// CitationCount returns the number of citations across all groups.
func (g Groups) CitationCount() int {
	n := 0
	for _, citations := range g {
		n += len(citations)
	}
	return n
}

// FederalCount returns the number of federal law groups.
func (g Groups) FederalCount() int {
	n := 0
	for key := range g {
		if !IsCantonal(key) {
			n++
		}
	}
	return n
}

// CantonalCount returns the number of cantonal law groups.
func (g Groups) CantonalCount() int {
	return len(g) - g.FederalCount()
}

// ExpectedComparisons returns the number of pairwise comparisons the groups
// will produce: sum of n*(n-1)/2 over all groups.
func (g Groups) ExpectedComparisons() int64 {
	var total int64
	for _, citations := range g {
		n := int64(len(citations))
		total += n * (n - 1) / 2
	}
	return total
}

// GroupByLaw assigns every citation of every element to a law group.
// Resolution order: extracted abbreviation against the federal registry,
// then cantonal fallback for unknown abbreviations, then title matching for
// citations without any abbreviation. What remains is unparseable.
func GroupByLaw(elements []dataset.Element, registry *lawdb.Registry) (Groups, []Unparseable) {
	groups := Groups{}
	var unparseable []Unparseable

	for i := range elements {
		element := &elements[i]
		for _, cit := range element.Citation {
			abbrev, found := citation.ExtractAbbreviation(cit)
			if found {
				lawKey, federal := registry.ResolveAbbrev(abbrev)
				if !federal {
					lawKey = CantonalPrefix + strings.ToUpper(abbrev)
				}
				groups[lawKey] = append(groups[lawKey], CitationInfo{
					ElementID: element.ID(),
					Citation:  cit,
					Law:       lawKey,
					Articles:  citation.ExtractArticles(cit),
				})
				continue
			}

			if rs, ok := registry.MatchTitle(cit); ok {
				groups[rs] = append(groups[rs], CitationInfo{
					ElementID: element.ID(),
					Citation:  cit,
					Law:       rs,
					Articles:  citation.ExtractArticles(cit),
				})
				continue
			}

			unparseable = append(unparseable, Unparseable{
				ElementID: element.ID(),
				Citation:  cit,
				Reason:    ReasonNoAbbreviation,
			})
		}
	}
	return groups, unparseable
}
