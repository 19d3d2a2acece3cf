// Package lawdb loads the registry of Swiss federal laws: RS numbers, their
// abbreviations in the three official languages, and official titles used for
// fuzzy title matching when a citation carries no abbreviation.
package lawdb

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"citematch/internal/citation"
)

// Registry resolves law abbreviations and titles to RS numbers.
type Registry struct {
	abbrevToRS map[string]string
	rsAbbrevs  map[string]map[string]string
	titles     []lawTitle
	titleExact map[string]string
}

type lawTitle struct {
	normalized string
	rs         string
	variants   map[string]struct{}
	wordCount  int
}

// Load reads the abbreviation triplets file and, when titlesPath is non-empty,
// the title mapping file. The triplets file maps RS numbers to per-language
// abbreviations:
//
//	{"220": {"fr": "CO", "de": "OR", "it": "CO"}}
//
// The titles file carries a "title_to_rs" object mapping normalized official
// titles to RS numbers.
func Load(tripletsPath, titlesPath string) (*Registry, error) {
	r := &Registry{
		abbrevToRS: map[string]string{},
		rsAbbrevs:  map[string]map[string]string{},
		titleExact: map[string]string{},
	}

	if err := r.loadTriplets(tripletsPath); err != nil {
		return nil, err
	}
	if titlesPath != "" {
		if err := r.loadTitles(titlesPath); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) loadTriplets(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading abbreviation triplets: %w", err)
	}

	var triplets map[string]map[string]string
	if err := json.Unmarshal(data, &triplets); err != nil {
		return fmt.Errorf("parsing abbreviation triplets %s: %w", path, err)
	}

	// Sort RS numbers so that duplicate abbreviations resolve deterministically.
	rsNumbers := make([]string, 0, len(triplets))
	for rs := range triplets {
		rsNumbers = append(rsNumbers, rs)
	}
	sort.Strings(rsNumbers)

	for _, rs := range rsNumbers {
		langs := triplets[rs]
		r.rsAbbrevs[rs] = langs
		for _, abbrev := range langs {
			key := citation.NormalizeAbbrev(abbrev)
			if key == "" {
				continue
			}
			if _, exists := r.abbrevToRS[key]; !exists {
				r.abbrevToRS[key] = rs
			}
		}
	}
	return nil
}

func (r *Registry) loadTitles(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading law titles: %w", err)
	}

	var doc struct {
		TitleToRS map[string]string `json:"title_to_rs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing law titles %s: %w", path, err)
	}

	titles := make([]string, 0, len(doc.TitleToRS))
	for title := range doc.TitleToRS {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		norm := normalizeTitle(title)
		words := distinctiveWords(norm)
		variants := map[string]struct{}{}
		for _, w := range words {
			for _, v := range stemVariants(w) {
				variants[v] = struct{}{}
			}
		}
		r.titles = append(r.titles, lawTitle{
			normalized: norm,
			rs:         doc.TitleToRS[title],
			variants:   variants,
			wordCount:  len(words),
		})
		if _, exists := r.titleExact[norm]; !exists {
			r.titleExact[norm] = doc.TitleToRS[title]
		}
	}
	return nil
}

// ResolveAbbrev maps an extracted law reference to an RS number. RS numbers
// pass through unchanged, so callers can feed ExtractAbbreviation output
// directly. Lookup ignores case and trailing dots.
func (r *Registry) ResolveAbbrev(abbrev string) (string, bool) {
	if citation.IsRSNumber(abbrev) {
		return abbrev, true
	}
	rs, ok := r.abbrevToRS[citation.NormalizeAbbrev(abbrev)]
	return rs, ok
}

// Abbreviations returns the per-language abbreviations for an RS number.
func (r *Registry) Abbreviations(rs string) (map[string]string, bool) {
	langs, ok := r.rsAbbrevs[rs]
	return langs, ok
}

// Known reports whether rs is a registered RS number.
func (r *Registry) Known(rs string) bool {
	_, ok := r.rsAbbrevs[rs]
	return ok
}

// Size returns the number of registered laws.
func (r *Registry) Size() int {
	return len(r.rsAbbrevs)
}

// KnownAbbrev reports whether the normalized form of abbrev is registered.
func (r *Registry) KnownAbbrev(abbrev string) bool {
	_, ok := r.abbrevToRS[citation.NormalizeAbbrev(abbrev)]
	return ok
}

// AbbrevKeys returns the normalized abbreviation keys, sorted. Used by the
// context rescue pass to probe surrounding text for known abbreviations.
func (r *Registry) AbbrevKeys() []string {
	keys := make([]string, 0, len(r.abbrevToRS))
	for k := range r.abbrevToRS {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) String() string {
	return fmt.Sprintf("lawdb.Registry{laws: %d, abbreviations: %d, titles: %d}",
		len(r.rsAbbrevs), len(r.abbrevToRS), len(r.titles))
}
