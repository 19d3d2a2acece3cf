package lawdb

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball"
)

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// normalizeTitle prepares a title or citation for word comparison: drops
// parenthetical abbreviations, lowercases, collapses whitespace and trims
// trailing punctuation.
func normalizeTitle(s string) string {
	s = parenthetical.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".,;: ")
}

// titleStopWords are boilerplate words shared by nearly every law title in
// French, German and Italian. They carry no discriminating power.
var titleStopWords = map[string]struct{}{
	"fédérale": {}, "fédéral": {}, "loi": {}, "ordonnance": {},
	"arrêté": {}, "concernant": {}, "relative": {}, "relatif": {},
	"portant": {}, "suisse": {}, "certaines": {}, "certains": {},
	"bundesgesetz": {}, "verordnung": {}, "über": {}, "betreffend": {},
	"schweizerische": {}, "schweizerischen": {}, "gewisse": {},
	"legge": {}, "federale": {}, "ordinanza": {}, "decreto": {},
	"concernente": {}, "svizzera": {}, "della": {}, "delle": {},
	"sulla": {}, "sulle": {}, "degli": {}, "dell'": {},
}

// distinctiveWords extracts the words of a normalized title that are worth
// matching on: longer than four runes and not title boilerplate.
func distinctiveWords(normalized string) []string {
	var out []string
	for _, w := range strings.Fields(normalized) {
		w = strings.Trim(w, ".,;:'’\"«»")
		if utf8.RuneCountInString(w) <= 4 {
			continue
		}
		if _, stop := titleStopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

var stemLanguages = []string{"french", "german", "italian"}

// stemVariants returns the surface form of a word plus its stems in the three
// official languages. Stemming bridges inflection differences between citation
// text and registry titles ("poursuites" vs "poursuite").
func stemVariants(word string) []string {
	variants := []string{word}
	seen := map[string]struct{}{word: {}}
	for _, lang := range stemLanguages {
		stem, err := snowball.Stem(word, lang, false)
		if err != nil || stem == "" {
			continue
		}
		if _, dup := seen[stem]; dup {
			continue
		}
		seen[stem] = struct{}{}
		variants = append(variants, stem)
	}
	return variants
}

// minTitleLength filters out registry titles too short to match reliably.
const minTitleLength = 20

// MatchTitle resolves a citation that embeds a law title ("art. 286 de la loi
// fédérale sur la poursuite pour dettes et la faillite") to an RS number by
// fuzzy word overlap against the registered official titles.
//
// A citation needs at least two distinctive words to qualify. Against each
// title, a citation with three or fewer distinctive words must match all of
// them; longer citations must match at least 70% (never fewer than two). The
// title matching the most words wins.
func (r *Registry) MatchTitle(citationText string) (string, bool) {
	norm := normalizeTitle(citationText)
	if rs, ok := r.titleExact[norm]; ok {
		return rs, true
	}

	words := distinctiveWords(norm)
	if len(words) < 2 {
		return "", false
	}

	required := len(words)
	if len(words) > 3 {
		required = (len(words)*7 + 9) / 10
		if required < 2 {
			required = 2
		}
	}

	bestRS := ""
	bestCount := 0
	for _, title := range r.titles {
		if utf8.RuneCountInString(title.normalized) < minTitleLength {
			continue
		}
		count := 0
		for _, w := range words {
			if titleContains(title, w) {
				count++
			}
		}
		if count >= required && count > bestCount {
			bestCount = count
			bestRS = title.rs
		}
	}
	if bestRS == "" {
		return "", false
	}
	return bestRS, true
}

func titleContains(title lawTitle, word string) bool {
	for _, v := range stemVariants(word) {
		if _, ok := title.variants[v]; ok {
			return true
		}
	}
	return false
}
