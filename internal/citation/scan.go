package citation

import (
	"regexp"
	"strings"
)

// candidatePattern matches a citation candidate in running text: an article
// marker with a number, optionally a range, structural markers (al./Abs./lit.)
// and a trailing law reference (abbreviation or RS/SR number).
var candidatePattern = regexp.MustCompile(
	`\b(?i:art)\.?\s*\d+` + // article number
		`(?:\s*(?i:-|à|bis|ss|ff|sqq?)\s*\d*)?` + // range or open range
		`(?:\s+(?i:al|abs|lit|let|ch|ziff|bst)\.?\s*\d*[a-z]?)*` + // structural markers
		`(?:\s+(?:[A-ZÄÖÜ][A-ZÄÖÜa-zäöü]{1,15}|(?i:RS|SR)\s*\d+(?:\.\d+)*))?`, // law reference
)

// Scan finds citation candidates in free text, in document order.
// Candidates whose trailing word is a stop word are truncated, not dropped:
// "art. 12 du" yields "art. 12".
func Scan(text string) []string {
	matches := candidatePattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		fields := strings.Fields(m)
		if len(fields) > 1 {
			last := fields[len(fields)-1]
			if IsCommonWord(last) && !IsRSNumber(last) {
				m = strings.TrimSpace(strings.TrimSuffix(m, last))
			}
		}
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
