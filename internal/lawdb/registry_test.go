package lawdb

import (
	"os"
	"path/filepath"
	"testing"
)

const tripletsFixture = `{
	"220": {"fr": "CO", "de": "OR", "it": "CO"},
	"281.1": {"fr": "LP", "de": "SchKG", "it": "LEF"},
	"101": {"fr": "Cst.", "de": "BV", "it": "Cost."},
	"173.110": {"fr": "LTF", "de": "BGG", "it": "LTF"}
}`

const titlesFixture = `{
	"title_to_rs": {
		"loi fédérale sur la poursuite pour dettes et la faillite": "281.1",
		"code des obligations": "220",
		"loi fédérale sur le tribunal fédéral": "173.110"
	}
}`

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()
	tripletsPath := filepath.Join(dir, "triplets.json")
	titlesPath := filepath.Join(dir, "titles.json")
	if err := os.WriteFile(tripletsPath, []byte(tripletsFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(titlesPath, []byte(titlesFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(tripletsPath, titlesPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return r
}

func TestResolveAbbrev(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		abbrev string
		rs     string
		ok     bool
	}{
		{"CO", "220", true},
		{"co", "220", true},
		{"SchKG", "281.1", true},
		{"schkg", "281.1", true},
		{"Cst.", "101", true},
		{"cst", "101", true},
		{"BGG", "173.110", true},
		{"281.1", "281.1", true}, // RS number passes through
		{"XYZ", "", false},
	}
	for _, tt := range tests {
		rs, ok := r.ResolveAbbrev(tt.abbrev)
		if rs != tt.rs || ok != tt.ok {
			t.Errorf("ResolveAbbrev(%q) = (%q, %v), want (%q, %v)", tt.abbrev, rs, ok, tt.rs, tt.ok)
		}
	}
}

func TestRegistryLookups(t *testing.T) {
	r := testRegistry(t)

	if r.Size() != 4 {
		t.Errorf("Size = %d, want 4", r.Size())
	}
	if !r.Known("220") || r.Known("999") {
		t.Error("Known gave wrong answers")
	}
	if !r.KnownAbbrev("lef") || r.KnownAbbrev("nope") {
		t.Error("KnownAbbrev gave wrong answers")
	}
	langs, ok := r.Abbreviations("281.1")
	if !ok || langs["de"] != "SchKG" {
		t.Errorf("Abbreviations(281.1) = %v, %v", langs, ok)
	}
}

func TestMatchTitle(t *testing.T) {
	r := testRegistry(t)

	t.Run("full title resolves", func(t *testing.T) {
		rs, ok := r.MatchTitle("art. 286 de la loi fédérale sur la poursuite pour dettes et la faillite")
		if !ok || rs != "281.1" {
			t.Errorf("MatchTitle = (%q, %v), want (281.1, true)", rs, ok)
		}
	})

	t.Run("parenthetical abbreviation ignored", func(t *testing.T) {
		rs, ok := r.MatchTitle("loi sur la poursuite pour dettes et la faillite (LP), art. 92")
		if !ok || rs != "281.1" {
			t.Errorf("MatchTitle = (%q, %v), want (281.1, true)", rs, ok)
		}
	})

	t.Run("too few distinctive words", func(t *testing.T) {
		if rs, ok := r.MatchTitle("art. 5 al. 2"); ok {
			t.Errorf("MatchTitle matched %q on a bare article reference", rs)
		}
	})

	t.Run("unrelated text", func(t *testing.T) {
		if rs, ok := r.MatchTitle("convention collective de travail des maçons genevois"); ok {
			t.Errorf("MatchTitle matched %q on unrelated text", rs)
		}
	})
}

func TestDistinctiveWords(t *testing.T) {
	words := distinctiveWords(normalizeTitle("Loi fédérale sur la poursuite pour dettes et la faillite"))
	want := []string{"poursuite", "dettes", "faillite"}
	if len(words) != len(want) {
		t.Fatalf("distinctiveWords = %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, words[i], want[i])
		}
	}
}
