package normalize

import (
	"reflect"
	"testing"
)

func TestCitation(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		want      string
		changed   bool
		digitOnly bool
	}{
		{"glued a after digit", "43 aCP", "43 a CP", true, false},
		{"glued a after space", "Art. 41 aBauR", "Art. 41 a BauR", true, false},
		{"glued article number", "Art.6VwVG", "Art. 6 VwVG", true, false},
		{"trailing footnote", "Loi sur l'administration3", "Loi sur l'administration", true, false},
		{"multi-digit footnote", "ordonnance12", "ordonnance", true, false},
		{"already clean", "Art. 41 CO", "Art. 41 CO", false, false},
		{"digit only", "125", "125", false, true},
		{"decimal only", "3.14", "3.14", false, true},
		{"digits with spaces", " 12 34 ", " 12 34 ", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, digitOnly := Citation(tt.in)
			if got != tt.want || changed != tt.changed || digitOnly != tt.digitOnly {
				t.Errorf("Citation(%q) = (%q, %v, %v), want (%q, %v, %v)",
					tt.in, got, changed, digitOnly, tt.want, tt.changed, tt.digitOnly)
			}
		})
	}
}

func TestGarbage(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		reason GarbageReason
		bad    bool
	}{
		{"fragment marker", "Abs. 3 lit. b", ReasonFragmentMarker, true},
		{"date without article", "14 décembre 1990", ReasonDateReference, true},
		{"law title with date and article", "Art. 3 de la loi du 14 décembre 1990", "", false},
		{"page reference", "207ff.", ReasonPageReference, true},
		{"page reference single f", "218 f", ReasonPageReference, true},
		{"incomplete ending", "art. 5 de la", ReasonIncompleteFragment, true},
		{"dangling art", "voir Art", ReasonIncompleteFragment, true},
		{"proposal", "Motion Keller du Conseil national", ReasonLegislativeProposal, true},
		{"long prose without article", "Les dispositions transitoires de la présente ordonnance demeurent réservées", ReasonNonCitationText, true},
		{"valid citation", "Art. 41 CO", "", false},
		{"valid long citation", "Art. 122 de la loi fédérale sur le Tribunal fédéral (LTF)", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, bad := Garbage(tt.in)
			if bad != tt.bad || reason != tt.reason {
				t.Errorf("Garbage(%q) = (%q, %v), want (%q, %v)", tt.in, reason, bad, tt.reason, tt.bad)
			}
		})
	}
}

func TestEnrichArticleOnly(t *testing.T) {
	t.Run("single law enriches", func(t *testing.T) {
		in := []string{"Art. 286 SchKG", "art. 128", "art. 130"}
		got, n := EnrichArticleOnly(in)
		if n != 2 {
			t.Fatalf("enriched %d citations, want 2", n)
		}
		want := []string{"Art. 286 SchKG", "art. 128 SCHKG", "art. 130 SCHKG"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("EnrichArticleOnly = %v, want %v", got, want)
		}
	})

	t.Run("multiple laws leave citations untouched", func(t *testing.T) {
		in := []string{"Art. 286 SchKG", "Art. 41 cp", "art. 128"}
		got, n := EnrichArticleOnly(in)
		if n != 0 {
			t.Errorf("enriched %d citations, want 0", n)
		}
		if !reflect.DeepEqual(got, in) {
			t.Errorf("citations changed: %v", got)
		}
	})

	t.Run("rs number as anchor", func(t *testing.T) {
		in := []string{"RS 281.1, art. 5", "art. 9"}
		got, n := EnrichArticleOnly(in)
		if n != 1 {
			t.Fatalf("enriched %d citations, want 1", n)
		}
		if got[1] != "art. 9 RS 281.1" {
			t.Errorf("got %q", got[1])
		}
	})

	t.Run("no law found", func(t *testing.T) {
		in := []string{"art. 128", "art. 9"}
		_, n := EnrichArticleOnly(in)
		if n != 0 {
			t.Errorf("enriched %d citations, want 0", n)
		}
	})
}

func TestIsShortFragment(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"art. 5 let. b", true},
		{"Art. 41 CO", false},          // all-caps abbreviation
		{"Art. 12 VwVG", false},        // mixed-case abbreviation
		{"art. 3 stgb", false},         // known abbreviation marker
		{"Loi fédérale sur la poursuite pour dettes", false}, // long enough
	}
	for _, tt := range tests {
		if got := IsShortFragment(tt.in); got != tt.want {
			t.Errorf("IsShortFragment(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCitations(t *testing.T) {
	in := []string{
		"43 aCP",   // normalized, kept
		"125",      // digit-only, dropped
		"207ff.",   // garbage, dropped
		"art. 128", // article-only, enriched with CP
	}
	got, stats := Citations(in)

	want := []string{"43 a CP", "art. 128 CP"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Citations = %v, want %v", got, want)
	}
	if stats.Processed != 4 || stats.Kept != 2 || stats.Changed != 1 ||
		stats.RemovedDigitOnly != 1 || stats.RemovedGarbage != 1 || stats.Enriched != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
