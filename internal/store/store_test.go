package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"citematch/internal/analysis"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return s
}

func sampleRun(id, label string) *Run {
	return &Run{
		ID: id,
		Stats: analysis.RunStats{
			Label:                label,
			SourceFile:           "data.csv",
			TotalCitations:       45020,
			ParsedCitations:      39512,
			UnparseableCitations: 5508,
			RescuedCitations:     120,
			UniqueLaws:           42,
			FederalLaws:          30,
			CantonalLaws:         12,
			TotalComparisons:     123456,
			SameArticleMatches:   7890,
			Elapsed:              90 * time.Second,
		},
		MatchesPath: "/data/matches_" + id + ".jsonl",
		CreatedAt:   time.Now(),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	groups := analysis.Groups{
		"220":             make([]analysis.CitationInfo, 3),
		"CANTONAL_LPROST": make([]analysis.CitationInfo, 1),
	}
	unparseable := []analysis.Unparseable{
		{ElementID: "u1_1", Citation: "considérant 5", Reason: analysis.ReasonNoAbbreviation},
	}

	if err := s.SaveRun(ctx, sampleRun("r1", "original"), groups, unparseable); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	run, err := s.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Stats.TotalCitations != 45020 || run.Stats.ParsedCitations != 39512 {
		t.Errorf("stats roundtrip: %+v", run.Stats)
	}
	if run.Stats.Elapsed != 90*time.Second {
		t.Errorf("Elapsed = %v", run.Stats.Elapsed)
	}
	if run.MatchesPath != "/data/matches_r1.jsonl" {
		t.Errorf("MatchesPath = %q", run.MatchesPath)
	}

	if _, err := s.GetRun(ctx, "missing"); err == nil {
		t.Error("GetRun on a missing id should fail")
	}
}

func TestLawGroupsAndUnparseable(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	groups := analysis.Groups{
		"220":             make([]analysis.CitationInfo, 5),
		"281.1":           make([]analysis.CitationInfo, 2),
		"CANTONAL_LPROST": make([]analysis.CitationInfo, 1),
	}
	unparseable := []analysis.Unparseable{
		{ElementID: "u1_1", Citation: "considérant 5", Reason: analysis.ReasonNoAbbreviation},
		{ElementID: "u2_3", Citation: "ibidem", Reason: analysis.ReasonNoAbbreviation},
	}
	if err := s.SaveRun(ctx, sampleRun("r1", "original"), groups, unparseable); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	saved, err := s.LawGroups(ctx, "r1")
	if err != nil {
		t.Fatalf("LawGroups: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("got %d groups, want 3", len(saved))
	}
	if saved[0].LawKey != "220" || saved[0].Citations != 5 || !saved[0].Federal {
		t.Errorf("largest group = %+v", saved[0])
	}
	for _, g := range saved {
		if g.LawKey == "CANTONAL_LPROST" && g.Federal {
			t.Error("cantonal group marked federal")
		}
	}

	ups, err := s.UnparseableByRun(ctx, "r1", 0)
	if err != nil {
		t.Fatalf("UnparseableByRun: %v", err)
	}
	if len(ups) != 2 || ups[0].Citation != "considérant 5" {
		t.Errorf("unparseable roundtrip: %+v", ups)
	}
}

func TestRecentRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := sampleRun("r1", "original")
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := sampleRun("r2", "preprocessed")

	if err := s.SaveRun(ctx, first, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, second, nil, nil); err != nil {
		t.Fatal(err)
	}

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "r2" || runs[1].ID != "r1" {
		t.Errorf("order = %s, %s, want r2, r1", runs[0].ID, runs[1].ID)
	}
}
