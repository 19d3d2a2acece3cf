// Package store persists analysis runs in SQLite. The bulky match record
// stream stays on disk as JSONL; the database holds run aggregates, per-law
// group summaries and the unparseable citations for inspection.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"citematch/internal/analysis"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) InitSchema() error {
	ddl := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  label TEXT NOT NULL,
  source_file TEXT NOT NULL,
  total_citations INTEGER NOT NULL,
  parsed_citations INTEGER NOT NULL,
  unparseable_citations INTEGER NOT NULL,
  rescued_citations INTEGER NOT NULL,
  matched_by_title INTEGER NOT NULL,
  unique_laws INTEGER NOT NULL,
  federal_laws INTEGER NOT NULL,
  cantonal_laws INTEGER NOT NULL,
  total_comparisons INTEGER NOT NULL,
  same_article_matches INTEGER NOT NULL,
  elapsed_ms INTEGER NOT NULL,
  matches_path TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS law_groups (
  run_id TEXT NOT NULL,
  law_key TEXT NOT NULL,
  federal INTEGER NOT NULL,
  citations INTEGER NOT NULL,
  UNIQUE(run_id, law_key),
  FOREIGN KEY(run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS unparseable (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL,
  element_id TEXT NOT NULL,
  citation TEXT NOT NULL,
  reason TEXT NOT NULL,
  FOREIGN KEY(run_id) REFERENCES runs(id)
);
`
	_, err := s.db.Exec(ddl)
	return err
}

// Run is one persisted analysis run.
type Run struct {
	ID          string            `json:"id"`
	Stats       analysis.RunStats `json:"stats"`
	MatchesPath string            `json:"matches_path"`
	CreatedAt   time.Time         `json:"created_at"`
}

// LawGroup is the persisted summary of one law group.
type LawGroup struct {
	LawKey    string `json:"law_key"`
	Federal   bool   `json:"federal"`
	Citations int    `json:"citations"`
}

// SaveRun persists a run with its group summaries and unparseable citations
// in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run, groups analysis.Groups, unparseable []analysis.Unparseable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs(id, label, source_file, total_citations, parsed_citations,
  unparseable_citations, rescued_citations, matched_by_title, unique_laws,
  federal_laws, cantonal_laws, total_comparisons, same_article_matches,
  elapsed_ms, matches_path, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
`,
		run.ID, run.Stats.Label, run.Stats.SourceFile,
		run.Stats.TotalCitations, run.Stats.ParsedCitations,
		run.Stats.UnparseableCitations, run.Stats.RescuedCitations,
		run.Stats.MatchedByTitle, run.Stats.UniqueLaws,
		run.Stats.FederalLaws, run.Stats.CantonalLaws,
		run.Stats.TotalComparisons, run.Stats.SameArticleMatches,
		run.Stats.Elapsed.Milliseconds(), run.MatchesPath,
		run.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	groupStmt, err := tx.PrepareContext(ctx, `
INSERT INTO law_groups(run_id, law_key, federal, citations) VALUES(?,?,?,?)
`)
	if err != nil {
		return err
	}
	defer groupStmt.Close()

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		federal := 1
		if analysis.IsCantonal(key) {
			federal = 0
		}
		if _, err := groupStmt.ExecContext(ctx, run.ID, key, federal, len(groups[key])); err != nil {
			return fmt.Errorf("insert law group %s: %w", key, err)
		}
	}

	upStmt, err := tx.PrepareContext(ctx, `
INSERT INTO unparseable(run_id, element_id, citation, reason) VALUES(?,?,?,?)
`)
	if err != nil {
		return err
	}
	defer upStmt.Close()
	for _, up := range unparseable {
		if _, err := upStmt.ExecContext(ctx, run.ID, up.ElementID, up.Citation, up.Reason); err != nil {
			return fmt.Errorf("insert unparseable citation: %w", err)
		}
	}

	return tx.Commit()
}

const runColumns = `id, label, source_file, total_citations, parsed_citations,
  unparseable_citations, rescued_citations, matched_by_title, unique_laws,
  federal_laws, cantonal_laws, total_comparisons, same_article_matches,
  elapsed_ms, matches_path, created_at`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var run Run
	var elapsedMS int64
	var createdAt string
	err := row.Scan(&run.ID, &run.Stats.Label, &run.Stats.SourceFile,
		&run.Stats.TotalCitations, &run.Stats.ParsedCitations,
		&run.Stats.UnparseableCitations, &run.Stats.RescuedCitations,
		&run.Stats.MatchedByTitle, &run.Stats.UniqueLaws,
		&run.Stats.FederalLaws, &run.Stats.CantonalLaws,
		&run.Stats.TotalComparisons, &run.Stats.SameArticleMatches,
		&elapsedMS, &run.MatchesPath, &createdAt)
	if err != nil {
		return nil, err
	}
	run.Stats.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		run.CreatedAt = t
	}
	return &run, nil
}

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = sql.ErrNoRows

// GetRun loads one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id=?`, id)
	return scanRun(row)
}

// RecentRuns lists the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LawGroups lists the group summaries of a run, largest first.
func (s *Store) LawGroups(ctx context.Context, runID string) ([]LawGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT law_key, federal, citations FROM law_groups
WHERE run_id=? ORDER BY citations DESC, law_key
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []LawGroup
	for rows.Next() {
		var g LawGroup
		var federal int
		if err := rows.Scan(&g.LawKey, &federal, &g.Citations); err != nil {
			return nil, err
		}
		g.Federal = federal != 0
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// UnparseableByRun lists the unparseable citations recorded for a run.
func (s *Store) UnparseableByRun(ctx context.Context, runID string, limit int) ([]analysis.Unparseable, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT element_id, citation, reason FROM unparseable
WHERE run_id=? ORDER BY id LIMIT ?
`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analysis.Unparseable
	for rows.Next() {
		var up analysis.Unparseable
		if err := rows.Scan(&up.ElementID, &up.Citation, &up.Reason); err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, rows.Err()
}
