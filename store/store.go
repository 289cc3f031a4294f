// Package store persists medium assignments in a SQLite database so that
// later analyses can join cell lines to canonical media with plain SQL.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbocation/ccleprep/extract"
	"github.com/carbocation/ccleprep/medium"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v3"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS medium_assignment (
	raw     TEXT PRIMARY KEY,
	cleaned TEXT NOT NULL,
	label   TEXT,
	matches TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cell_line_medium (
	cell_line TEXT NOT NULL,
	raw       TEXT NOT NULL,
	medium    TEXT NOT NULL,
	mapped    INTEGER NOT NULL,
	PRIMARY KEY (cell_line, raw)
);
`

// AssignmentRecord is one row of medium_assignment. Label is NULL for
// unmapped media.
type AssignmentRecord struct {
	Raw     string      `db:"raw"`
	Cleaned string      `db:"cleaned"`
	Label   null.String `db:"label"`
	Matches string      `db:"matches"`
}

// CellLineRecord is one row of cell_line_medium.
type CellLineRecord struct {
	CellLine string `db:"cell_line"`
	Raw      string `db:"raw"`
	Medium   string `db:"medium"`
	Mapped   bool   `db:"mapped"`
}

type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite file at path, creating it and its tables if
// needed.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveAssignments replaces any earlier assignment for the same raw text.
func (s *Store) SaveAssignments(ctx context.Context, assignments []medium.Assignment) error {
	records := make([]AssignmentRecord, 0, len(assignments))
	for _, a := range assignments {
		records = append(records, AssignmentRecord{
			Raw:     a.Raw,
			Cleaned: a.Cleaned,
			Label:   a.Label,
			Matches: strings.Join(a.Matches, ";"),
		})
	}

	return s.insert(ctx, `INSERT OR REPLACE INTO medium_assignment (raw, cleaned, label, matches)
		VALUES (:raw, :cleaned, :label, :matches)`, len(records), func(i int) interface{} { return &records[i] })
}

// SaveCellLines stores one row per cell line and raw medium text. A cell line
// annotated twice with different media keeps both rows; saving the same pair
// again replaces it.
func (s *Store) SaveCellLines(ctx context.Context, lines []extract.CellLineMedium) error {
	records := make([]CellLineRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, CellLineRecord{
			CellLine: l.CellLine,
			Raw:      l.Raw,
			Medium:   l.Medium,
			Mapped:   l.Mapped,
		})
	}

	return s.insert(ctx, `INSERT OR REPLACE INTO cell_line_medium (cell_line, raw, medium, mapped)
		VALUES (:cell_line, :raw, :medium, :mapped)`, len(records), func(i int) interface{} { return &records[i] })
}

// insert runs query once per record inside a single transaction.
func (s *Store) insert(ctx context.Context, query string, n int, record func(int) interface{}) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		if _, err := tx.NamedExecContext(ctx, query, record(i)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Assignments returns every stored assignment ordered by raw text.
func (s *Store) Assignments(ctx context.Context) ([]AssignmentRecord, error) {
	out := []AssignmentRecord{}
	err := s.db.SelectContext(ctx, &out, "SELECT raw, cleaned, label, matches FROM medium_assignment ORDER BY raw")
	return out, err
}

// CellLines returns every stored row ordered by cell line, then raw text.
func (s *Store) CellLines(ctx context.Context) ([]CellLineRecord, error) {
	out := []CellLineRecord{}
	err := s.db.SelectContext(ctx, &out, "SELECT cell_line, raw, medium, mapped FROM cell_line_medium ORDER BY cell_line, raw")
	return out, err
}

// MediumCounts returns the number of cell lines per medium.
func (s *Store) MediumCounts(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		Medium string `db:"medium"`
		N      int    `db:"n"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, "SELECT medium, COUNT(*) AS n FROM cell_line_medium GROUP BY medium"); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Medium] = r.N
	}

	return out, nil
}
