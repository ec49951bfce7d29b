package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lead-export/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS search_runs (
	id           TEXT PRIMARY KEY,
	keywords     TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	target_count INTEGER NOT NULL,
	page_size    INTEGER NOT NULL,
	source       TEXT NOT NULL,
	lead_count   INTEGER NOT NULL,
	pages        INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_search_runs_created_at ON search_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_search_runs_keywords ON search_runs(keywords);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordSearch(ctx context.Context, run *model.SearchRun) error {
	prepareRun(run)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_runs (id, keywords, location, target_count, page_size, source, lead_count, pages, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Keywords, run.Location, run.TargetCount, run.PageSize,
		string(run.Source), run.LeadCount, run.Pages, run.DurationMs, run.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert search run")
}

func (s *SQLiteStore) ListSearches(ctx context.Context, filter SearchFilter) ([]model.SearchRun, error) {
	query := `SELECT id, keywords, location, target_count, page_size, source, lead_count, pages, duration_ms, created_at
		FROM search_runs WHERE 1=1`
	var args []any

	if filter.Keywords != "" {
		query += ` AND keywords = ?`
		args = append(args, filter.Keywords)
	}
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(filter.Source))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list search runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.SearchRun
	for rows.Next() {
		r, err := scanSearchRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list search runs iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSearchRun(row scannable) (*model.SearchRun, error) {
	var r model.SearchRun
	var source string
	err := row.Scan(&r.ID, &r.Keywords, &r.Location, &r.TargetCount, &r.PageSize,
		&source, &r.LeadCount, &r.Pages, &r.DurationMs, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Source = model.SearchSource(source)
	return &r, nil
}

// prepareRun fills in identity and timestamp for a new run.
func prepareRun(run *model.SearchRun) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
}
