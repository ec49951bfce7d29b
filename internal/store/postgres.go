package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-export/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS search_runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	keywords     TEXT NOT NULL,
	location     TEXT NOT NULL DEFAULT '',
	target_count INTEGER NOT NULL,
	page_size    INTEGER NOT NULL,
	source       TEXT NOT NULL,
	lead_count   INTEGER NOT NULL,
	pages        INTEGER NOT NULL,
	duration_ms  BIGINT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_search_runs_created_at ON search_runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_search_runs_keywords ON search_runs(keywords);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) RecordSearch(ctx context.Context, run *model.SearchRun) error {
	prepareRun(run)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_runs (id, keywords, location, target_count, page_size, source, lead_count, pages, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.Keywords, run.Location, run.TargetCount, run.PageSize,
		string(run.Source), run.LeadCount, run.Pages, run.DurationMs, run.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert search run")
}

func (s *PostgresStore) ListSearches(ctx context.Context, filter SearchFilter) ([]model.SearchRun, error) {
	query := `SELECT id, keywords, location, target_count, page_size, source, lead_count, pages, duration_ms, created_at
		FROM search_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Keywords != "" {
		query += fmt.Sprintf(` AND keywords = $%d`, argIdx)
		args = append(args, filter.Keywords)
		argIdx++
	}
	if filter.Source != "" {
		query += fmt.Sprintf(` AND source = $%d`, argIdx)
		args = append(args, string(filter.Source))
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, filter.limit())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list search runs")
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		r, err := scanSearchRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan search run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list search runs iterate")
}
