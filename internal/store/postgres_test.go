package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-export/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

var searchRunColumns = []string{
	"id", "keywords", "location", "target_count", "page_size",
	"source", "lead_count", "pages", "duration_ms", "created_at",
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS search_runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordSearch(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO search_runs`).
		WithArgs(pgxmock.AnyArg(), "designer", "", 120, 50, "api", 120, 3, int64(900), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run := &model.SearchRun{
		Keywords:    "designer",
		TargetCount: 120,
		PageSize:    50,
		Source:      model.SearchSourceAPI,
		LeadCount:   120,
		Pages:       3,
		DurationMs:  900,
	}
	require.NoError(t, s.RecordSearch(context.Background(), run))
	assert.NotEmpty(t, run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordSearch_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO search_runs`).
		WillReturnError(assert.AnError)

	err := s.RecordSearch(context.Background(), &model.SearchRun{Keywords: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: insert search run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSearches(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT id, keywords, location.*FROM search_runs WHERE true AND keywords = \$1 AND source = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs("designer", "download", 10).
		WillReturnRows(pgxmock.NewRows(searchRunColumns).
			AddRow("run-2", "designer", "Austin", 100, 50, "download", 42, 1, int64(120), now).
			AddRow("run-1", "designer", "", 20, 20, "download", 20, 1, int64(80), now.Add(-time.Hour)))

	runs, err := s.ListSearches(context.Background(), SearchFilter{
		Keywords: "designer",
		Source:   model.SearchSourceDownload,
		Limit:    10,
	})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "Austin", runs[0].Location)
	assert.Equal(t, 42, runs[0].LeadCount)
	assert.Equal(t, model.SearchSourceDownload, runs[0].Source)
	assert.Equal(t, now, runs[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSearches_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM search_runs WHERE true ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(defaultListLimit).
		WillReturnRows(pgxmock.NewRows(searchRunColumns))

	runs, err := s.ListSearches(context.Background(), SearchFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSearches_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM search_runs`).
		WillReturnError(assert.AnError)

	_, err := s.ListSearches(context.Background(), SearchFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: list search runs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CloseWithoutPool(t *testing.T) {
	s := &PostgresStore{}
	assert.NoError(t, s.Close())
}
