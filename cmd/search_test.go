package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-export/internal/leads"
	"github.com/sells-group/lead-export/internal/model"
	"github.com/sells-group/lead-export/internal/store"
)

type stubFetcher struct {
	result []model.Lead
	err    error
	calls  int
	lastQ  leads.Query
}

func (s *stubFetcher) FetchLeadsWithStats(_ context.Context, q leads.Query) ([]model.Lead, leads.Stats, error) {
	s.calls++
	s.lastQ = q
	return s.result, leads.Stats{Pages: 2, Duration: 1500 * time.Millisecond}, s.err
}

func sampleLeads() []model.Lead {
	return []model.Lead{
		{FirstName: "Ada", LastName: "Lovelace", CompanyName: "Acme, Inc.", Email: "ada@acme.example"},
		{FirstName: "Grace", Title: "Rear Admiral"},
	}
}

func TestRunSearch_JSONToStdout(t *testing.T) {
	f := &stubFetcher{result: sampleLeads()}
	var out bytes.Buffer

	err := runSearch(context.Background(), f, nil, searchOptions{
		Query:  leads.Query{Keywords: " designer ", TargetCount: 5000},
		Format: "json",
	}, &out)
	require.NoError(t, err)

	var got []model.Lead
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, sampleLeads(), got)
	assert.Equal(t, "designer", f.lastQ.Keywords)
	assert.Equal(t, leads.MaxTargetCount, f.lastQ.TargetCount)
}

func TestRunSearch_EmptyResultIsJSONArray(t *testing.T) {
	var out bytes.Buffer
	err := runSearch(context.Background(), &stubFetcher{}, nil, searchOptions{
		Query:  leads.Query{Keywords: "nobody"},
		Format: "json",
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out.String())
}

func TestRunSearch_CSVToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	var stdout bytes.Buffer

	err := runSearch(context.Background(), &stubFetcher{result: sampleLeads()}, nil, searchOptions{
		Query:  leads.Query{Keywords: "designer"},
		Format: "CSV",
		Output: path,
	}, &stdout)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Acme, Inc."`)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, model.LeadColumns, records[0])
}

func TestRunSearch_XLSX(t *testing.T) {
	var out bytes.Buffer
	err := runSearch(context.Background(), &stubFetcher{result: sampleLeads()}, nil, searchOptions{
		Query:  leads.Query{Keywords: "designer"},
		Format: "xlsx",
	}, &out)
	require.NoError(t, err)

	wb, err := xlsx.OpenBinary(out.Bytes())
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Len(t, wb.Sheets[0].Rows, 3)
}

func TestRunSearch_Errors(t *testing.T) {
	tests := []struct {
		name      string
		opts      searchOptions
		fetchErr  error
		wantErr   string
		wantCalls int
	}{
		{
			name:    "bad_format",
			opts:    searchOptions{Query: leads.Query{Keywords: "x"}, Format: "pdf"},
			wantErr: "unsupported format",
		},
		{
			name:    "missing_keywords",
			opts:    searchOptions{Query: leads.Query{Keywords: "  "}, Format: "json"},
			wantErr: "keywords is required",
		},
		{
			name:      "upstream",
			opts:      searchOptions{Query: leads.Query{Keywords: "x"}, Format: "json"},
			fetchErr:  &leads.UpstreamError{Page: 1, StatusCode: 401, Detail: "Invalid access credentials."},
			wantErr:   "Invalid access credentials.",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFetcher{err: tt.fetchErr}
			var out bytes.Buffer

			err := runSearch(context.Background(), f, nil, tt.opts, &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantCalls, f.calls)
			assert.Empty(t, out.String(), "nothing written on failure")
		})
	}
}

func TestRunSearch_RecordsHistory(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	var out bytes.Buffer
	err = runSearch(context.Background(), &stubFetcher{result: sampleLeads()}, st, searchOptions{
		Query:  leads.Query{Keywords: "designer", Location: "Austin", PageSize: 25},
		Format: "json",
	}, &out)
	require.NoError(t, err)

	runs, err := st.ListSearches(context.Background(), store.SearchFilter{Source: model.SearchSourceCLI})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "designer", runs[0].Keywords)
	assert.Equal(t, "Austin", runs[0].Location)
	assert.Equal(t, leads.DefaultTargetCount, runs[0].TargetCount)
	assert.Equal(t, 25, runs[0].PageSize)
	assert.Equal(t, 2, runs[0].LeadCount)
	assert.Equal(t, 2, runs[0].Pages)
	assert.Equal(t, int64(1500), runs[0].DurationMs)
}
