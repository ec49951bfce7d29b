// Package store persists search history: the parameters and outcome of each
// completed search. Lead data is never stored.
package store

import (
	"context"

	"github.com/sells-group/lead-export/internal/model"
)

// defaultListLimit caps history listings when no limit is given.
const defaultListLimit = 50

// SearchFilter specifies criteria for listing searches.
type SearchFilter struct {
	Keywords string             `json:"keywords,omitempty"`
	Source   model.SearchSource `json:"source,omitempty"`
	Limit    int                `json:"limit,omitempty"`
}

// Store defines the persistence interface for search history.
type Store interface {
	// RecordSearch inserts a run, assigning ID and CreatedAt when unset.
	RecordSearch(ctx context.Context, run *model.SearchRun) error
	// ListSearches returns runs newest first.
	ListSearches(ctx context.Context, filter SearchFilter) ([]model.SearchRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func (f SearchFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}
