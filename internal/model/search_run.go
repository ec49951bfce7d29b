package model

import "time"

// SearchSource identifies which surface triggered a search.
type SearchSource string

const (
	SearchSourceAPI      SearchSource = "api"
	SearchSourceDownload SearchSource = "download"
	SearchSourceCLI      SearchSource = "cli"
)

// SearchRun records the metadata of one completed search. It never carries
// lead data.
type SearchRun struct {
	ID          string       `json:"id"`
	Keywords    string       `json:"keywords"`
	Location    string       `json:"location,omitempty"`
	TargetCount int          `json:"target_count"`
	PageSize    int          `json:"page_size"`
	Source      SearchSource `json:"source"`
	LeadCount   int          `json:"lead_count"`
	Pages       int          `json:"pages"`
	DurationMs  int64        `json:"duration_ms"`
	CreatedAt   time.Time    `json:"created_at"`
}
