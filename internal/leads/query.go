package leads

import "strings"

// Query bounds.
const (
	DefaultTargetCount = 100
	MaxTargetCount     = 1000
	DefaultPageSize    = 50
	MaxPageSize        = 200
)

// Query describes one lead search. A zero TargetCount or PageSize means
// "not supplied" and takes the default.
type Query struct {
	Keywords    string `json:"keywords"`
	Location    string `json:"location,omitempty"`
	TargetCount int    `json:"target_count,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// Normalize trims the text fields, applies defaults and clamps the counts
// into [1, max]. Blank keywords yield a ValidationError.
func (q Query) Normalize() (Query, error) {
	q.Keywords = strings.TrimSpace(q.Keywords)
	q.Location = strings.TrimSpace(q.Location)
	if q.Keywords == "" {
		return q, &ValidationError{Field: "keywords", Reason: "is required"}
	}

	q.TargetCount = clamp(q.TargetCount, DefaultTargetCount, MaxTargetCount)
	q.PageSize = clamp(q.PageSize, DefaultPageSize, MaxPageSize)
	return q, nil
}

func clamp(v, def, hi int) int {
	if v == 0 {
		return def
	}
	return max(1, min(v, hi))
}
