// Package leads drives paginated contact retrieval and maps upstream
// records onto the Lead schema.
package leads

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-export/internal/metrics"
	"github.com/sells-group/lead-export/internal/model"
	"github.com/sells-group/lead-export/pkg/apollo"
)

// DefaultPageTimeout bounds a single upstream page request.
const DefaultPageTimeout = 30 * time.Second

// Stats summarizes one retrieval.
type Stats struct {
	Pages    int
	Duration time.Duration
}

// Fetcher runs the retrieval loop against an upstream search client. It
// holds no per-request state and is safe for concurrent use.
type Fetcher struct {
	client      apollo.Client
	pageTimeout time.Duration
}

// NewFetcher creates a Fetcher. A non-positive pageTimeout uses
// DefaultPageTimeout.
func NewFetcher(client apollo.Client, pageTimeout time.Duration) *Fetcher {
	if pageTimeout <= 0 {
		pageTimeout = DefaultPageTimeout
	}
	return &Fetcher{client: client, pageTimeout: pageTimeout}
}

// FetchLeads retrieves up to q.TargetCount leads.
func (f *Fetcher) FetchLeads(ctx context.Context, q Query) ([]model.Lead, error) {
	out, _, err := f.FetchLeadsWithStats(ctx, q)
	return out, err
}

// FetchLeadsWithStats is FetchLeads plus paging statistics. Pages are
// requested strictly in order; the loop ends when the target is met, a
// page comes back empty, or a page is shorter than the requested size.
// The first upstream failure aborts the whole call with no partial result.
func (f *Fetcher) FetchLeadsWithStats(ctx context.Context, q Query) ([]model.Lead, Stats, error) {
	start := time.Now()

	q, err := q.Normalize()
	if err != nil {
		return nil, Stats{}, err
	}

	log := zap.L().With(
		zap.String("keywords", q.Keywords),
		zap.String("location", q.Location),
		zap.Int("target_count", q.TargetCount),
		zap.Int("page_size", q.PageSize),
	)

	result := make([]model.Lead, 0, q.TargetCount)
	page := 1
	var stats Stats

	for len(result) < q.TargetCount {
		contacts, err := f.fetchPage(ctx, q, page)
		stats.Pages++
		if err != nil {
			log.Warn("leads: upstream page failed", zap.Int("page", page), zap.Error(err))
			return nil, stats, err
		}

		log.Debug("leads: page fetched", zap.Int("page", page), zap.Int("records", len(contacts)))

		if len(contacts) == 0 {
			break
		}

		for _, raw := range contacts {
			result = append(result, Normalize(raw))
			if len(result) >= q.TargetCount {
				break
			}
		}

		page++

		if len(contacts) < q.PageSize {
			break
		}
	}

	stats.Duration = time.Since(start)
	metrics.LeadsReturned.Add(float64(len(result)))
	log.Info("leads: search complete",
		zap.Int("leads", len(result)),
		zap.Int("pages", stats.Pages),
		zap.Duration("duration", stats.Duration),
	)

	return result, stats, nil
}

// fetchPage issues one bounded upstream call and classifies its failure.
func (f *Fetcher) fetchPage(ctx context.Context, q Query, page int) ([]apollo.RawContact, error) {
	req := apollo.SearchRequest{
		Keywords: q.Keywords,
		Page:     page,
		PerPage:  q.PageSize,
	}
	if q.Location != "" {
		req.PersonLocations = []string{q.Location}
	}

	callCtx, cancel := context.WithTimeout(ctx, f.pageTimeout)
	defer cancel()

	start := time.Now()
	resp, err := f.client.SearchPeople(callCtx, req)
	metrics.UpstreamDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		ue := &UpstreamError{Page: page, Err: err}
		var apiErr *apollo.APIError
		switch {
		case errors.As(err, &apiErr):
			ue.StatusCode = apiErr.StatusCode
			ue.Detail = apiErr.Detail
			metrics.UpstreamRequests.WithLabelValues(metrics.OutcomeStatus).Inc()
		case errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			ue.Timeout = true
			metrics.UpstreamRequests.WithLabelValues(metrics.OutcomeTimeout).Inc()
		default:
			metrics.UpstreamRequests.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return nil, ue
	}

	metrics.UpstreamRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	return resp.Records(), nil
}
