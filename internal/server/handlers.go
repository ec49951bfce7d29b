package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-export/internal/export"
	"github.com/sells-group/lead-export/internal/leads"
	"github.com/sells-group/lead-export/internal/model"
	"github.com/sells-group/lead-export/internal/store"
)

// maxBodyBytes caps the JSON search body.
const maxBodyBytes = 1 << 16

// historyRecordTimeout bounds the history insert after a search.
const historyRecordTimeout = 5 * time.Second

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "page unavailable", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if err := s.validateRequest(req); err != nil {
		s.writeSearchError(w, err)
		return
	}

	result, ok := s.runSearch(w, r, req, model.SearchSourceAPI)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchQuery(r.URL.Query())
	if err == nil {
		err = s.validateRequest(req)
	}
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		s.writeSearchError(w, &leads.ValidationError{Field: "format", Reason: "must be csv or xlsx"})
		return
	}

	result, ok := s.runSearch(w, r, req, model.SearchSourceDownload)
	if !ok {
		return
	}

	// Serialize fully before writing headers so a failure never yields a
	// truncated file.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, result); err != nil {
		zap.L().Error("download: serialize failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build download", "")
		return
	}

	filename := export.Filename(req.Keywords, format, s.now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "search history is disabled", "")
		return
	}

	limit, err := intParam(r.URL.Query(), "limit")
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	runs, err := s.store.ListSearches(r.Context(), store.SearchFilter{
		Keywords: r.URL.Query().Get("keywords"),
		Source:   model.SearchSource(r.URL.Query().Get("source")),
		Limit:    limit,
	})
	if err != nil {
		zap.L().Error("history: list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list history", "")
		return
	}
	if runs == nil {
		runs = []model.SearchRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// runSearch executes the query and records history. On failure it writes
// the error response and returns false.
func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req searchRequest, source model.SearchSource) ([]model.Lead, bool) {
	q, err := req.query().Normalize()
	if err != nil {
		s.writeSearchError(w, err)
		return nil, false
	}

	result, stats, err := s.fetcher.FetchLeadsWithStats(r.Context(), q)
	if err != nil {
		s.writeSearchError(w, err)
		return nil, false
	}
	if result == nil {
		result = []model.Lead{}
	}

	s.recordSearch(r.Context(), q, source, len(result), stats)
	return result, true
}

// recordSearch stores history for a completed search. Failures are logged
// and never affect the response.
func (s *Server) recordSearch(ctx context.Context, q leads.Query, source model.SearchSource, count int, stats leads.Stats) {
	if s.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyRecordTimeout)
	defer cancel()

	err := s.store.RecordSearch(ctx, &model.SearchRun{
		Keywords:    q.Keywords,
		Location:    q.Location,
		TargetCount: q.TargetCount,
		PageSize:    q.PageSize,
		Source:      source,
		LeadCount:   count,
		Pages:       stats.Pages,
		DurationMs:  stats.Duration.Milliseconds(),
	})
	if err != nil {
		zap.L().Warn("history: record failed", zap.Error(err))
	}
}

// writeSearchError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	if leads.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	if ue, ok := leads.AsUpstream(err); ok {
		zap.L().Error("search: upstream failed",
			zap.Int("page", ue.Page),
			zap.Int("upstream_status", ue.StatusCode),
			zap.Error(err),
		)
		status := http.StatusBadGateway
		if ue.Timeout {
			status = http.StatusGatewayTimeout
		}
		detail := ue.Detail
		if detail == "" {
			detail = ue.Error()
		}
		writeError(w, status, "upstream search failed", detail)
		return
	}

	zap.L().Error("search: unexpected failure", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errorResponse{Error: msg, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write json response", zap.Error(err))
	}
}
