package server

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sells-group/lead-export/internal/leads"
)

// searchRequest is the wire form of a search, shared by the JSON body of
// POST /api/search and the query string of GET /api/download.
type searchRequest struct {
	Keywords    string `json:"keywords" validate:"required,max=256"`
	Location    string `json:"location" validate:"max=256"`
	TargetCount int    `json:"target_count"`
	PageSize    int    `json:"page_size"`
	Format      string `json:"format" validate:"omitempty,oneof=csv xlsx CSV XLSX"`
}

func (r searchRequest) query() leads.Query {
	return leads.Query{
		Keywords:    r.Keywords,
		Location:    r.Location,
		TargetCount: r.TargetCount,
		PageSize:    r.PageSize,
	}
}

// parseSearchQuery reads a searchRequest from URL query parameters.
func parseSearchQuery(v url.Values) (searchRequest, error) {
	req := searchRequest{
		Keywords: v.Get("keywords"),
		Location: v.Get("location"),
		Format:   v.Get("format"),
	}

	var err error
	if req.TargetCount, err = intParam(v, "target_count"); err != nil {
		return req, err
	}
	if req.PageSize, err = intParam(v, "page_size"); err != nil {
		return req, err
	}
	return req, nil
}

func intParam(v url.Values, name string) (int, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &leads.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return n, nil
}

// validateRequest runs struct validation and reports the first failure as
// a ValidationError.
func (s *Server) validateRequest(req searchRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &leads.ValidationError{Field: "request", Reason: err.Error()}
	}

	fe := verrs[0]
	field := fieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return &leads.ValidationError{Field: field, Reason: "is required"}
	case "max":
		return &leads.ValidationError{Field: field, Reason: "must be at most " + fe.Param() + " characters"}
	case "oneof":
		return &leads.ValidationError{Field: field, Reason: "must be csv or xlsx"}
	default:
		return &leads.ValidationError{Field: field, Reason: "is invalid"}
	}
}

func fieldName(structField string) string {
	switch structField {
	case "Keywords":
		return "keywords"
	case "Location":
		return "location"
	case "Format":
		return "format"
	default:
		return strings.ToLower(structField)
	}
}
