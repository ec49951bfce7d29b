package leads

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or invalid caller input. Surfaced as a
// client error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// UpstreamError reports a failed upstream search call: transport failure,
// timeout, non-success status or malformed payload.
type UpstreamError struct {
	Page       int
	StatusCode int
	Detail     string
	Timeout    bool
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("upstream search page %d: timed out", e.Page)
	case e.Detail != "":
		return fmt.Sprintf("upstream search page %d: %s", e.Page, e.Detail)
	default:
		return fmt.Sprintf("upstream search page %d: %v", e.Page, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsUpstream returns the UpstreamError in err's chain, if any.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
