package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is returned for any non-2xx backend response. The Detail
// field carries the backend's human-readable explanation when one was
// provided, otherwise the raw response body.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend request failed with status %d: %s", e.StatusCode, e.Detail)
}

// QuotaExceeded reports whether the backend rejected the request for
// rate-limit reasons. Callers classify on this behavior rather than on
// a sentinel value.
func (e *StatusError) QuotaExceeded() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// NotFound reports whether the target resource does not exist or is
// not available to the caller.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// UpgradeRequired reports whether the request was refused because of a
// subscription tier limit.
func (e *StatusError) UpgradeRequired() bool {
	return e.StatusCode == http.StatusForbidden
}

// errorDetail matches the backend's error envelope: {"detail": "..."}.
type errorDetail struct {
	Detail string `json:"detail"`
}

// newStatusError builds a StatusError from a response body, preferring
// the backend's detail field over the raw body.
func newStatusError(statusCode int, body []byte) *StatusError {
	detail := strings.TrimSpace(string(body))

	var envelope errorDetail
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Detail != "" {
		detail = envelope.Detail
	}

	return &StatusError{StatusCode: statusCode, Detail: detail}
}
