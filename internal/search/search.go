// Package search runs catalog searches, marks results the caller already
// owns, and records the query in the caller's history.
package search

import (
	"errors"
	"strings"
	"time"

	"bookshelf/internal/httpx"
	"bookshelf/internal/reconcile"
)

var (
	// ErrUpstreamUnavailable covers catalog and collection store failures.
	ErrUpstreamUnavailable = reconcile.ErrUpstreamUnavailable
	ErrValidation          = errors.New("validation failed")
)

// ValidationError lists the parameter problems of a rejected request.
type ValidationError struct {
	Fields []httpx.ErrorDetail
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Params are validated search parameters.
type Params struct {
	Query  string
	Limit  int
	Offset int
}

// RawParams are the untyped query-string values of a search request.
type RawParams struct {
	Q      string
	Limit  string
	Offset string
}

// Result is the response of one search.
type Result struct {
	Books     []reconcile.AnnotatedRecord `json:"books"`
	Total     int                         `json:"total"`
	Query     string                      `json:"query"`
	Timestamp time.Time                   `json:"timestamp"`
}
