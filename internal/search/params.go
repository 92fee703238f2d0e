package search

import (
	"fmt"
	"strconv"
	"strings"

	"bookshelf/internal/httpx"
)

// Limits bound the page size.
type Limits struct {
	Default int
	Max     int
}

type queryInput struct {
	Query  string `json:"q" validate:"required,notblank,max=100"`
	Offset int    `json:"offset" validate:"gte=0"`
}

// ValidateParams converts raw query-string values into Params. It returns a
// *ValidationError describing every invalid field.
func ValidateParams(raw RawParams, lim Limits) (Params, error) {
	var fields []httpx.ErrorDetail

	p := Params{Query: strings.TrimSpace(raw.Q), Limit: lim.Default}

	if s := strings.TrimSpace(raw.Limit); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil:
			fields = append(fields, httpx.ErrorDetail{Field: "limit", Message: "limit must be an integer"})
		case n < 1 || n > lim.Max:
			fields = append(fields, httpx.ErrorDetail{Field: "limit", Message: fmt.Sprintf("limit must be between 1 and %d", lim.Max)})
		default:
			p.Limit = n
		}
	}

	if s := strings.TrimSpace(raw.Offset); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			fields = append(fields, httpx.ErrorDetail{Field: "offset", Message: "offset must be an integer"})
		} else {
			p.Offset = n
		}
	}

	fields = append(fields, httpx.ValidateStruct(queryInput{Query: p.Query, Offset: p.Offset})...)

	if len(fields) > 0 {
		return Params{}, &ValidationError{Fields: fields}
	}
	return p, nil
}
