package search

import (
	"errors"
	"net/http"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	limits  Limits
}

func NewHTTPHandler(service *Service, limits Limits) *HTTPHandler {
	return &HTTPHandler{service: service, limits: limits}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.BadRequest(w, r, "Validation failed", verr.Fields)
	case errors.Is(err, ErrUpstreamUnavailable):
		httpx.UpstreamUnavailable(w, r, "Book catalog is unavailable, try again later")
	default:
		httpx.InternalError(w, r, err)
	}
}

// Search handles GET /api/books/search?q=&limit=&offset=
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := ValidateParams(RawParams{
		Q:      q.Get("q"),
		Limit:  q.Get("limit"),
		Offset: q.Get("offset"),
	}, h.limits)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.Search(r.Context(), p, httpx.UserIDFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, map[string]any{
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// LastSearches handles GET /api/books/last-search
func (h *HTTPHandler) LastSearches(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.LastSearches(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, entries, map[string]any{"total": len(entries)})
}

// Stats handles GET /api/books/search-stats
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, st, nil)
}

// Register mounts the search routes. Search itself accepts anonymous callers.
func (h *HTTPHandler) Register(mux *http.ServeMux, optional, required func(http.Handler) http.Handler) {
	mux.Handle("GET /api/books/search", optional(http.HandlerFunc(h.Search)))
	mux.Handle("GET /api/books/last-search", required(http.HandlerFunc(h.LastSearches)))
	mux.Handle("GET /api/books/search-stats", required(http.HandlerFunc(h.Stats)))
}
