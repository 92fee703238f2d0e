package library

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookshelf/internal/httpx"
)

// MaxCoverBytes bounds a decoded cover image.
const MaxCoverBytes = 2 << 20

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type saveRequest struct {
	Title         string `json:"title" validate:"required,notblank,max=200"`
	Author        string `json:"author" validate:"required,notblank,max=100"`
	PublishYear   string `json:"publishYear" validate:"max=10"`
	CoverBase64   string `json:"coverBase64"`
	Review        string `json:"review" validate:"required,notblank,max=500"`
	Rating        int    `json:"rating" validate:"required,gte=1,lte=5"`
	OpenLibraryID string `json:"openLibraryId" validate:"max=100"`
	ISBN          string `json:"isbn" validate:"max=20"`
}

type updateRequest struct {
	Review string `json:"review" validate:"required,notblank,max=500"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
}

type listParams struct {
	Limit           int    `json:"limit" validate:"gte=1,lte=100"`
	Offset          int    `json:"offset" validate:"gte=0"`
	Search          string `json:"search" validate:"max=100"`
	SortBy          string `json:"sortBy" validate:"omitempty,oneof=rating-asc rating-desc title-asc title-desc newest oldest"`
	ExcludeNoReview bool   `json:"excludeNoReview"`
}

// decodeCover accepts plain base64 or a data URI and sniffs the content type.
func decodeCover(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", nil
	}
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			s = payload
		}
	}
	if base64.StdEncoding.DecodedLen(len(s)) > MaxCoverBytes+3 {
		return nil, "", errors.New("cover image too large")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", errors.New("cover image is not valid base64")
	}
	if len(data) > MaxCoverBytes {
		return nil, "", errors.New("cover image too large")
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, "", errors.New("cover must be an image")
	}
	return data, ct, nil
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, r, "Book not found in your library")
	case errors.Is(err, ErrAlreadyInLibrary):
		httpx.Conflict(w, r, "Book is already in your library")
	default:
		httpx.InternalError(w, r, err)
	}
}

// Save handles POST /api/books/my-library
func (h *HTTPHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.BadRequest(w, r, "Validation failed", details)
		return
	}

	cover, contentType, err := decodeCover(req.CoverBase64)
	if err != nil {
		httpx.BadRequest(w, r, "Validation failed", []httpx.ErrorDetail{{Field: "coverBase64", Message: err.Error()}})
		return
	}

	b, err := h.service.Save(r.Context(), httpx.UserIDFrom(r), NewBook{
		Title:            req.Title,
		Author:           req.Author,
		PublishYear:      strings.TrimSpace(req.PublishYear),
		ISBN:             strings.TrimSpace(req.ISBN),
		ExternalID:       strings.TrimSpace(req.OpenLibraryID),
		Review:           strings.TrimSpace(req.Review),
		Rating:           req.Rating,
		Cover:            cover,
		CoverContentType: contentType,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, b)
}

// List handles GET /api/books/my-library
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	p := listParams{
		Limit:           20,
		Search:          strings.TrimSpace(query.Get("search")),
		SortBy:          query.Get("sortBy"),
		ExcludeNoReview: query.Get("excludeNoReview") == "true",
	}

	var details []httpx.ErrorDetail
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "limit", Message: "limit must be an integer"})
		}
		p.Limit = n
	}
	if v := query.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			details = append(details, httpx.ErrorDetail{Field: "offset", Message: "offset must be an integer"})
		}
		p.Offset = n
	}
	if len(details) == 0 {
		details = httpx.ValidateStruct(p)
	}
	if len(details) > 0 {
		httpx.BadRequest(w, r, "Validation failed", details)
		return
	}

	books, total, err := h.service.List(r.Context(), httpx.UserIDFrom(r), ListQuery{
		Limit:           p.Limit,
		Offset:          p.Offset,
		Search:          p.Search,
		SortBy:          p.SortBy,
		ExcludeNoReview: p.ExcludeNoReview,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]any{
		"limit":  p.Limit,
		"offset": p.Offset,
		"total":  total,
	})
}

// Get handles GET /api/books/my-library/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), httpx.UserIDFrom(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Update handles PUT /api/books/my-library/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.BadRequest(w, r, "Validation failed", details)
		return
	}

	b, err := h.service.UpdateReview(r.Context(), httpx.UserIDFrom(r), r.PathValue("id"), req.Review, req.Rating)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /api/books/my-library/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), httpx.UserIDFrom(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// Stats handles GET /api/books/my-library-stats
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Stats(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, s, nil)
}

// Cover handles GET /api/books/covers/{id}. It serves raw image bytes.
func (h *HTTPHandler) Cover(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Cover(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, "Cover not found")
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	ct := c.ContentType
	if ct == "" {
		ct = http.DetectContentType(c.Data)
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(c.Data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.Data)
}

// Register mounts the library routes. auth wraps owner-scoped routes.
func (h *HTTPHandler) Register(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/books/my-library", auth(http.HandlerFunc(h.Save)))
	mux.Handle("GET /api/books/my-library", auth(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/books/my-library/{id}", auth(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/books/my-library/{id}", auth(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/books/my-library/{id}", auth(http.HandlerFunc(h.Delete)))
	mux.Handle("GET /api/books/my-library-stats", auth(http.HandlerFunc(h.Stats)))
	mux.HandleFunc("GET /api/books/covers/{id}", h.Cover)
}
