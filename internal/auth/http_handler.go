package auth

import (
	"errors"
	"net/http"
	"strings"

	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/user"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email,min=5,max=100"`
	Password string `json:"password" validate:"required,max=100"`
	Alias    string `json:"alias" validate:"required,min=3,max=20,alias"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/auth/register
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, "Invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Alias = strings.TrimSpace(req.Alias)

	details := httpx.ValidateStruct(req)
	if req.Password != "" {
		if err := crypto.ValidatePasswordStrength(req.Password); err != nil {
			details = append(details, httpx.ErrorDetail{Field: "password", Message: err.Error()})
		}
	}
	if len(details) > 0 {
		httpx.BadRequest(w, r, "Validation failed", details)
		return
	}

	sess, err := h.service.Register(r.Context(), req.Email, req.Password, req.Alias)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			httpx.Conflict(w, r, "Email is already registered")
		case errors.Is(err, user.ErrAliasTaken):
			httpx.Conflict(w, r, "Alias is already in use")
		default:
			httpx.InternalError(w, r, err)
		}
		return
	}
	httpx.JSONCreated(w, r, sess)
}

// Login handles POST /api/auth/login
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, "Invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.BadRequest(w, r, "Validation failed", details)
		return
	}

	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, sess, nil)
}

// Logout handles POST /api/auth/logout
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := httpx.BearerToken(r)
	if token == "" {
		httpx.Unauthorized(w, r)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			httpx.Unauthorized(w, r)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// Routes mounts the auth endpoints.
func (h *HTTPHandler) Routes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.Handle("POST /api/auth/logout", auth(http.HandlerFunc(h.Logout)))
}
