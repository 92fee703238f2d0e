package httpx

import (
	"context"
	"net/http"
	"strings"
)

// Verifier resolves a bearer token to an owner identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return tok, tok != ""
}

// BearerToken returns the raw bearer token of r, if any.
func BearerToken(r *http.Request) string {
	tok, _ := bearerToken(r)
	return tok
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearerToken(r)
			if !ok {
				Unauthorized(w, r)
				return
			}
			userID, err := v.Verify(r.Context(), tok)
			if err != nil {
				Unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), userID)))
		})
	}
}

// OptionalAuth lets anonymous requests through. A token that is present but
// invalid is still rejected.
func OptionalAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := v.Verify(r.Context(), tok)
			if err != nil {
				Unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), userID)))
		})
	}
}
