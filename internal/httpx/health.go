package httpx

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool; wrap other clients with PingFunc.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz always reports ok while the process serves requests.
func Healthz(w http.ResponseWriter, r *http.Request) {
	JSONSuccess(w, r, map[string]string{"status": "ok"}, nil)
}

// Readyz checks every named dependency with a short deadline.
func Readyz(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := make(map[string]string, len(deps))
		ready := true
		for name, p := range deps {
			if err := p.Ping(ctx); err != nil {
				status[name] = "down"
				ready = false
				continue
			}
			status[name] = "up"
		}

		if !ready {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
				Error: ErrorResponseBody{Code: "NOT_READY", Message: "dependency unavailable"},
				Meta:  map[string]any{"checks": status},
			})
			return
		}
		JSONSuccess(w, r, map[string]any{"status": "ready", "checks": status}, nil)
	}
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
