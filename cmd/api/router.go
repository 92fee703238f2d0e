package main

import (
	"log/slog"
	"net/http"

	"bookshelf/internal/auth"
	"bookshelf/internal/httpx"
	"bookshelf/internal/library"
	"bookshelf/internal/platform/metrics"
	"bookshelf/internal/search"
	"bookshelf/internal/user"
)

type routerDeps struct {
	Log          *slog.Logger
	Metrics      *metrics.Metrics
	Verifier     httpx.Verifier
	Ready        map[string]httpx.Pinger
	CORSOrigins  []string
	MaxBodyBytes int64
	HSTS         bool
	// RateLimit is optional.
	RateLimit httpx.Middleware

	Auth    *auth.HTTPHandler
	Users   *user.HTTPHandler
	Library *library.HTTPHandler
	Search  *search.HTTPHandler
}

func newRouter(d routerDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", httpx.Healthz)
	mux.Handle("GET /readyz", httpx.Readyz(d.Ready))
	mux.Handle("GET /metrics", d.Metrics.Handler())

	required := httpx.RequireAuth(d.Verifier)
	optional := httpx.OptionalAuth(d.Verifier)

	d.Auth.Routes(mux, required)
	d.Users.Register(mux, required)
	d.Library.Register(mux, required)
	d.Search.Register(mux, optional, required)

	mws := []httpx.Middleware{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.Log),
		httpx.RecoveryMiddleware(d.Log),
		httpx.SecurityHeadersMiddleware(d.HSTS),
		httpx.CORSMiddleware(d.CORSOrigins),
		httpx.RequestSizeLimitMiddleware(d.MaxBodyBytes),
	}
	if d.RateLimit != nil {
		mws = append(mws, d.RateLimit)
	}
	mws = append(mws, httpx.MetricsMiddleware(d.Metrics))

	return httpx.Chain(mux, mws...)
}
