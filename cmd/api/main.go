package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"bookshelf/internal/auth"
	"bookshelf/internal/config"
	"bookshelf/internal/history"
	"bookshelf/internal/httpx"
	"bookshelf/internal/library"
	"bookshelf/internal/platform/cache"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/metrics"
	"bookshelf/internal/platform/openlibrary"
	"bookshelf/internal/platform/postgres"
	"bookshelf/internal/reconcile"
	"bookshelf/internal/search"
	"bookshelf/internal/user"
)

const blacklistPurgeInterval = time.Hour

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("database connection OK")

	m := metrics.New(nil)
	ready := map[string]httpx.Pinger{"postgres": pool}

	olClient := openlibrary.NewClient(openlibrary.Options{
		BaseURL:    cfg.OpenLibrary.BaseURL,
		CoversURL:  cfg.OpenLibrary.CoversURL,
		UserAgent:  cfg.OpenLibrary.UserAgent,
		RPS:        cfg.OpenLibrary.RPS,
		MaxRetries: cfg.OpenLibrary.MaxRetries,
		Timeout:    cfg.OpenLibrary.Timeout,
	})
	var catalog search.Catalog = search.NewOpenLibraryCatalog(olClient)

	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, catalog cache disabled", "error", err)
		} else {
			defer rdb.Close()
			catalog = search.NewCachedCatalog(catalog, cache.NewRedisCache(rdb, cfg.Redis.TTL), log, m)
			ready["redis"] = httpx.PingFunc(func(ctx context.Context) error {
				return pingRedis(ctx, rdb)
			})
		}
	}

	libraryRepo := library.NewPostgresRepo(pool, cfg.Database.QueryTimeout)
	libraryService := library.NewService(libraryRepo, cfg.Assets.CoverBasePath)

	historyCache := history.NewCache(
		history.NewPostgresRepo(pool, cfg.Database.QueryTimeout),
		cfg.History.MaxHistory,
		cfg.History.DedupWindow,
		log.With("component", "history"),
		history.WithMetrics(m),
	)
	recorder := history.NewRecorder(historyCache, cfg.History.MaxInFlight, cfg.History.SaveTimeout, log.With("component", "history"), m)

	searchService := search.NewService(search.Deps{
		Catalog:        catalog,
		Reconciler:     reconcile.NewEngine(libraryRepo, cfg.Assets.CoverBasePath),
		Recorder:       recorder,
		History:        historyCache,
		CatalogTimeout: cfg.OpenLibrary.Timeout,
		Log:            log,
		Metrics:        m,
	})

	userService := user.NewService(user.NewPostgresRepo(pool, cfg.Database.QueryTimeout))
	authService := auth.NewService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		userService,
		auth.NewBlacklistPG(pool, cfg.Database.QueryTimeout),
		log,
	)
	go purgeBlacklist(ctx, authService)

	rl := httpx.NewRateLimitMiddleware(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	handler := newRouter(routerDeps{
		Log:          log,
		Metrics:      m,
		Verifier:     authService,
		Ready:        ready,
		CORSOrigins:  cfg.CORS.Origins(),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		HSTS:         cfg.Server.HSTS,
		RateLimit:    rl.Middleware,
		Auth:         auth.NewHTTPHandler(authService),
		Users:        user.NewHTTPHandler(userService),
		Library:      library.NewHTTPHandler(libraryService),
		Search:       search.NewHTTPHandler(searchService, search.Limits{Default: cfg.Search.DefaultLimit, Max: cfg.Search.MaxLimit}),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if cerr := recorder.Close(shutdownCtx); cerr != nil {
		log.Warn("search history writes still pending at shutdown", "error", cerr)
	}
	return err
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	return rdb.Ping(ctx).Err()
}

func purgeBlacklist(ctx context.Context, svc *auth.Service) {
	t := time.NewTicker(blacklistPurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			svc.PurgeExpired(ctx)
		}
	}
}
