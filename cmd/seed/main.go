// Command seed creates a demo account with a small library and search
// history so the API can be exercised locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"bookshelf/internal/config"
	"bookshelf/internal/history"
	"bookshelf/internal/library"
	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/platform/postgres"
	"bookshelf/internal/user"
)

type seedConfig struct {
	Database config.DatabaseConfig
	History  config.HistoryConfig
	Log      config.LogConfig
}

var demoBooks = []library.NewBook{
	{Title: "Dune", Author: "Frank Herbert", PublishYear: "1965", ISBN: "9780441013593", ExternalID: "/works/OL893415W", Review: "Sand, spice and politics.", Rating: 5},
	{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", PublishYear: "1969", ExternalID: "/works/OL59800W", Review: "Quietly radical.", Rating: 5},
	{Title: "Neuromancer", Author: "William Gibson", PublishYear: "1984", ISBN: "9780441569595", Review: "Dense but worth it.", Rating: 4},
	{Title: "Emma", Author: "Jane Austen", PublishYear: "1815", Review: "Funnier than I remembered.", Rating: 3},
}

var demoSearches = []string{"dune", "le guin", "gibson", "austen", "foundation", "hyperion"}

func main() {
	var (
		email    = flag.String("email", "demo@example.com", "Demo account email")
		alias    = flag.String("alias", "demo_reader", "Demo account alias")
		password = flag.String("password", "Demo!pass1", "Demo account password")
	)
	flag.Parse()

	config.LoadEnvFiles()
	var cfg seedConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if err := seed(context.Background(), cfg, log, *email, *alias, *password); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, cfg seedConfig, log *slog.Logger, email, alias, password string) error {
	if err := crypto.ValidatePasswordStrength(password); err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := user.NewService(user.NewPostgresRepo(pool, cfg.Database.QueryTimeout))
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	u, err := users.Register(ctx, email, alias, hash)
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		if u, err = users.GetByEmail(ctx, email); err != nil {
			return fmt.Errorf("load existing demo user: %w", err)
		}
		log.Info("demo user already exists", "user_id", u.ID)
	case err != nil:
		return fmt.Errorf("register demo user: %w", err)
	default:
		log.Info("demo user created", "user_id", u.ID, "email", u.Email)
	}

	lib := library.NewService(library.NewPostgresRepo(pool, cfg.Database.QueryTimeout), "/api/books/covers")
	saved := 0
	for _, b := range demoBooks {
		if _, err := lib.Save(ctx, u.ID, b); err != nil {
			if errors.Is(err, library.ErrAlreadyInLibrary) {
				continue
			}
			return fmt.Errorf("save %q: %w", b.Title, err)
		}
		saved++
	}
	log.Info("library seeded", "saved", saved, "skipped", len(demoBooks)-saved)

	// one minute apart, ending now
	at := time.Now().Add(-time.Duration(len(demoSearches)) * time.Minute)
	clock := func() time.Time {
		at = at.Add(time.Minute)
		return at
	}
	hist := history.NewCache(
		history.NewPostgresRepo(pool, cfg.Database.QueryTimeout),
		cfg.History.MaxHistory,
		cfg.History.DedupWindow,
		log.With("component", "history"),
		history.WithClock(clock),
	)
	for _, q := range demoSearches {
		hist.Record(ctx, u.ID, q)
	}

	st, err := hist.Stats(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("history stats: %w", err)
	}
	log.Info("search history seeded", "total", st.Total)
	return nil
}
