package main

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"bookshelf/internal/config"
)

type migrateConfig struct {
	Database config.DatabaseConfig
}

// loadConfig reads only what migrations need; JWT and server settings are
// not required here.
func loadConfig() (migrateConfig, error) {
	config.LoadEnvFiles()

	var cfg migrateConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return migrateConfig{}, err
	}
	return cfg, nil
}

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}
