package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Search:      SearchConfig{DefaultLimit: 10, MaxLimit: 50},
		History:     HistoryConfig{MaxHistory: 10, DedupWindow: 5, MaxInFlight: 8},
		OpenLibrary: OpenLibraryConfig{RPS: 5},
		Log:         LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "default above max", mutate: func(c *Config) { c.Search.DefaultLimit = 60 }, wantErr: true},
		{name: "dedup window above cap", mutate: func(c *Config) { c.History.DedupWindow = 11 }, wantErr: true},
		{name: "zero history", mutate: func(c *Config) { c.History.MaxHistory = 0 }, wantErr: true},
		{name: "zero in-flight", mutate: func(c *Config) { c.History.MaxInFlight = 0 }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "text log format", mutate: func(c *Config) { c.Log.Format = "TEXT" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_FromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HISTORY_MAX", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 12, cfg.History.MaxHistory)
	assert.Equal(t, 5, cfg.History.DedupWindow)
	assert.Equal(t, 50, cfg.Search.MaxLimit)
	assert.Equal(t, "/api/books/covers", cfg.Assets.CoverBasePath)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Server.HSTS)
}

func TestLoad_HSTSFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_DSN", "postgres://u:p@localhost:5432/db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_HSTS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Server.HSTS)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\n"), 0o644))

	t.Setenv("DB_DSN", "from_env")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DB_DSN"))
}

func TestCORSConfig_Origins(t *testing.T) {
	c := CORSConfig{AllowedOrigins: "http://a.test, ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Origins())
}
