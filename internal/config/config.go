package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	OpenLibrary OpenLibraryConfig `yaml:"open_library"`
	Search      SearchConfig      `yaml:"search"`
	History     HistoryConfig     `yaml:"history"`
	Redis       RedisConfig       `yaml:"redis"`
	Assets      AssetsConfig      `yaml:"assets"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"APP_ADDR"                env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"SERVER_MAX_BODY_BYTES"   env-default:"4194304"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"   env:"SERVER_RATE_LIMIT_RPS"   env-default:"20"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" env:"SERVER_RATE_LIMIT_BURST" env-default:"40"`
	// HSTS should only be enabled behind TLS.
	HSTS            bool          `yaml:"hsts"             env:"SERVER_HSTS"             env-default:"false"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DB_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DB_MAX_CONNS"          env-default:"20"`
	MinConns        int32         `yaml:"min_conns"          env:"DB_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DB_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" env-default:"30m"`
	QueryTimeout    time.Duration `yaml:"query_timeout"      env:"DB_QUERY_TIMEOUT"      env-default:"3s"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"JWT_SECRET"       env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"JWT_ACCESS_TTL"   env-default:"24h"`
}

// OpenLibraryConfig configures the external catalog client.
type OpenLibraryConfig struct {
	BaseURL    string        `yaml:"base_url"    env:"OPENLIBRARY_API_URL"     env-default:"https://openlibrary.org"`
	CoversURL  string        `yaml:"covers_url"  env:"OPENLIBRARY_COVERS_URL"  env-default:"https://covers.openlibrary.org/b/id"`
	UserAgent  string        `yaml:"user_agent"  env:"OPENLIBRARY_USER_AGENT"  env-default:"bookshelf/1.0"`
	RPS        int           `yaml:"rps"         env:"OPENLIBRARY_RPS"         env-default:"5"`
	MaxRetries int           `yaml:"max_retries" env:"OPENLIBRARY_MAX_RETRIES" env-default:"2"`
	Timeout    time.Duration `yaml:"timeout"     env:"OPENLIBRARY_TIMEOUT"     env-default:"10s"`
}

type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit" env:"SEARCH_DEFAULT_LIMIT" env-default:"10"`
	MaxLimit     int `yaml:"max_limit"     env:"SEARCH_MAX_LIMIT"     env-default:"50"`
}

// HistoryConfig bounds the per-user search history.
type HistoryConfig struct {
	MaxHistory  int           `yaml:"max_history"  env:"HISTORY_MAX"          env-default:"10"`
	DedupWindow int           `yaml:"dedup_window" env:"HISTORY_DEDUP_WINDOW" env-default:"5"`
	SaveTimeout time.Duration `yaml:"save_timeout" env:"HISTORY_SAVE_TIMEOUT" env-default:"5s"`
	MaxInFlight int64         `yaml:"max_in_flight" env:"HISTORY_MAX_IN_FLIGHT" env-default:"64"`
}

// RedisConfig configures the catalog result cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr"      env:"REDIS_ADDR"`
	Password string        `yaml:"password"  env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"        env:"REDIS_DB"        env-default:"0"`
	TTL      time.Duration `yaml:"ttl"       env:"REDIS_CACHE_TTL" env-default:"300s"`
}

func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type AssetsConfig struct {
	CoverBasePath string `yaml:"cover_base_path" env:"ASSETS_COVER_BASE_PATH" env-default:"/api/books/covers"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3001"`
}

// Origins splits AllowedOrigins on commas, dropping blanks.
func (c CORSConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
