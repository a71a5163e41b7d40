package server

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config configures the registry server. Every field can be set from the
// environment.
type Config struct {
	Addr string `env:"ZOO_REGISTRY_ADDR" envDefault:":8080"`

	// File is the registry.json to serve.
	File string `env:"ZOO_REGISTRY_FILE" envDefault:"public/registry.json"`

	// Watch reloads the registry and notifies websocket clients when File
	// changes.
	Watch bool `env:"ZOO_REGISTRY_WATCH" envDefault:"false"`

	// MaxAge is the max-age and s-maxage of served JSON, in seconds.
	MaxAge int `env:"ZOO_REGISTRY_MAX_AGE" envDefault:"3600"`

	// StaleWhileRevalidate is the edge stale-while-revalidate window, in seconds.
	StaleWhileRevalidate int `env:"ZOO_REGISTRY_STALE_WHILE_REVALIDATE" envDefault:"86400"`

	// CacheTTL bounds how long a parsed registry is reused before re-reading File.
	CacheTTL time.Duration `env:"ZOO_REGISTRY_CACHE_TTL" envDefault:"30s"`

	CORSOrigins []string `env:"ZOO_REGISTRY_CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// LogExcludePaths are not request-logged.
	LogExcludePaths []string `env:"ZOO_REGISTRY_LOG_EXCLUDE_PATHS" envDefault:"/healthz,/metrics" envSeparator:","`

	LogLevel string `env:"ZOO_LOG_LEVEL" envDefault:"info"`

	ShutdownTimeout time.Duration `env:"ZOO_REGISTRY_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns the configuration used when the environment is empty.
func DefaultConfig() Config {
	var cfg Config
	// Defaults are static; parsing an empty environment cannot fail.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// LoadConfig reads .env files (missing ones are ignored) and then the
// environment. Variables already set win over .env values.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// CacheControl returns the Cache-Control value for served JSON.
func (c Config) CacheControl() string {
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d, stale-while-revalidate=%d",
		c.MaxAge, c.MaxAge, c.StaleWhileRevalidate)
}
