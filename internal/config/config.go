package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultHTTPPort = "8080"

// Config holds application configuration values.
type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	Secret          string        `env:"SECRET" envDefault:"dev_secret"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	Storage  Storage
	Log      Log
	Mock     Mock
	Geocoder Geocoder
}

// Storage selects where the signed-in user record is kept.
type Storage struct {
	Backend       string `env:"STORAGE_BACKEND" envDefault:"sqlite"`
	DatabaseDSN   string `env:"DATABASE_DSN" envDefault:"file:medstock.db?cache=shared"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Mock controls the simulated latency of the demo backend.
type Mock struct {
	LatencyMin  time.Duration `env:"MOCK_LATENCY_MIN" envDefault:"300ms"`
	LatencyMax  time.Duration `env:"MOCK_LATENCY_MAX" envDefault:"800ms"`
	SignInDelay time.Duration `env:"SIGN_IN_DELAY" envDefault:"800ms"`
}

type Geocoder struct {
	BaseURL   string        `env:"GEOCODER_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	UserAgent string        `env:"GEOCODER_USER_AGENT" envDefault:"MedStock/1.0 (+https://medstock.ng)"`
	Timeout   time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"10s"`
}

// Address is the listen address of the HTTP server.
func (c Config) Address() string {
	return ":" + c.HTTPPort
}

// Load reads an optional .env file, then the environment, falling back to defaults.
func Load(path ...string) (Config, error) {
	if err := godotenv.Load(path...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to %s", cfg.HTTPPort, defaultHTTPPort)
		cfg.HTTPPort = defaultHTTPPort
	}

	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	switch cfg.Storage.Backend {
	case "sqlite", "redis", "memory":
	default:
		return Config{}, fmt.Errorf("config.Load: unsupported STORAGE_BACKEND %q", cfg.Storage.Backend)
	}

	if cfg.Mock.LatencyMax < cfg.Mock.LatencyMin {
		cfg.Mock.LatencyMax = cfg.Mock.LatencyMin
	}

	return cfg, nil
}
