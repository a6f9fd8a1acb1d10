package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port           string   `envconfig:"PORT" default:"5000"`
	FrontendURL    string   `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	JWTSecret      string   `envconfig:"JWT_SECRET" required:"true"`

	StorageDriver string        `envconfig:"STORAGE_DRIVER" default:"mongo"`
	MongoURI      string        `envconfig:"MONGO_URI"`
	MongoDatabase string        `envconfig:"MONGO_DATABASE" default:"gym"`
	PostgresDSN   string        `envconfig:"POSTGRES_DSN"`
	StoreTimeout  time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	HistoryLimit  int           `envconfig:"HISTORY_LIMIT" default:"100"`

	// Profile cache in front of the users directory; disabled when empty.
	ValkeyAddr        string        `envconfig:"VALKEY_ADDR"`
	DirectoryCacheTTL time.Duration `envconfig:"DIRECTORY_CACHE_TTL" default:"5m"`

	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`

	WSSendBuffer      int           `envconfig:"WS_SEND_BUFFER" default:"256"`
	WSWriteTimeout    time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
	WSPingInterval    time.Duration `envconfig:"WS_PING_INTERVAL" default:"30s"`
	WSEventsPerSecond float64       `envconfig:"WS_EVENTS_PER_SECOND" default:"20"`
	WSRequireAuth     bool          `envconfig:"WS_REQUIRE_AUTH" default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	switch c.StorageDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo driver")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	if c.WSSendBuffer < 1 {
		return errors.New("WS_SEND_BUFFER must be at least 1")
	}
	if c.ValkeyAddr != "" && c.DirectoryCacheTTL < time.Second {
		return errors.New("DIRECTORY_CACHE_TTL must be at least 1s")
	}
	return nil
}

// Origins is the CORS allow-list: FRONTEND_URL plus ALLOWED_ORIGINS.
func (c Config) Origins() []string {
	out := make([]string, 0, len(c.AllowedOrigins)+1)
	if c.FrontendURL != "" {
		out = append(out, c.FrontendURL)
	}
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) Addr() string { return ":" + c.Port }
