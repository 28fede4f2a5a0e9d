// Package config handles loading and parsing application configuration.
// It supports two sources for the file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value can additionally be overridden by the environment variable
// named in its env:"..." tag, and falls back to env-default when neither
// the file nor the environment provide it.
//
// The same Config struct is shared by all four binaries. Each binary only
// reads the sections it needs (the gateway ignores storage_path, the
// storage services ignore upstreams and circuit_breaker).
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
//
// env-required:"true" means the app refuses to start if that value is
// missing — better to crash at boot than to silently use a wrong default.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true" validate:"oneof=dev staging prod"`

	// StoragePath is the filesystem path to the SQLite .db file.
	// Required by the students, exams and professors services.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`

	// HTTPServer is embedded (not a pointer) so its fields are accessible
	// directly on Config:  cfg.HTTPServer.Addr  or after promotion cfg.Addr
	HTTPServer `yaml:"http_server"`

	Upstreams      Upstreams      `yaml:"upstreams"`
	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker"`
	Redis          Redis          `yaml:"redis"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"10s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s" validate:"gt=0"`
}

// Upstreams locates the services the gateway aggregates.
type Upstreams struct {
	StudentsURL string `yaml:"students_url" env:"STUDENTS_SERVICE_URL" env-default:"http://localhost:8081" validate:"url"`
	ExamsURL    string `yaml:"exams_url" env:"EXAMS_SERVICE_URL" env-default:"http://localhost:8082" validate:"url"`

	// Timeout bounds a single upstream request, connect to last body byte.
	Timeout time.Duration `yaml:"timeout" env:"UPSTREAM_TIMEOUT" env-default:"5s" validate:"gt=0"`
}

// CircuitBreaker tunes the breaker protecting the exams call.
type CircuitBreaker struct {
	// FailureRateThreshold is a ratio: 0.5 trips at 50% failed calls.
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" env:"CB_FAILURE_RATE_THRESHOLD" env-default:"0.5" validate:"gt=0,lte=1"`

	// MinimumCalls is how many calls the window must hold before the
	// failure rate is evaluated at all.
	MinimumCalls int `yaml:"minimum_calls" env:"CB_MINIMUM_CALLS" env-default:"10" validate:"min=1"`

	// Window is the trailing period over which the failure rate is computed,
	// split into Buckets equal slots.
	Window  time.Duration `yaml:"window" env:"CB_WINDOW" env-default:"60s" validate:"gt=0"`
	Buckets int           `yaml:"buckets" env:"CB_BUCKETS" env-default:"10" validate:"min=1"`

	// OpenTimeout is the cool-down spent OPEN before a trial call is allowed.
	OpenTimeout time.Duration `yaml:"open_timeout" env:"CB_OPEN_TIMEOUT" env-default:"30s" validate:"gt=0"`
}

// Redis configures the optional professors cache. An empty Addr disables it.
type Redis struct {
	Addr     string        `yaml:"address" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" env-default:"0" validate:"min=0"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"5m" validate:"gt=0"`
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	// Verify the file exists before trying to read it.
	// os.Stat gives a clear message rather than a cryptic "open: no such
	// file" later.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file and populates the struct.
	// It also reads any env:"..." tagged fields from the environment,
	// and validates env-required:"true" constraints.
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
//
// The name "MustLoad" follows a Go convention: functions prefixed with
// "Must" are allowed to panic/fatal on failure. Callers do not need to
// check a returned error — if this function returns, the config is valid.
func MustLoad() *Config {
	// ── Source 1: environment variable ───────────────────────────────
	// Useful in Docker / Kubernetes where env vars are the standard way
	// to pass config to a container.
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	// Useful when running locally:
	//   go run ./cmd/gateway --config=config/gateway.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	// Neither source provided a path — we cannot continue.
	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}
