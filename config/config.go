/*
Package config loads the service configuration.

SOURCES (later wins):
  1. Default()
  2. Optional .env file, exported into the process environment
  3. Config file (YAML or JSON, chosen by extension), if a path is given
  4. Environment variables with prefix SHIFTPLAN_ and "__" as the nesting
     delimiter, e.g. SHIFTPLAN_RULES__MAX_CONCURRENT_VACATIONS=3

EXAMPLE (config.yaml):

	server:
	  port: 8080
	  allowed_origins: ["http://localhost:3000"]
	database:
	  path: ./shiftplan.db
	rules:
	  max_concurrent_vacations: 2
	advisor:
	  endpoint: https://generativelanguage.googleapis.com/v1beta
	  model: gemini-2.5-flash
	  timeout: 30s
	logging:
	  level: info
	  format: json
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "SHIFTPLAN_"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Rules    RulesConfig    `koanf:"rules"`
	Advisor  AdvisorConfig  `koanf:"advisor"`
	Logging  LoggingConfig  `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string { return fmt.Sprintf(":%d", c.Port) }

type DatabaseConfig struct {
	// Path of the SQLite file. ":memory:" keeps the plan in memory only.
	Path string `koanf:"path"`
}

type RulesConfig struct {
	MaxConcurrentVacations int `koanf:"max_concurrent_vacations"`
}

// AdvisorConfig configures the text-generation service. An empty Endpoint
// selects the offline client.
type AdvisorConfig struct {
	Endpoint string        `koanf:"endpoint"`
	APIKey   string        `koanf:"api_key"`
	Model    string        `koanf:"model"`
	Timeout  time.Duration `koanf:"timeout"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{Path: "shiftplan.db"},
		Rules:    RulesConfig{MaxConcurrentVacations: 2},
		Advisor: AdvisorConfig{
			Model:   "gemini-2.5-flash",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Options tell Load where to look.
type Options struct {
	Path    string // config file; empty skips the file layer
	EnvFile string // .env file; empty means ".env", missing is not an error
}

// Load merges every source over Default() and validates the result.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	k := koanf.New(".")
	if opts.Path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(opts.Path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(opts.Path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.Path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Rules.MaxConcurrentVacations < 1 {
		errs = append(errs, fmt.Errorf("rules.max_concurrent_vacations must be at least 1, got %d", c.Rules.MaxConcurrentVacations))
	}
	if c.Advisor.Timeout <= 0 {
		errs = append(errs, errors.New("advisor.timeout must be positive"))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.level %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
