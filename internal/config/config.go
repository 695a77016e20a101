// Package config loads connector runs from a YAML recipe, an optional .env
// file, and PBIRS_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alcoccoque/pbirs-connector/internal/sink"
)

// DefaultSourceType is the registry template used when the recipe names none.
const DefaultSourceType = "http.pbirs"

// Config is one ingestion recipe.
type Config struct {
	Source SourceConfig `yaml:"source"`
	Sink   sink.Config  `yaml:"sink"`
	Log    LogConfig    `yaml:"log"`
}

// SourceConfig names a registered source and carries its loose settings.
type SourceConfig struct {
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:"config"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// sourceOverrides maps environment variables onto source config keys.
var sourceOverrides = map[string]string{
	"PBIRS_USERNAME":                             "username",
	"PBIRS_PASSWORD":                             "password",
	"PBIRS_WORKSTATION_NAME":                     "workstation_name",
	"PBIRS_REPORT_VIRTUAL_DIRECTORY_NAME":        "report_virtual_directory_name",
	"PBIRS_REPORT_SERVER_VIRTUAL_DIRECTORY_NAME": "report_server_virtual_directory_name",
	"PBIRS_PLATFORM_NAME":                        "platform_name",
	"PBIRS_REQUEST_TIMEOUT":                      "request_timeout",
}

// Load reads the recipe at path (optional) after loading envFile into the
// environment. A missing default ".env" is not an error. ${VAR} references
// in the recipe are expanded before parsing.
func Load(path, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if c.Source.Config == nil {
		c.Source.Config = map[string]any{}
	}
	for env, key := range sourceOverrides {
		if val := os.Getenv(env); val != "" {
			c.Source.Config[key] = val
		}
	}

	c.Sink.Type = getEnv("PBIRS_SINK_TYPE", c.Sink.Type)
	c.Sink.Path = getEnv("PBIRS_SINK_PATH", c.Sink.Path)
	c.Sink.Postgres.DSN = getEnv("PBIRS_POSTGRES_DSN", c.Sink.Postgres.DSN)
	c.Sink.ObjectStore.EndpointURL = getEnv("MINIO_ENDPOINT", c.Sink.ObjectStore.EndpointURL)
	c.Sink.ObjectStore.AccessKeyID = getEnv("MINIO_ACCESS_KEY", c.Sink.ObjectStore.AccessKeyID)
	c.Sink.ObjectStore.SecretAccessKey = getEnv("MINIO_SECRET_KEY", c.Sink.ObjectStore.SecretAccessKey)
	c.Sink.ObjectStore.Bucket = getEnv("PBIRS_SINK_BUCKET", c.Sink.ObjectStore.Bucket)

	c.Log.Level = getEnv("PBIRS_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("PBIRS_LOG_FORMAT", c.Log.Format)
}

func (c *Config) applyDefaults() {
	if c.Source.Type == "" {
		c.Source.Type = DefaultSourceType
	}
	if c.Sink.Type == "" {
		c.Sink.Type = sink.TypeStdout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// PlatformName returns the configured platform, or fallback.
func (c *Config) PlatformName(fallback string) string {
	if v, ok := c.Source.Config["platform_name"].(string); ok && v != "" {
		return v
	}
	return fallback
}

// NewLogger builds a slog logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", l.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", l.Format)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
