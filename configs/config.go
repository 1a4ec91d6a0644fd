package configs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "beacon"

// FileConfig defines the structure loaded from the optional YAML
// configuration file. Only the platform connection and rate limits are
// file-configurable; everything else comes from environment variables.
type FileConfig struct {
	URL           string   `yaml:"url,omitempty"`
	OrgID         string   `yaml:"org_id,omitempty"`
	QueryRate     *float64 `yaml:"query_rate,omitempty"`
	QueryBurst    *int     `yaml:"query_burst,omitempty"`
	DatasetsRate  *float64 `yaml:"datasets_rate,omitempty"`
	DatasetsBurst *int     `yaml:"datasets_burst,omitempty"`
}

// Config holds the final application configuration, merged from file and
// environment variables. Env vars use the prefix "BEACON_" and override
// file settings.
type Config struct {
	// Config file path (loaded first from env). Empty means no file.
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	// Platform connection. URL defaults to the hosted platform; defaults
	// for file-overridable fields live in Load, not in tags, so a second
	// envconfig pass cannot clobber file settings.
	URL   string `envconfig:"URL"`
	Token string `envconfig:"TOKEN"`
	OrgID string `envconfig:"ORG_ID"`

	// Per-tool rate limits: sustained invocations per second plus burst.
	QueryRate     float64 `envconfig:"QUERY_RATE"`
	QueryBurst    int     `envconfig:"QUERY_BURST"`
	DatasetsRate  float64 `envconfig:"DATASETS_RATE"`
	DatasetsBurst int     `envconfig:"DATASETS_BURST"`

	// Servers and timeouts.
	ListenAddr        string        `envconfig:"LISTEN_ADDR" default:":8080"`
	AdminAddr         string        `envconfig:"ADMIN_ADDR" default:":8081"`
	HTTPClientTimeout time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	// Observability.
	OtelExporterOtlpEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string `envconfig:"LOG_LEVEL" default:"info"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration first from environment variables (to get the
// file path), then from the YAML file if one is specified, and finally
// processes environment variables again so they override file settings.
func Load() (*Config, error) {
	cfg := Config{
		URL:           "https://api.beacon.co",
		QueryRate:     1,
		QueryBurst:    1,
		DatasetsRate:  1,
		DatasetsBurst: 1,
	}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	if cfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(cfg.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", cfg.ConfigFilePath, err)
		}
		var fileCfg FileConfig
		if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", cfg.ConfigFilePath, err)
		}
		applyFileConfig(&cfg, fileCfg)
		slog.Info("Loaded configuration from file.", "path", cfg.ConfigFilePath)

		// Process environment variables AGAIN so they override file settings.
		if err := envconfig.Process(envPrefix, &cfg); err != nil {
			return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
		}
	}

	if cfg.Token == "" {
		return nil, errors.New("BEACON_TOKEN must be set")
	}
	return &cfg, nil
}

func applyFileConfig(cfg *Config, file FileConfig) {
	if file.URL != "" {
		cfg.URL = file.URL
	}
	if file.OrgID != "" {
		cfg.OrgID = file.OrgID
	}
	if file.QueryRate != nil {
		cfg.QueryRate = *file.QueryRate
	}
	if file.QueryBurst != nil {
		cfg.QueryBurst = *file.QueryBurst
	}
	if file.DatasetsRate != nil {
		cfg.DatasetsRate = *file.DatasetsRate
	}
	if file.DatasetsBurst != nil {
		cfg.DatasetsBurst = *file.DatasetsBurst
	}
}
