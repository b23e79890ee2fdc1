package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/mapbridge/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Map       MapConfig       `mapstructure:"map"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Filters   FiltersConfig   `mapstructure:"filters"`
	Events    EventsConfig    `mapstructure:"events"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
	Enabled     bool   `mapstructure:"enabled"`
}

// MapConfig holds session defaults.
type MapConfig struct {
	DefaultProvider string `mapstructure:"default_provider"`
	Width           int    `mapstructure:"width"`
	Height          int    `mapstructure:"height"`
	Debug           bool   `mapstructure:"debug"`
}

// ProvidersConfig holds API keys for the providers that need one.
type ProvidersConfig struct {
	GoogleKey    string `mapstructure:"google_key"`
	YahooKey     string `mapstructure:"yahoo_key"`
	MapQuestKey  string `mapstructure:"mapquest_key"`
	OpenSpaceKey string `mapstructure:"openspace_key"`
}

// Keys returns the configured keys by provider id.
func (p ProvidersConfig) Keys() map[string]string {
	keys := make(map[string]string)
	for id, k := range map[string]string{
		"google":    p.GoogleKey,
		"yahoo":     p.YahooKey,
		"mapquest":  p.MapQuestKey,
		"openspace": p.OpenSpaceKey,
	} {
		if k != "" {
			keys[id] = k
		}
	}
	return keys
}

type FiltersConfig struct {
	EqualityMode string `mapstructure:"equality_mode"`
}

// EventsConfig limits how fast moveend events are fanned out per session.
type EventsConfig struct {
	MoveEndRate  float64 `mapstructure:"moveend_rate"`
	MoveEndBurst int     `mapstructure:"moveend_burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.endpoint", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("map.default_provider", "openlayers")
	v.SetDefault("map.width", 800)
	v.SetDefault("map.height", 600)
	v.SetDefault("map.debug", false)
	v.SetDefault("providers.google_key", "")
	v.SetDefault("providers.yahoo_key", "")
	v.SetDefault("providers.mapquest_key", "")
	v.SetDefault("providers.openspace_key", "")
	v.SetDefault("filters.equality_mode", "hide_matches")
	v.SetDefault("events.moveend_rate", 5.0)
	v.SetDefault("events.moveend_burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: MAPBRIDGE_PROVIDERS_GOOGLE_KEY → providers.google_key
	v.SetEnvPrefix("MAPBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// EqualityMode parses filters.equality_mode.
func (c *Config) EqualityMode() domain.EqualityMode {
	m, _ := domain.ParseEqualityMode(c.Filters.EqualityMode)
	return m
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, "telemetry.endpoint is required when telemetry is enabled")
	}
	if c.Map.DefaultProvider == "" {
		errs = append(errs, "map.default_provider is required")
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		errs = append(errs, fmt.Sprintf("map viewport must be positive, got %dx%d", c.Map.Width, c.Map.Height))
	}
	if _, err := domain.ParseEqualityMode(c.Filters.EqualityMode); err != nil {
		errs = append(errs, fmt.Sprintf("filters.equality_mode must be hide_matches or keep_matches, got %q", c.Filters.EqualityMode))
	}
	if c.Events.MoveEndRate <= 0 {
		errs = append(errs, "events.moveend_rate must be positive")
	}
	if c.Events.MoveEndBurst <= 0 {
		errs = append(errs, "events.moveend_burst must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
