package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("mapd")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Map.DefaultProvider != "openlayers" || cfg.Map.Width != 800 || cfg.Map.Height != 600 {
		t.Errorf("unexpected map defaults %+v", cfg.Map)
	}
	if cfg.Telemetry.ServiceName != "mapd" {
		t.Errorf("expected service name mapd, got %s", cfg.Telemetry.ServiceName)
	}
	if cfg.EqualityMode() != domain.EqualityHidesMatches {
		t.Errorf("expected hide_matches by default")
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MAPBRIDGE_PROVIDERS_GOOGLE_KEY", "abc")
	t.Setenv("MAPBRIDGE_FILTERS_EQUALITY_MODE", "keep_matches")
	t.Setenv("MAPBRIDGE_MAP_DEFAULT_PROVIDER", "google")

	cfg, err := config.Load("mapd")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if keys := cfg.Providers.Keys(); keys["google"] != "abc" || len(keys) != 1 {
		t.Errorf("unexpected keys %v", keys)
	}
	if cfg.EqualityMode() != domain.EqualityKeepsMatches {
		t.Errorf("expected keep_matches from env")
	}
	if cfg.Map.DefaultProvider != "google" {
		t.Errorf("expected google, got %s", cfg.Map.DefaultProvider)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := config.Config{
		Server:  config.ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		NATS:    config.NATSConfig{Enabled: true},
		Map:     config.MapConfig{DefaultProvider: "google", Width: 0, Height: 600},
		Filters: config.FiltersConfig{EqualityMode: "invert"},
		Events:  config.EventsConfig{MoveEndRate: 1, MoveEndBurst: 1},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "nats.url", "map viewport", "filters.equality_mode"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
