package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Scene.CacheTTL != 5*time.Minute {
		t.Errorf("expected TTL 5m, got %v", cfg.Scene.CacheTTL)
	}
	if cfg.Fires.Source != "VIIRS_SNPP_NRT" {
		t.Errorf("expected default source VIIRS_SNPP_NRT, got %s", cfg.Fires.Source)
	}
	if cfg.Fires.DayRange != 1 {
		t.Errorf("expected day range 1, got %d", cfg.Fires.DayRange)
	}
	if cfg.Balloons.FetchWorkers != 24 {
		t.Errorf("expected 24 fetch workers, got %d", cfg.Balloons.FetchWorkers)
	}
}

func TestLoad_MissingMapKeyIsNotFatal(t *testing.T) {
	t.Setenv("FIRMS_MAP_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error without a map key, got %v", err)
	}
	if cfg.Fires.MapKey != "" {
		t.Errorf("expected empty map key, got %q", cfg.Fires.MapKey)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("FIRMS_MAP_KEY", "abc123")
	t.Setenv("FIRMS_SOURCE", "MODIS_NRT")
	t.Setenv("SCENE_CACHE_TTL", "30s")
	t.Setenv("BBOX_PADDING_DEG", "0.5")
	t.Setenv("FIRE_MATCH_FULL_TRACK", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Fires.MapKey != "abc123" {
		t.Errorf("expected map key abc123, got %q", cfg.Fires.MapKey)
	}
	if cfg.Fires.Source != "MODIS_NRT" {
		t.Errorf("expected source MODIS_NRT, got %s", cfg.Fires.Source)
	}
	if cfg.Scene.CacheTTL != 30*time.Second {
		t.Errorf("expected TTL 30s, got %v", cfg.Scene.CacheTTL)
	}
	if cfg.Scene.PaddingDeg != 0.5 {
		t.Errorf("expected padding 0.5, got %g", cfg.Scene.PaddingDeg)
	}
	if !cfg.Scene.MatchFullTrack {
		t.Error("expected full-track matching to be enabled")
	}
}

func TestLoad_PortEnvWins(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("expected PORT to win, got %d", cfg.Server.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"day range too large", "FIRMS_DAY_RANGE", "11"},
		{"zero stride", "TRACK_STRIDE", "0"},
		{"negative padding", "BBOX_PADDING_DEG", "-1"},
		{"zero workers", "BALLOON_FETCH_WORKERS", "0"},
		{"zero ttl", "SCENE_CACHE_TTL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
