package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Balloons BalloonConfig
	Fires    FireConfig
	Scene    SceneConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type APIConfig struct {
	RateLimit int // requests per second, global
}

type BalloonConfig struct {
	BaseURL      string
	FetchWorkers int
	TrackStride  int
	Timeout      time.Duration
}

type FireConfig struct {
	BaseURL  string
	MapKey   string // empty disables the fire feed
	Source   string
	DayRange int
	MaxFires int
	Timeout  time.Duration
}

type SceneConfig struct {
	CacheTTL       time.Duration
	PaddingDeg     float64
	MatchFullTrack bool
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	timeout := getEnvDuration("HTTP_TIMEOUT", 15*time.Second)

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("PORT", getEnvInt("SERVER_PORT", 8080)),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 5),
		},
		Balloons: BalloonConfig{
			BaseURL:      getEnv("BALLOON_BASE_URL", "https://a.windbornesystems.com/treasure"),
			FetchWorkers: getEnvInt("BALLOON_FETCH_WORKERS", 24),
			TrackStride:  getEnvInt("TRACK_STRIDE", 1),
			Timeout:      timeout,
		},
		Fires: FireConfig{
			BaseURL:  getEnv("FIRMS_BASE_URL", "https://firms.modaps.eosdis.nasa.gov/api/area/csv"),
			MapKey:   os.Getenv("FIRMS_MAP_KEY"),
			Source:   getEnv("FIRMS_SOURCE", "VIIRS_SNPP_NRT"),
			DayRange: getEnvInt("FIRMS_DAY_RANGE", 1),
			MaxFires: getEnvInt("FIRMS_MAX_FIRES", 2000),
			Timeout:  timeout,
		},
		Scene: SceneConfig{
			CacheTTL:       getEnvDuration("SCENE_CACHE_TTL", 5*time.Minute),
			PaddingDeg:     getEnvFloat("BBOX_PADDING_DEG", 2),
			MatchFullTrack: getEnvBool("FIRE_MATCH_FULL_TRACK", false),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.API.RateLimit < 1 {
		return fmt.Errorf("API rate limit must be at least 1, got %d", c.API.RateLimit)
	}
	if c.Balloons.FetchWorkers < 1 {
		return fmt.Errorf("balloon fetch workers must be at least 1, got %d", c.Balloons.FetchWorkers)
	}
	if c.Balloons.TrackStride < 1 {
		return fmt.Errorf("track stride must be at least 1, got %d", c.Balloons.TrackStride)
	}
	if c.Balloons.Timeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive")
	}
	// FIRMS rejects anything outside 1..10
	if c.Fires.DayRange < 1 || c.Fires.DayRange > 10 {
		return fmt.Errorf("FIRMS day range must be between 1 and 10, got %d", c.Fires.DayRange)
	}
	if c.Fires.MaxFires < 1 {
		return fmt.Errorf("FIRMS max fires must be at least 1, got %d", c.Fires.MaxFires)
	}
	if c.Scene.PaddingDeg < 0 {
		return fmt.Errorf("bounding box padding must not be negative, got %g", c.Scene.PaddingDeg)
	}
	if c.Scene.CacheTTL <= 0 {
		return fmt.Errorf("scene cache TTL must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
