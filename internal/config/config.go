// Package config reads service settings from the environment. cmd/* loads a
// .env file first, so values may come from either place.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"route66-trip-service/internal/services"
)

const envPrefix = "ROUTE66_"

// Get returns the value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config: ignoring invalid integer", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return n
}

func GetFloat(key string, fallback float64) float64 {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("config: ignoring invalid number", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return f
}

// GetDuration accepts time.ParseDuration syntax ("250ms", "30m").
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config: ignoring invalid duration", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return d
}

func GetBool(key string, fallback bool) bool {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config: ignoring invalid boolean", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return b
}

// GetList splits a comma-separated value, dropping blank entries.
func GetList(key string, fallback []string) []string {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Config is the full runtime configuration of the server and dbtool.
type Config struct {
	Port            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	LogLevel  slog.Level
	LogFormat string

	// DatabaseURL selects Postgres when set; otherwise SQLite at DBPath.
	DatabaseURL string
	DBPath      string
	SeedPath    string
	SeedOnStart bool

	// ORSAPIKey enables live distance refinement when set.
	ORSAPIKey  string
	ORSBaseURL string

	// RedisAddr moves the provider caches to Redis when set.
	RedisAddr     string
	RedisCacheTTL time.Duration

	Planner services.Config
}

func (c Config) UsePostgres() bool { return c.DatabaseURL != "" }

// Load reads every setting, applying defaults for anything unset.
func Load() (Config, error) {
	level, err := parseLevel(Get("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	format := strings.ToLower(Get("LOG_FORMAT", "json"))
	if format != "json" && format != "text" {
		return Config{}, fmt.Errorf("config: LOG_FORMAT must be json or text, got %q", format)
	}

	cfg := Config{
		Port:            Get("PORT", "8080"),
		ShutdownTimeout: GetDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigins:     GetList("CORS_ORIGINS", []string{"*"}),
		LogLevel:        level,
		LogFormat:       format,
		DatabaseURL:     Get("DATABASE_URL", ""),
		DBPath:          Get("DB_PATH", "data/app.db"),
		SeedPath:        Get("SEED_PATH", "data/seeds/stops.json"),
		SeedOnStart:     GetBool("SEED_ON_START", true),
		ORSAPIKey:       Get("ORS_API_KEY", ""),
		ORSBaseURL:      Get("ORS_BASE_URL", ""),
		RedisAddr:       Get("REDIS_ADDR", ""),
		RedisCacheTTL:   GetDuration("REDIS_CACHE_TTL", 7*24*time.Hour),
		Planner:         LoadPlanner(),
	}
	return cfg, nil
}

// LoadPlanner overlays ROUTE66_* variables on services.DefaultConfig.
func LoadPlanner() services.Config {
	c := services.DefaultConfig()
	t := &c.Tolerance

	t.DefaultMiles = GetFloat(envPrefix+"TOLERANCE_DEFAULT_MILES", t.DefaultMiles)
	t.DestinationCityMiles = GetFloat(envPrefix+"TOLERANCE_CITY_MILES", t.DestinationCityMiles)
	t.ShortSegmentMiles = GetFloat(envPrefix+"SHORT_SEGMENT_MILES", t.ShortSegmentMiles)
	t.LongSegmentMiles = GetFloat(envPrefix+"LONG_SEGMENT_MILES", t.LongSegmentMiles)
	t.ShortRatio = GetFloat(envPrefix+"SHORT_RATIO", t.ShortRatio)
	t.StandardRatio = GetFloat(envPrefix+"STANDARD_RATIO", t.StandardRatio)
	t.LongRatio = GetFloat(envPrefix+"LONG_RATIO", t.LongRatio)
	t.DestinationCityRatio = GetFloat(envPrefix+"CITY_RATIO", t.DestinationCityRatio)

	c.DuplicateProximityMiles = GetFloat(envPrefix+"DUPLICATE_PROXIMITY_MILES", c.DuplicateProximityMiles)
	c.ColocatedProximityMiles = GetFloat(envPrefix+"COLOCATED_PROXIMITY_MILES", c.ColocatedProximityMiles)
	c.WaypointKeepRatio = GetFloat(envPrefix+"WAYPOINT_KEEP_RATIO", c.WaypointKeepRatio)
	c.OtherKeepRatio = GetFloat(envPrefix+"OTHER_KEEP_RATIO", c.OtherKeepRatio)
	c.MaxTripDays = GetInt(envPrefix+"MAX_TRIP_DAYS", c.MaxTripDays)
	c.MaxAttractionsPerSegment = GetInt(envPrefix+"MAX_ATTRACTIONS_PER_SEGMENT", c.MaxAttractionsPerSegment)
	c.EnrichmentConcurrency = GetInt(envPrefix+"ENRICHMENT_CONCURRENCY", c.EnrichmentConcurrency)
	c.LiveCallDelay = GetDuration(envPrefix+"LIVE_CALL_DELAY", c.LiveCallDelay)
	c.LiveCallTimeout = GetDuration(envPrefix+"LIVE_CALL_TIMEOUT", c.LiveCallTimeout)
	c.SessionCacheTTL = GetDuration(envPrefix+"SESSION_CACHE_TTL", c.SessionCacheTTL)

	return c
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return l, nil
}
