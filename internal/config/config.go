package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// Config holds application configuration
type Config struct {
	AppEnv string
	Port   string
	DBPath string

	// JWT verification
	JWTSecret string
	JWTIssuer string

	// Logging
	LogLevel  string
	LogFormat string

	// Redis; an empty address disables the distributed lock and pub/sub
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Rate limit
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	// SettingsCacheTTL bounds how long detection settings are cached
	SettingsCacheTTL time.Duration

	// SSEHeartbeat is the keep-alive interval of the visit stream
	SSEHeartbeat time.Duration

	// Detection defaults, overridable at runtime through the settings API
	Detection models.DetectionSettings
}

// Load reads configuration from the environment after loading an optional .env
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.Port = getEnv("PORT", ":8080")
	if !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	cfg.DBPath = getEnv("DB_PATH", "./data/placevisit.db")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPass = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0)

	cfg.RLEnabled = getBool("RL_ENABLED", true)
	cfg.RLLimit = getInt("RL_REQUESTS_LIMIT", 600)
	cfg.RLWindow = time.Duration(getInt("RL_WINDOW_SECONDS", 60)) * time.Second

	cfg.SettingsCacheTTL = getDuration("SETTINGS_CACHE_TTL", 30*time.Second)
	cfg.SSEHeartbeat = getDuration("SSE_HEARTBEAT", 25*time.Second)

	d := models.DefaultDetectionSettings()
	d.LocationTimeThresholdMinutes = getFloat("VISIT_LOCATION_TIME_THRESHOLD_MINUTES", d.LocationTimeThresholdMinutes)
	d.VisitedRequiredHits = getInt("VISIT_REQUIRED_HITS", d.VisitedRequiredHits)
	d.VisitedMinRadiusMeters = getFloat("VISIT_MIN_RADIUS_METERS", d.VisitedMinRadiusMeters)
	d.VisitedMaxRadiusMeters = getFloat("VISIT_MAX_RADIUS_METERS", d.VisitedMaxRadiusMeters)
	d.VisitedAccuracyMultiplier = getFloat("VISIT_ACCURACY_MULTIPLIER", d.VisitedAccuracyMultiplier)
	d.VisitedAccuracyRejectMeters = getFloat("VISIT_ACCURACY_REJECT_METERS", d.VisitedAccuracyRejectMeters)
	d.VisitedMaxSearchRadiusMeters = getFloat("VISIT_MAX_SEARCH_RADIUS_METERS", d.VisitedMaxSearchRadiusMeters)
	d.VisitedPlaceNotesSnapshotMaxHtmlChars = getInt("VISIT_NOTES_SNAPSHOT_MAX_HTML_CHARS", d.VisitedPlaceNotesSnapshotMaxHtmlChars)
	d.MissingAccuracyPolicy = models.MissingAccuracyPolicy(getEnv("VISIT_MISSING_ACCURACY_POLICY", string(d.MissingAccuracyPolicy)))
	d.CrossPlacePolicy = models.CrossPlacePolicy(getEnv("VISIT_CROSS_PLACE_POLICY", string(d.CrossPlacePolicy)))
	cfg.Detection = d

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	if cfg.RLEnabled && (cfg.RLLimit <= 0 || cfg.RLWindow <= 0) {
		return nil, fmt.Errorf("RL_REQUESTS_LIMIT and RL_WINDOW_SECONDS must be positive")
	}
	if err := cfg.Detection.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection defaults: %w", err)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getDuration accepts Go durations ("30s") or plain seconds ("30")
func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
