// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as the bot token, database path, cooldown windows, night-gate
// boundaries, per-command point deltas, retention horizons, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "aura-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// defaultPoints holds the built-in aura delta for each command. Individual
// entries can be overridden with POINTS_<COMMAND> environment variables.
var defaultPoints = map[string]int{
	"gay":     -100,
	"couple":  100,
	"simp":    -100,
	"toxic":   -100,
	"cringe":  -100,
	"respect": 500,
	"sus":     -100,
	"ghost":   -200,
}

// Config holds all configuration values for the application.
type Config struct {
	// Telegram
	BotToken      string // BOT_TOKEN
	BotUsername   string // BOT_USERNAME (for the add-to-group link)
	UpdatesLink   string // UPDATES_CHANNEL
	SupportLink   string // SUPPORT_GROUP
	UpdateTimeout int    // long-poll timeout in seconds

	// Flood guard on the update loop (per-chat token bucket)
	FloodRPS   float64 // FLOOD_RPS (>= 0)
	FloodBurst int     // FLOOD_BURST (>= 1)

	// HTTP keepalive / metrics server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Storage
	DBPath string // SQLite path

	// Selection engine
	HourlyCooldown     time.Duration // min spacing between repeated invocations
	ActivityWindow     time.Duration // trailing window for pool eligibility
	UsageRetention     time.Duration // horizon for usage-record sweeps
	SelectionRetention time.Duration // horizon for selection sweeps (0 keeps forever)
	SweepInterval      time.Duration // cadence of the retention sweep
	LeaderboardLimit   int           // rows in /aura output

	// Night gate (ghost command)
	NightTZ        string // IANA zone name, e.g. Asia/Dhaka
	NightStartHour int    // window opens at this local hour
	NightEndHour   int    // window closes at this local hour

	// Calendar-day boundary for the idempotence key
	DayTZ string

	// Per-command aura deltas
	Points map[string]int

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Telegram
		BotToken:      getenv("BOT_TOKEN", ""),
		BotUsername:   getenv("BOT_USERNAME", ""),
		UpdatesLink:   getenv("UPDATES_CHANNEL", "https://t.me/aura_bot_updates"),
		SupportLink:   getenv("SUPPORT_GROUP", "https://t.me/aura_bot_support"),
		UpdateTimeout: getint("UPDATE_TIMEOUT", 60),

		// Flood guard
		FloodRPS:   getfloat("FLOOD_RPS", 2.0),
		FloodBurst: getint("FLOOD_BURST", 5),

		// HTTP
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Storage
		DBPath: getenv("DB_PATH", "aura_bot.db"),

		// Engine
		HourlyCooldown:     getdur("HOURLY_COOLDOWN", time.Hour),
		ActivityWindow:     getdur("ACTIVITY_WINDOW", 30*24*time.Hour),
		UsageRetention:     getdur("USAGE_RETENTION", 7*24*time.Hour),
		SelectionRetention: getdur("SELECTION_RETENTION", 0),
		SweepInterval:      getdur("SWEEP_INTERVAL", 24*time.Hour),
		LeaderboardLimit:   getint("LEADERBOARD_LIMIT", 10),

		// Night gate
		NightTZ:        getenv("NIGHT_TZ", "Asia/Dhaka"),
		NightStartHour: getint("NIGHT_START_HOUR", 18),
		NightEndHour:   getint("NIGHT_END_HOUR", 6),

		DayTZ: getenv("DAY_TZ", "Asia/Dhaka"),

		Points: loadPoints(),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "aura-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.UpdateTimeout < 0 {
		return cfg, errors.New("UPDATE_TIMEOUT must be >= 0")
	}
	if cfg.FloodRPS < 0 {
		return cfg, errors.New("FLOOD_RPS must be >= 0")
	}
	if cfg.FloodBurst < 1 {
		return cfg, errors.New("FLOOD_BURST must be >= 1")
	}
	if cfg.HourlyCooldown <= 0 {
		return cfg, errors.New("HOURLY_COOLDOWN must be > 0")
	}
	if cfg.ActivityWindow <= 0 {
		return cfg, errors.New("ACTIVITY_WINDOW must be > 0")
	}
	if cfg.UsageRetention <= 0 {
		return cfg, errors.New("USAGE_RETENTION must be > 0")
	}
	if cfg.SelectionRetention < 0 {
		return cfg, errors.New("SELECTION_RETENTION must be >= 0")
	}
	if cfg.SweepInterval <= 0 {
		return cfg, errors.New("SWEEP_INTERVAL must be > 0")
	}
	if cfg.LeaderboardLimit < 1 {
		return cfg, errors.New("LEADERBOARD_LIMIT must be >= 1")
	}
	if cfg.NightStartHour < 0 || cfg.NightStartHour > 23 ||
		cfg.NightEndHour < 0 || cfg.NightEndHour > 23 {
		return cfg, errors.New("night window hours must be within 0..23")
	}
	if _, err := time.LoadLocation(cfg.NightTZ); err != nil {
		return cfg, fmt.Errorf("NIGHT_TZ: %w", err)
	}
	if _, err := time.LoadLocation(cfg.DayTZ); err != nil {
		return cfg, fmt.Errorf("DAY_TZ: %w", err)
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// loadPoints copies the built-in delta table and applies any
// POINTS_<COMMAND> overrides from the environment.
func loadPoints() map[string]int {
	out := make(map[string]int, len(defaultPoints))
	for name, delta := range defaultPoints {
		out[name] = getint("POINTS_"+strings.ToUpper(name), delta)
	}
	return out
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
