// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/adaptiq/internal/irt"
	"github.com/abhisek/adaptiq/internal/session"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds all server configuration.
type Config struct {
	HTTPAddr string
	// DBPath is the SQLite file. Empty means store.DefaultDBPath.
	DBPath string

	SessionBackend string
	Redis          RedisConfig

	JWTSecret   string
	JWTIssuer   string
	CORSOrigins []string

	IdleTimeout    time.Duration
	ReapInterval   time.Duration
	ExposureWindow int

	LogMode         string
	LogLevel        string
	HashIdentifiers bool

	Engine session.Config
}

// RedisConfig locates the Redis session backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// LoadEngine reads the engine tuning alone, for commands that run the
// engine without the HTTP server.
func LoadEngine() (session.Config, error) {
	engine := session.DefaultConfig()
	engine.Rules.ConvergenceSE = getEnvFloat("ADAPTIQ_SE_THRESHOLD", engine.Rules.ConvergenceSE)
	engine.Rules.MinItemsPerSection = getEnvInt("ADAPTIQ_MIN_ITEMS", engine.Rules.MinItemsPerSection)
	engine.Rules.MaxItemsPerSection = getEnvInt("ADAPTIQ_MAX_ITEMS", engine.Rules.MaxItemsPerSection)
	engine.Rules.MaxQuestions = getEnvInt("ADAPTIQ_MAX_QUESTIONS", engine.Rules.MaxQuestions)
	engine.Rules.TimeBudget = getEnvDuration("ADAPTIQ_TIME_BUDGET", engine.Rules.TimeBudget)
	engine.SignalThreshold = getEnvFloat("ADAPTIQ_SIGNAL_THRESHOLD", engine.SignalThreshold)

	switch strings.ToLower(getEnv("ADAPTIQ_ESTIMATOR", "map")) {
	case "mle":
		engine.Estimator.Prior = nil
	default:
		engine.Estimator.Prior = &irt.Prior{
			Mean: getEnvFloat("ADAPTIQ_PRIOR_MEAN", 0),
			SD:   getEnvFloat("ADAPTIQ_PRIOR_SD", 1),
		}
	}

	engine.Scoring.EIQ.Center = getEnvFloat("ADAPTIQ_EIQ_CENTER", engine.Scoring.EIQ.Center)
	engine.Scoring.EIQ.Slope = getEnvFloat("ADAPTIQ_EIQ_SLOPE", engine.Scoring.EIQ.Slope)
	engine.Scoring.IQ.Center = getEnvFloat("ADAPTIQ_IQ_CENTER", engine.Scoring.IQ.Center)
	engine.Scoring.IQ.Slope = getEnvFloat("ADAPTIQ_IQ_SLOPE", engine.Scoring.IQ.Slope)
	engine.Scoring.ImmersionFrom = getEnvInt("ADAPTIQ_IMMERSION_FROM", engine.Scoring.ImmersionFrom)
	engine.Scoring.MasteryFrom = getEnvInt("ADAPTIQ_MASTERY_FROM", engine.Scoring.MasteryFrom)

	if err := engine.Validate(); err != nil {
		return session.Config{}, fmt.Errorf("invalid engine configuration: %w", err)
	}
	return engine, nil
}

// Load reads configuration from ADAPTIQ_* environment variables.
func Load() (*Config, error) {
	engine, err := LoadEngine()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:       getEnv("ADAPTIQ_HTTP_ADDR", ":8080"),
		DBPath:         getEnv("ADAPTIQ_DB", ""),
		SessionBackend: strings.ToLower(getEnv("ADAPTIQ_SESSION_BACKEND", BackendSQLite)),
		Redis: RedisConfig{
			Addr:     getEnv("ADAPTIQ_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ADAPTIQ_REDIS_PASSWORD", ""),
			DB:       getEnvInt("ADAPTIQ_REDIS_DB", 0),
			Prefix:   getEnv("ADAPTIQ_REDIS_PREFIX", "adaptiq:"),
			TTL:      getEnvDuration("ADAPTIQ_REDIS_TTL", 7*24*time.Hour),
		},
		JWTSecret:       getEnv("ADAPTIQ_JWT_SECRET", ""),
		JWTIssuer:       getEnv("ADAPTIQ_JWT_ISSUER", "adaptiq"),
		CORSOrigins:     getEnvList("ADAPTIQ_CORS_ORIGINS", []string{"http://localhost:3000"}),
		IdleTimeout:     getEnvDuration("ADAPTIQ_IDLE_TIMEOUT", 30*time.Minute),
		ReapInterval:    getEnvDuration("ADAPTIQ_REAP_INTERVAL", time.Minute),
		ExposureWindow:  getEnvInt("ADAPTIQ_EXPOSURE_WINDOW", session.DefaultExposureWindow),
		LogMode:         getEnv("ADAPTIQ_LOG_MODE", "dev"),
		LogLevel:        getEnv("ADAPTIQ_LOG_LEVEL", "info"),
		HashIdentifiers: getEnvBool("ADAPTIQ_LOG_HASH_IDS", true),
		Engine:          engine,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("ADAPTIQ_HTTP_ADDR cannot be empty")
	}
	switch c.SessionBackend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("ADAPTIQ_REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown ADAPTIQ_SESSION_BACKEND %q (want memory, sqlite or redis)", c.SessionBackend)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("ADAPTIQ_JWT_SECRET must be at least 16 characters")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("ADAPTIQ_IDLE_TIMEOUT must be > 0")
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("ADAPTIQ_REAP_INTERVAL must be > 0")
	}
	if c.ExposureWindow < 0 {
		return fmt.Errorf("ADAPTIQ_EXPOSURE_WINDOW must be >= 0")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
