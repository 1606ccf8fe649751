package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the TriageDesk server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gen      GenConfig
	Triage   TriageConfig
}

type ServerConfig struct {
	Port              int
	Env               string
	RequestsPerMinute int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// GenConfig configures the external text-generation service. Provider "none"
// (or a missing API key) yields a disabled generator; the pipeline then
// degrades to empty recommendation lists instead of failing.
type GenConfig struct {
	Provider string
	Timeout  time.Duration
	OpenAI   OpenAIConfig
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// TriageConfig holds tunables for the analysis pipeline.
type TriageConfig struct {
	SimilarityLimit int
	HistoryTTL      time.Duration
	AnalysisTTL     time.Duration
}

var validProviders = map[string]bool{
	"none":   true,
	"openai": true,
	"mock":   true,
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value
// is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              envInt("TRIAGEDESK_PORT", 8080),
			Env:               envString("TRIAGEDESK_ENV", "development"),
			RequestsPerMinute: envInt("TRIAGEDESK_RATE_LIMIT_RPM", 60),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Gen: GenConfig{
			Provider: envString("GEN_PROVIDER", "openai"),
			Timeout:  envDurationSecs("GEN_TIMEOUT_SECS", 30*time.Second),
			OpenAI: OpenAIConfig{
				APIKey:      os.Getenv("OPENAI_API_KEY"),
				Model:       envString("OPENAI_MODEL", "gpt-4o-mini"),
				MaxTokens:   envInt("OPENAI_MAX_TOKENS", 300),
				Temperature: envFloat("OPENAI_TEMPERATURE", 0.7),
			},
		},
		Triage: TriageConfig{
			SimilarityLimit: envInt("TRIAGE_SIMILARITY_LIMIT", 5),
			HistoryTTL:      envDurationSecs("TRIAGE_HISTORY_TTL_SECS", 1800*time.Second),
			AnalysisTTL:     envDurationSecs("TRIAGE_ANALYSIS_TTL_SECS", 3600*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validProviders[c.Gen.Provider] {
		return fmt.Errorf("GEN_PROVIDER must be one of openai, mock, none; got %q", c.Gen.Provider)
	}

	if c.Triage.SimilarityLimit <= 0 {
		return fmt.Errorf("TRIAGE_SIMILARITY_LIMIT must be positive, got %d", c.Triage.SimilarityLimit)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
