// Package config holds the runtime configuration of the honeypot. All
// settings come from environment variables with sensible defaults; an
// optional YAML file can overlay any setting it names.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// StoreBackend selects the session persistence backend.
type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"   // Process-local (default)
	StoreRedis    StoreBackend = "redis"    // Shared/restart-safe
	StorePostgres StoreBackend = "postgres" // Durable, queryable
)

// LLMProvider defines the backend reply-generation service type.
type LLMProvider string

const (
	ProviderNone       LLMProvider = "none"       // Scripted persona only
	ProviderOpenRouter LLMProvider = "openrouter" // OpenRouter (default when a key is set)
	ProviderOllama     LLMProvider = "ollama"     // Local Ollama server
	ProviderGroq       LLMProvider = "groq"       // Groq
	ProviderCustom     LLMProvider = "custom"     // Any OpenAI-compatible endpoint
)

// Config holds global settings for the honeypot engine and its transport.
type Config struct {
	// === Core Settings ===
	APIKey   string // X-API-Key expected on /honeypot/message
	LogLevel string // zerolog level name (default: "info")

	// === Exit Thresholds ===
	// The hard safety valves that bound engagement regardless of AI output.
	ConfidenceCeiling float64 // Exit when confidence reaches this (default: 0.95)
	TurnCeiling       int     // Exit at this many turns (default: 12)

	// === Callback ===
	CallbackURL     string        // Evaluator endpoint receiving the final report
	CallbackTimeout time.Duration // Per-attempt timeout (default: 5s)

	// === Session Store ===
	StoreBackend StoreBackend  // memory | redis | postgres
	RedisAddr    string        // host:port for the redis backend
	RedisDB      int           // redis database index
	PostgresDSN  string        // connection string for the postgres backend
	SessionTTL   time.Duration // idle eviction age; 0 keeps sessions forever

	// === Reply Generation ===
	// The external text generator is optional; without it the scripted
	// persona answers deterministically.
	LLMProvider LLMProvider
	LLMAPIKey   string
	LLMModel    string
	LLMBaseURL  string
	LLMTimeout  time.Duration
}

// NewDefaultConfig creates a Config from environment variables with defaults.
func NewDefaultConfig() *Config {
	return &Config{
		APIKey:   GetEnv("HONEYPOT_API_KEY", "guvi-honeypot-demo-key"),
		LogLevel: GetEnv("HONEYPOT_LOG_LEVEL", "info"),

		ConfidenceCeiling: GetEnvFloat("HONEYPOT_CONFIDENCE_CEILING", 0.95),
		TurnCeiling:       GetEnvInt("HONEYPOT_TURN_CEILING", 12),

		CallbackURL:     GetEnv("HONEYPOT_CALLBACK_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		CallbackTimeout: time.Duration(GetEnvInt("HONEYPOT_CALLBACK_TIMEOUT_MS", 5000)) * time.Millisecond,

		StoreBackend: StoreBackend(GetEnv("HONEYPOT_STORE", string(StoreMemory))),
		RedisAddr:    GetEnv("HONEYPOT_REDIS_ADDR", "localhost:6379"),
		RedisDB:      GetEnvInt("HONEYPOT_REDIS_DB", 0),
		PostgresDSN:  GetEnv("HONEYPOT_POSTGRES_DSN", ""),
		SessionTTL:   time.Duration(GetEnvInt("HONEYPOT_SESSION_TTL_SECONDS", 0)) * time.Second,

		LLMProvider: detectLLMProvider(),
		LLMAPIKey:   GetEnv("HONEYPOT_LLM_API_KEY", os.Getenv("OPENROUTER_API_KEY")),
		LLMModel:    GetEnv("HONEYPOT_LLM_MODEL", "meta-llama/llama-3.1-8b-instruct:free"),
		LLMBaseURL:  GetEnv("HONEYPOT_LLM_BASE_URL", ""),
		LLMTimeout:  time.Duration(GetEnvInt("HONEYPOT_LLM_TIMEOUT_MS", 20000)) * time.Millisecond,
	}
}

func detectLLMProvider() LLMProvider {
	if p := os.Getenv("HONEYPOT_LLM_PROVIDER"); p != "" {
		return LLMProvider(p)
	}
	if os.Getenv("HONEYPOT_LLM_API_KEY") != "" || os.Getenv("OPENROUTER_API_KEY") != "" {
		return ProviderOpenRouter
	}
	return ProviderNone
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.ConfidenceCeiling <= 0 || c.ConfidenceCeiling > 1 {
		return fmt.Errorf("confidence ceiling %.2f outside (0, 1]", c.ConfidenceCeiling)
	}
	if c.TurnCeiling < 1 {
		return fmt.Errorf("turn ceiling %d must be at least 1", c.TurnCeiling)
	}
	if c.CallbackURL != "" {
		if _, err := url.ParseRequestURI(c.CallbackURL); err != nil {
			return fmt.Errorf("callback url: %w", err)
		}
	}
	switch c.StoreBackend {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres backend requires HONEYPOT_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	return nil
}

// Helper functions for environment variable parsing.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvSlice returns a comma-separated list from an environment variable or a default value.
func GetEnvSlice(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}
