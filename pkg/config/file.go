package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML configuration file. Every field is optional;
// zero values leave the existing setting (default or env) untouched.
type fileConfig struct {
	APIKey   string `yaml:"api_key"`
	LogLevel string `yaml:"log_level"`

	Exit struct {
		ConfidenceCeiling *float64 `yaml:"confidence_ceiling"`
		TurnCeiling       *int     `yaml:"turn_ceiling"`
	} `yaml:"exit"`

	Callback struct {
		URL       string `yaml:"url"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"callback"`

	Store struct {
		Backend     string `yaml:"backend"`
		RedisAddr   string `yaml:"redis_addr"`
		RedisDB     *int   `yaml:"redis_db"`
		PostgresDSN string `yaml:"postgres_dsn"`
		TTLSeconds  int    `yaml:"ttl_seconds"`
	} `yaml:"store"`

	LLM struct {
		Provider  string `yaml:"provider"`
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model"`
		BaseURL   string `yaml:"base_url"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"llm"`
}

// ApplyFile overlays settings from a YAML file onto c. A missing file is an
// error; a file that sets nothing is a no-op.
func (c *Config) ApplyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	if fc.APIKey != "" {
		c.APIKey = fc.APIKey
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.Exit.ConfidenceCeiling != nil {
		c.ConfidenceCeiling = *fc.Exit.ConfidenceCeiling
	}
	if fc.Exit.TurnCeiling != nil {
		c.TurnCeiling = *fc.Exit.TurnCeiling
	}
	if fc.Callback.URL != "" {
		c.CallbackURL = fc.Callback.URL
	}
	if fc.Callback.TimeoutMs > 0 {
		c.CallbackTimeout = time.Duration(fc.Callback.TimeoutMs) * time.Millisecond
	}
	if fc.Store.Backend != "" {
		c.StoreBackend = StoreBackend(fc.Store.Backend)
	}
	if fc.Store.RedisAddr != "" {
		c.RedisAddr = fc.Store.RedisAddr
	}
	if fc.Store.RedisDB != nil {
		c.RedisDB = *fc.Store.RedisDB
	}
	if fc.Store.PostgresDSN != "" {
		c.PostgresDSN = fc.Store.PostgresDSN
	}
	if fc.Store.TTLSeconds > 0 {
		c.SessionTTL = time.Duration(fc.Store.TTLSeconds) * time.Second
	}
	if fc.LLM.Provider != "" {
		c.LLMProvider = LLMProvider(fc.LLM.Provider)
	}
	if fc.LLM.APIKey != "" {
		c.LLMAPIKey = fc.LLM.APIKey
	}
	if fc.LLM.Model != "" {
		c.LLMModel = fc.LLM.Model
	}
	if fc.LLM.BaseURL != "" {
		c.LLMBaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.TimeoutMs > 0 {
		c.LLMTimeout = time.Duration(fc.LLM.TimeoutMs) * time.Millisecond
	}

	return nil
}
