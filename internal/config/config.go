// Package config provides configuration loading and validation for the NexWork service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config represents the service configuration. It can be loaded from a JSON
// file; environment variables override file values and defaults fill the rest.
type Config struct {
	// Network
	Port        int      `json:"port,omitempty"`         // HTTP listen port
	CORSOrigins []string `json:"cors_origins,omitempty"` // Allowed browser origins

	// Storage
	DatabaseURL    string `json:"database_url,omitempty"`     // PostgreSQL connection URL
	RedisURL       string `json:"redis_url,omitempty"`        // Redis URL for status change events
	UseMemoryStore bool   `json:"use_memory_store,omitempty"` // Keep all records in process memory

	// Evaluators
	GeminiAPIKey     string `json:"gemini_api_key,omitempty"`     // Gemini API key; static evaluators when empty
	QuestionBankPath string `json:"question_bank_path,omitempty"` // YAML coding question bank; embedded bank when empty

	// Screening sessions
	SessionIdleTimeout   Duration `json:"session_idle_timeout,omitempty"`   // Idle time before a session is discarded
	SessionSweepInterval Duration `json:"session_sweep_interval,omitempty"` // How often idle sessions are swept

	Verbose bool `json:"verbose,omitempty"` // Debug logging
}

// Duration is a time.Duration that reads from JSON as a string such as "30m".
type Duration time.Duration

// UnmarshalJSON accepts duration strings and integer nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int64
		if err2 := json.Unmarshal(b, &n); err2 != nil {
			return fmt.Errorf("invalid duration %s", string(b))
		}
		*d = Duration(n)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                 8080,
		CORSOrigins:          []string{"http://localhost:3000"},
		SessionIdleTimeout:   Duration(30 * time.Minute),
		SessionSweepInterval: Duration(time.Minute),
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with whichever of PORT, DATABASE_URL, REDIS_URL,
// GEMINI_API_KEY, QUESTION_BANK_PATH, NEXWORK_MEMORY_STORE,
// SESSION_IDLE_TIMEOUT, SESSION_SWEEP_INTERVAL and CORS_ORIGINS are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("QUESTION_BANK_PATH"); v != "" {
		c.QuestionBankPath = v
	}
	if v := os.Getenv("NEXWORK_MEMORY_STORE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid NEXWORK_MEMORY_STORE: %v", err)
		}
		c.UseMemoryStore = b
	}
	if v := os.Getenv("SESSION_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %v", err)
		}
		c.SessionIdleTimeout = Duration(d)
	}
	if v := os.Getenv("SESSION_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %v", err)
		}
		c.SessionSweepInterval = Duration(d)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if !c.UseMemoryStore && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required unless 'use_memory_store' is set")
	}
	if c.SessionIdleTimeout < 0 {
		return fmt.Errorf("config error: 'session_idle_timeout' must be non-negative")
	}
	if c.SessionSweepInterval < 0 {
		return fmt.Errorf("config error: 'session_sweep_interval' must be non-negative")
	}
	if c.QuestionBankPath != "" {
		if _, err := os.Stat(c.QuestionBankPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: question bank not found: %s", c.QuestionBankPath)
		}
	}
	if c.RedisURL != "" && !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		return fmt.Errorf("config error: 'redis_url' must use redis:// or rediss://")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.QuestionBankPath == "" {
		result.QuestionBankPath = defaults.QuestionBankPath
	}
	if result.SessionIdleTimeout == 0 {
		result.SessionIdleTimeout = defaults.SessionIdleTimeout
	}
	if result.SessionSweepInterval == 0 {
		result.SessionSweepInterval = defaults.SessionSweepInterval
	}

	// Bool fields: true wins
	result.UseMemoryStore = result.UseMemoryStore || defaults.UseMemoryStore
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// Load reads the optional file at path, applies environment overrides, then
// overrides (command-line flags), then defaults, and validates the result.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}
