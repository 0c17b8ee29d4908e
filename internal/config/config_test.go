package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable ApplyEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DATABASE_URL", "REDIS_URL", "GEMINI_API_KEY", "QUESTION_BANK_PATH", "NEXWORK_MEMORY_STORE",
		"SESSION_IDLE_TIMEOUT", "SESSION_SWEEP_INTERVAL", "CORS_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9000,
		"database_url": "postgres://localhost/nexwork",
		"session_idle_timeout": "45m",
		"cors_origins": ["https://app.nexwork.dev"],
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres://localhost/nexwork", cfg.DatabaseURL)
	assert.Equal(t, 45*time.Minute, cfg.SessionIdleTimeout.Std())
	assert.Equal(t, []string{"https://app.nexwork.dev"}, cfg.CORSOrigins)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_BadDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"session_idle_timeout": "soon"}`))
	assert.Error(t, err)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("NEXWORK_MEMORY_STORE", "true")
	t.Setenv("SESSION_SWEEP_INTERVAL", "10s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg := &Config{Port: 1, DatabaseURL: "postgres://file"}
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "postgres://file", cfg.DatabaseURL, "unset variables leave file values")
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.True(t, cfg.UseMemoryStore)
	assert.Equal(t, 10*time.Second, cfg.SessionSweepInterval.Std())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"PORT":                 "eighty",
		"NEXWORK_MEMORY_STORE": "maybe",
		"SESSION_IDLE_TIMEOUT": "forever",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			cfg := &Config{}
			err := cfg.ApplyEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.DatabaseURL = "postgres://localhost/nexwork"

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "memory store needs no database", mutate: func(c *Config) { c.DatabaseURL = ""; c.UseMemoryStore = true }},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "database_url"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "port"},
		{name: "negative idle timeout", mutate: func(c *Config) { c.SessionIdleTimeout = -1 }, wantErr: "session_idle_timeout"},
		{name: "missing question bank", mutate: func(c *Config) { c.QuestionBankPath = "/nonexistent/bank.yaml" }, wantErr: "question bank"},
		{name: "bad redis scheme", mutate: func(c *Config) { c.RedisURL = "http://localhost" }, wantErr: "redis_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9000, GeminiAPIKey: "key"}
	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "key", merged.GeminiAPIKey)
	assert.Equal(t, 30*time.Minute, merged.SessionIdleTimeout.Std())
	assert.Equal(t, time.Minute, merged.SessionSweepInterval.Std())
	assert.NotEmpty(t, merged.CORSOrigins)
	// Original unchanged
	assert.Equal(t, Duration(0), cfg.SessionIdleTimeout)
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://env/nexwork")
	path := writeConfig(t, `{"database_url": "postgres://file/nexwork", "port": 9100}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/nexwork", cfg.DatabaseURL)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout.Std())
}

func TestLoad_NoFileRequiresStore(t *testing.T) {
	clearEnv(t)
	_, err := Load("")
	require.Error(t, err)

	t.Setenv("NEXWORK_MEMORY_STORE", "1")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.UseMemoryStore)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	cfg, err := Load("", func(c *Config) {
		c.UseMemoryStore = true
		c.Port = 7100
	})
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Port, "overrides win over the environment")
	assert.True(t, cfg.UseMemoryStore)
}
