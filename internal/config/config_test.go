package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := loadConfig(viper.New(), false)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, 60*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.AI.CircuitBreaker.Enabled)
	assert.Equal(t, 0, cfg.Workflow.MaxRetries, "stages are not retried unless configured")
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.False(t, cfg.History.Enabled)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
ai:
  model: gemini-2.5-flash
  temperature: 0.2
prompts:
  tasks:
    score_ats:
      template: "Score {{.ResumeText}} for {{.JobDescription}}"
workflow:
  maxRetries: 2
history:
  enabled: true
  dbPath: /tmp/hiredly-test.db
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))
	t.Setenv("HIREDLY_SERVER_PORT", "9999")

	v := viper.New()
	v.SetConfigFile(path)
	cfg, err := loadConfig(v, false)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 0.0001)
	assert.Equal(t, 2, cfg.Workflow.MaxRetries)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "Score {{.ResumeText}} for {{.JobDescription}}", cfg.Prompts.TaskTemplate("score_ats"))
}

func TestGeminiKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", " legacy-key ")

	cfg, err := loadConfig(viper.New(), false)
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.AI.APIKey)
}

func TestServerAPIKeysFromEnv(t *testing.T) {
	t.Setenv("HIREDLY_SERVER_APIKEYS", "a, b ,c")

	cfg := &Config{}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AI: AIConfig{
				Timeout:        time.Second,
				CircuitBreaker: CircuitBreakerConfig{Enabled: true, FailureThreshold: 0.5},
			},
			Server: ServerConfig{Port: "8080"},
			App:    AppConfig{DefaultFormat: "json", SupportedFormats: []string{"json", "text"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.AI.Timeout = 0 }, wantErr: "timeout"},
		{name: "threshold above one", mutate: func(c *Config) { c.AI.CircuitBreaker.FailureThreshold = 1.5 }, wantErr: "failure threshold"},
		{name: "disabled breaker ignores threshold", mutate: func(c *Config) {
			c.AI.CircuitBreaker = CircuitBreakerConfig{Enabled: false}
		}},
		{name: "negative retries", mutate: func(c *Config) { c.Workflow.MaxRetries = -1 }, wantErr: "maxRetries"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "port"},
		{name: "unsupported format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, wantErr: "format"},
		{name: "history without path", mutate: func(c *Config) { c.History.Enabled = true }, wantErr: "dbPath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
