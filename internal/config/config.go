package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Gemini API key precedence:
// 1. Vault (if configured)
// 2. Config file
// 3. Environment (HIREDLY_AI_APIKEY, then legacy GEMINI_API_KEY)
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Prompts       PromptConfig        `mapstructure:"prompts"`
	Workflow      WorkflowConfig      `mapstructure:"workflow"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	History       HistoryConfig       `mapstructure:"history"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig configures the text oracle
type AIConfig struct {
	Provider          string               `mapstructure:"provider"`
	Model             string               `mapstructure:"model"`
	Timeout           time.Duration        `mapstructure:"timeout"`
	APIKey            string               `mapstructure:"apiKey"`
	Temperature       float32              `mapstructure:"temperature"`
	UseSystemPrompts  bool                 `mapstructure:"useSystemPrompts"`
	ModelCheckTimeout time.Duration        `mapstructure:"modelCheckTimeout"`
	CircuitBreaker    CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// PromptConfig holds prompt overrides. Task templates are keyed by task name
// (e.g. "score_ats") and use text/template syntax.
type PromptConfig struct {
	System     string                `mapstructure:"system"`
	SystemFile string                `mapstructure:"systemFile"`
	Tasks      map[string]TaskPrompt `mapstructure:"tasks"`

	loaded loadedPrompts
}

// TaskPrompt overrides the template of a single task
type TaskPrompt struct {
	Template string `mapstructure:"template"`
	File     string `mapstructure:"file"`
}

// WorkflowConfig tunes the analysis workflow
type WorkflowConfig struct {
	MaxRetries   int           `mapstructure:"maxRetries"`   // Retries per stage oracle call, 0 disables
	StageTimeout time.Duration `mapstructure:"stageTimeout"` // Per-stage deadline, 0 disables
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string          `mapstructure:"host"`
	Port         string          `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration   `mapstructure:"idleTimeout"`
	APIKeys      []string        `mapstructure:"apiKeys"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	BurstCapacity  int  `mapstructure:"burstCapacity"`
	ByIP           bool `mapstructure:"byIP"`
	ByAPIKey       bool `mapstructure:"byAPIKey"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// HistoryConfig configures the analysis history store
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"dbPath"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig toggles the application metric groups
type CustomMetricsConfig struct {
	OracleCalls    bool `mapstructure:"oracleCalls"`
	TokenUsage     bool `mapstructure:"tokenUsage"`
	Workflow       bool `mapstructure:"workflow"`
	Infrastructure bool `mapstructure:"infrastructure"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from defaults, an optional config file and
// HIREDLY_* environment variables.
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New(), true)
}

func loadConfig(v *viper.Viper, searchPaths bool) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("HIREDLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if searchPaths {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/hiredly/")
		v.AddConfigPath("$HOME/.hiredly")
		v.AddConfigPath(".")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileUsed = v.ConfigFileUsed()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load prompt files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid. A missing API key is not an
// error here: commands that need the oracle report it when they build one.
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	cb := c.AI.CircuitBreaker
	if cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
		return fmt.Errorf("circuit breaker failure threshold must be in (0, 1], got %v", cb.FailureThreshold)
	}

	if c.Workflow.MaxRetries < 0 {
		return fmt.Errorf("workflow maxRetries must not be negative")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history dbPath is required when history is enabled")
	}

	return nil
}
