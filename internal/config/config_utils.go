package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks applies environment variable fallbacks
func (c *Config) applyFallbacks() {
	c.applyGeminiKeyFallback()
	c.applyServerAPIKeyFallbacks()
	c.applyObservabilityDefaults()
}

// applyGeminiKeyFallback honours the GEMINI_API_KEY variable used by the Gemini SDK docs
func (c *Config) applyGeminiKeyFallback() {
	if c.AI.APIKey == "" {
		c.AI.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
}

func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("HIREDLY_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitAndTrim(apiKeysEnv)
		}
	}
}

func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: none (defaults and environment)")
	}

	envVars := []string{
		"HIREDLY_AI_APIKEY",
		"HIREDLY_AI_MODEL",
		"HIREDLY_SERVER_PORT",
		"HIREDLY_APP_LOGLEVEL",
		"HIREDLY_HISTORY_ENABLED",
		"HIREDLY_VAULT_ENABLED",
		"GEMINI_API_KEY",
	}
	for _, envVar := range envVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(envVar), "key") {
			value = "***MASKED***"
		}
		log.Printf("[CONFIG]   %s=%s", envVar, value)
	}

	apiKeyState := "***NOT SET***"
	if c.AI.APIKey != "" {
		apiKeyState = "***CONFIGURED***"
	}
	log.Printf("[CONFIG] Oracle: provider=%s model=%s apiKey=%s", c.AI.Provider, c.AI.Model, apiKeyState)
	log.Printf("[CONFIG] Server: %s:%s, history=%t, vault=%t", c.Server.Host, c.Server.Port, c.History.Enabled, c.Vault.Enabled)
}
