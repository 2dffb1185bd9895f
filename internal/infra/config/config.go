// Package config provides application-wide configuration (Task 1.2).
// Environment variables carry secrets and endpoints (safe defaults so the
// binary runs locally without setup); an optional zeeky.yaml file carries
// the persona catalog, the provider priority order, and the generation
// denylist.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the Zeeky API server.
type Config struct {
	// HTTP
	Host string // ZEEKY_HOST — default "0.0.0.0"
	Port int    // ZEEKY_PORT — default 8080

	// Providers. A provider with no credential/endpoint configured is
	// skipped at registry build time without counting as a failure.
	OpenAIAPIKey    string // OPENAI_API_KEY
	OpenAIBaseURL   string // OPENAI_BASE_URL — default api.openai.com (set for compatible gateways)
	OpenAIModel     string // OPENAI_MODEL — default "gpt-4o-mini"
	AnthropicAPIKey string // ANTHROPIC_API_KEY
	AnthropicModel  string // ANTHROPIC_MODEL — default "claude-3-5-haiku-latest"
	OllamaBaseURL   string // OLLAMA_BASE_URL — empty disables the local fallback
	OllamaModel     string // OLLAMA_MODEL — default "llama3.2:3b"
	DevProvider     bool   // ZEEKY_DEV_PROVIDER — register the offline lorem provider last

	// Storage
	UsageDBPath string // ZEEKY_USAGE_DB — default "zeeky-usage.db"

	// File-configured catalog (yaml), empty until LoadFile is applied.
	ProviderPriority []string          // priority order; default openai → anthropic → ollama → lorem
	Personas         map[string]string // persona name → system prompt
	Denylist         []string          // generation prompt keyword denylist
}

const (
	envHost            = "ZEEKY_HOST"
	envPort            = "ZEEKY_PORT"
	envOpenAIAPIKey    = "OPENAI_API_KEY"
	envOpenAIBaseURL   = "OPENAI_BASE_URL"
	envOpenAIModel     = "OPENAI_MODEL"
	envAnthropicAPIKey = "ANTHROPIC_API_KEY"
	envAnthropicModel  = "ANTHROPIC_MODEL"
	envOllamaBaseURL   = "OLLAMA_BASE_URL"
	envOllamaModel     = "OLLAMA_MODEL"
	envDevProvider     = "ZEEKY_DEV_PROVIDER"
	envUsageDBPath     = "ZEEKY_USAGE_DB"
)

// DefaultProviderPriority is the fallback chain order when zeeky.yaml does
// not override it.
func DefaultProviderPriority() []string {
	return []string{"openai", "anthropic", "ollama", "lorem"}
}

// Load reads configuration from environment variables, applying defaults
// for missing values.
func Load() Config {
	return Config{
		Host:             envOr(envHost, "0.0.0.0"),
		Port:             envIntOr(envPort, 8080),
		OpenAIAPIKey:     os.Getenv(envOpenAIAPIKey),
		OpenAIBaseURL:    os.Getenv(envOpenAIBaseURL),
		OpenAIModel:      envOr(envOpenAIModel, "gpt-4o-mini"),
		AnthropicAPIKey:  os.Getenv(envAnthropicAPIKey),
		AnthropicModel:   envOr(envAnthropicModel, "claude-3-5-haiku-latest"),
		OllamaBaseURL:    os.Getenv(envOllamaBaseURL),
		OllamaModel:      envOr(envOllamaModel, "llama3.2:3b"),
		DevProvider:      os.Getenv(envDevProvider) != "",
		UsageDBPath:      envOr(envUsageDBPath, "zeeky-usage.db"),
		ProviderPriority: DefaultProviderPriority(),
	}
}

// fileConfig is the zeeky.yaml shape.
type fileConfig struct {
	Providers []string          `yaml:"providers"`
	Personas  map[string]string `yaml:"personas"`
	Denylist  []string          `yaml:"denylist"`
}

// ApplyFile overlays zeeky.yaml values onto cfg. A missing file is not an
// error (the built-in catalog applies); a malformed file is.
func ApplyFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %q: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if len(fc.Providers) > 0 {
		cfg.ProviderPriority = fc.Providers
	}
	if len(fc.Personas) > 0 {
		cfg.Personas = fc.Personas
	}
	if len(fc.Denylist) > 0 {
		cfg.Denylist = fc.Denylist
	}
	return cfg, nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr parses an integer env var, returning fallback when unset or invalid.
func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
