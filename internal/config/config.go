package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultAPITokenEnv is the environment variable consulted when no explicit
// API token is configured.
const DefaultAPITokenEnv = "OPENAI_API_KEY"

// Config is the top-level chatdbg configuration, corresponding to
// .chatdbg.yml plus CLI flag overrides.
type Config struct {
	URL             string         `yaml:"url" koanf:"url"`
	Model           string         `yaml:"model" koanf:"model"`
	APIToken        string         `yaml:"api_token" koanf:"api_token"`
	APITokenEnv     string         `yaml:"api_token_env" koanf:"api_token_env"`
	Temperature     float64        `yaml:"temperature" koanf:"temperature"`
	TopP            float64        `yaml:"top_p" koanf:"top_p"`
	TopK            int            `yaml:"top_k" koanf:"top_k"`
	MaxTokens       int            `yaml:"max_tokens" koanf:"max_tokens"`
	ReasoningEffort string         `yaml:"reasoning_effort" koanf:"reasoning_effort"`
	ExtraParams     map[string]any `yaml:"extra_params" koanf:"extra_params"`
	TimeoutSeconds  float64        `yaml:"timeout" koanf:"timeout"`
	InitialInput    string         `yaml:"initial_input" koanf:"initial_input"`
	TraceDB         string         `yaml:"trace_db" koanf:"trace_db"`
	Render          bool           `yaml:"render" koanf:"render"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APITokenEnv:    DefaultAPITokenEnv,
		Temperature:    0.7,
		TopP:           1.0,
		MaxTokens:      512,
		TimeoutSeconds: 60.0,
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CHATDBG_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CHATDBG_MODEL -> model, etc.
	if err := k.Load(env.Provider("CHATDBG_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CHATDBG_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// ParseExtraParams parses the --extra-params flag value. The value must be
// a JSON object; its keys are merged into every request body, overriding
// same-named built-in keys.
func ParseExtraParams(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("extra-params is not valid JSON: %w", err)
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("extra-params must be a JSON object")
	}
	return obj, nil
}

// ResolveToken returns the API token to use: the explicit token if set,
// otherwise the value of the configured environment variable. An empty
// result is allowed; the request simply omits the Authorization header.
func (c *Config) ResolveToken() string {
	if c.APIToken != "" {
		return c.APIToken
	}
	if c.APITokenEnv != "" {
		return os.Getenv(c.APITokenEnv)
	}
	return ""
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// validReasoningEfforts is the set of recognized reasoning_effort values.
var validReasoningEfforts = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Temperature < 0 {
		return fmt.Errorf("temperature must be non-negative")
	}
	if c.TopP <= 0 {
		return fmt.Errorf("top_p must be positive")
	}
	if c.TopK < 0 {
		return fmt.Errorf("top_k must be non-negative")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.ReasoningEffort != "" && !validReasoningEfforts[c.ReasoningEffort] {
		return fmt.Errorf("invalid reasoning_effort %q: must be one of low, medium, high", c.ReasoningEffort)
	}
	return nil
}
