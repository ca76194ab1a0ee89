package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"

	DefaultProvider     = ProviderGroq
	DefaultModel        = "llama-3.3-70b-versatile"
	DefaultGroqBaseURL  = "https://api.groq.com/openai/v1"
	DefaultOllamaHost   = "http://localhost:11434"
	DefaultAddr         = ":8080"
	DefaultTimeout      = 2 * time.Minute
	DefaultSessionTTL   = 24 * time.Hour
	DefaultSweepEvery   = 10 * time.Minute
	DefaultSystemPrompt = "You are a helpful assistant and only respond to global real estate queries."
	DefaultTitle        = "Super Chat"
	DefaultTagline      = "Ask anything about global real estate, and I'll remember our conversation!"
)

// ErrMissingCredential is returned by Validate when the provider needs an API
// key and none was configured.
var ErrMissingCredential = errors.New("missing provider credential")

// Config is the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Chat     ChatConfig     `yaml:"chat"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP surface and session registry
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SweepEvery   time.Duration `yaml:"sweep_every"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

// ProviderConfig selects and configures the completion provider
type ProviderConfig struct {
	Name    string        `yaml:"name"`
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
	// RateLimit is the number of completion requests per second allowed
	// across all sessions. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// ChatConfig holds the conversation defaults and page copy
type ChatConfig struct {
	SystemPrompt string `yaml:"system_prompt"`
	Title        string `yaml:"title"`
	Tagline      string `yaml:"tagline"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       DefaultAddr,
			SessionTTL: DefaultSessionTTL,
			SweepEvery: DefaultSweepEvery,
		},
		Provider: ProviderConfig{
			Name:    DefaultProvider,
			BaseURL: DefaultGroqBaseURL,
			Model:   DefaultModel,
			Timeout: DefaultTimeout,
			Burst:   1,
		},
		Chat: ChatConfig{
			SystemPrompt: DefaultSystemPrompt,
			Title:        DefaultTitle,
			Tagline:      DefaultTagline,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none)
// into the process environment. Variables already set are left alone and a
// missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load builds the configuration from defaults, the optional YAML file at
// path and environment overrides, in that order. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyProviderDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("OORA_PROVIDER"); v != "" {
		c.Provider.Name = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("OORA_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if v := os.Getenv("OORA_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" && c.Provider.Name == ProviderOllama {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("OORA_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid OORA_RATE_LIMIT %q: %w", v, err)
		}
		c.Provider.RateLimit = limit
	}
	if v := os.Getenv("OORA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("OORA_SYSTEM_PROMPT"); v != "" {
		c.Chat.SystemPrompt = v
	}
	if v := os.Getenv("OORA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// applyProviderDefaults swaps the Groq base URL for the Ollama host when the
// Ollama provider was selected without an explicit URL.
func (c *Config) applyProviderDefaults() {
	if c.Provider.Name == ProviderOllama && (c.Provider.BaseURL == "" || c.Provider.BaseURL == DefaultGroqBaseURL) {
		c.Provider.BaseURL = DefaultOllamaHost
	}
	if c.Provider.Name == ProviderGroq && c.Provider.BaseURL == "" {
		c.Provider.BaseURL = DefaultGroqBaseURL
	}
}

// Validate reports the first configuration problem found. A missing Groq
// credential yields an error wrapping ErrMissingCredential.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderGroq:
		if strings.TrimSpace(c.Provider.APIKey) == "" {
			return fmt.Errorf("configuration error: GROQ_API_KEY is not set: %w", ErrMissingCredential)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("configuration error: unknown provider %q", c.Provider.Name)
	}
	if strings.TrimSpace(c.Provider.Model) == "" {
		return errors.New("configuration error: provider model is empty")
	}
	if c.Provider.Timeout <= 0 {
		return errors.New("configuration error: provider timeout must be positive")
	}
	if c.Provider.RateLimit < 0 {
		return errors.New("configuration error: provider rate_limit must not be negative")
	}
	if strings.TrimSpace(c.Chat.SystemPrompt) == "" {
		return errors.New("configuration error: chat system_prompt is empty")
	}
	if c.Server.Addr == "" {
		return errors.New("configuration error: server addr is empty")
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New("configuration error: server session_ttl must be positive")
	}
	if c.Server.SweepEvery <= 0 {
		return errors.New("configuration error: server sweep_every must be positive")
	}
	return nil
}
