// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds everything the service needs at startup.
type Config struct {
	Port string

	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	LLMTimeout time.Duration

	KBPath           string
	SystemPromptPath string

	MaxContextTokens int
	CaseSensitive    bool
	MaxPromptTurns   int

	TranscriptDBPath string
	PersonaReload    bool

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, with a best-effort .env
// file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8000"),
		Provider:         getEnv("LLM_PROVIDER", ProviderGemini),
		Model:            os.Getenv("LLM_MODEL"),
		BaseURL:          os.Getenv("LLM_BASE_URL"),
		KBPath:           getEnv("KB_PATH", "KB.json"),
		SystemPromptPath: getEnv("SYSTEM_PROMPT_PATH", "systemPrompt.txt"),
		TranscriptDBPath: os.Getenv("TRANSCRIPT_DB_PATH"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	if cfg.Provider != ProviderOpenAI && cfg.Provider != ProviderGemini {
		return nil, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, cfg.Provider)
	}

	cfg.APIKey = os.Getenv("LLM_API_KEY")
	if cfg.APIKey == "" {
		// Provider-specific names many deployments already export.
		switch cfg.Provider {
		case ProviderGemini:
			cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		case ProviderOpenAI:
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}

	var err error
	if cfg.LLMTimeout, err = getDuration("LLM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxContextTokens, err = getInt("MAX_CONTEXT_TOKENS", 1024); err != nil {
		return nil, err
	}
	if cfg.MaxPromptTurns, err = getInt("MAX_PROMPT_TURNS", 20); err != nil {
		return nil, err
	}
	if cfg.CaseSensitive, err = getBool("KEYWORD_CASE_SENSITIVE", false); err != nil {
		return nil, err
	}
	if cfg.PersonaReload, err = getBool("PERSONA_RELOAD", false); err != nil {
		return nil, err
	}

	if cfg.MaxContextTokens <= 0 {
		return nil, fmt.Errorf("MAX_CONTEXT_TOKENS must be positive, got %d", cfg.MaxContextTokens)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 60s, got %q", key, v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %q", key, v)
	}
	return d, nil
}
