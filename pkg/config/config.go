// Package config provides application settings loaded from environment
// variables. A .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Weather WeatherConfig
	Stream  StreamConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	CORSOrigins     string
	ShutdownTimeout time.Duration
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	Provider    string // "openai", "anthropic" or "gemini"
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
}

// WeatherConfig holds weather lookup configuration
type WeatherConfig struct {
	APIKey      string
	BaseURL     string
	DefaultUnit string
	Timeout     time.Duration
}

// StreamConfig holds streaming protocol configuration
type StreamConfig struct {
	// MaxPendingSpan caps how many bytes may accumulate between a call-open
	// marker and its close marker before the turn is failed
	MaxPendingSpan int
}

// providerInfo holds per-provider environment lookups and defaults
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.0-flash", "GEMINI_API_KEY"},
}

// Load builds a Config from the environment
func Load() (*Config, error) {
	// Best effort; a missing .env file is not an error
	_ = godotenv.Load()

	provider := getEnv("LLM_PROVIDER", "openai")
	info, ok := providers[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			Provider:    provider,
			Model:       getEnv(info.modelEnv, info.defaultModel),
			APIKey:      os.Getenv(info.apiKeyEnv),
			Temperature: getFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:   getInt("LLM_MAX_TOKENS", 1024),
		},
		Weather: WeatherConfig{
			APIKey:      os.Getenv("WEATHER_API_KEY"),
			BaseURL:     getEnv("WEATHER_API_URL", "https://api.openweathermap.org/data/2.5"),
			DefaultUnit: getEnv("WEATHER_DEFAULT_UNIT", "celsius"),
			Timeout:     getDuration("WEATHER_TIMEOUT", 10*time.Second),
		},
		Stream: StreamConfig{
			MaxPendingSpan: getInt("STREAM_MAX_PENDING_SPAN", 16*1024),
		},
	}

	if cfg.Weather.DefaultUnit != "celsius" && cfg.Weather.DefaultUnit != "fahrenheit" {
		return nil, fmt.Errorf("WEATHER_DEFAULT_UNIT must be celsius or fahrenheit, got %q", cfg.Weather.DefaultUnit)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
