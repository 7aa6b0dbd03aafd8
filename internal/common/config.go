package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Vision  VisionConfig
	Image   ImageConfig
	History HistoryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string
}

// VisionConfig holds vision provider configuration
type VisionConfig struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	PrimaryModel    string // "claude" | "openai"
	FallbackModel   string // "claude" | "openai" | "none"
	ClaudeModel     string
	OpenAIModel     string
	Timeout         time.Duration
}

// ImageConfig holds image validation limits
type ImageConfig struct {
	MaxSizeMB    int64
	MaxDimension int
}

// HistoryConfig holds conversion-history storage configuration
type HistoryConfig struct {
	// DSN is either a sqlite file path or a postgres:// URL.
	DSN string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8000"),
		},
		Vision: VisionConfig{
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			PrimaryModel:    getEnv("PRIMARY_MODEL", "claude"),
			FallbackModel:   getEnv("FALLBACK_MODEL", "openai"),
			ClaudeModel:     getEnv("CLAUDE_MODEL", "claude-sonnet-4-5-20250929"),
			OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4-vision-preview"),
			Timeout:         getEnvAsDuration("VISION_TIMEOUT", 60*time.Second),
		},
		Image: ImageConfig{
			MaxSizeMB:    getEnvAsInt64("MAX_IMAGE_MB", 20),
			MaxDimension: getEnvAsInt("MAX_IMAGE_DIMENSION", 2048),
		},
		History: HistoryConfig{
			DSN: getEnv("HISTORY_DB", "image-to-tex.db"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Vision.AnthropicAPIKey == "" && c.Vision.OpenAIAPIKey == "" {
		return NewAppError("CONFIG_ERROR",
			"set ANTHROPIC_API_KEY or OPENAI_API_KEY", ErrNoCredentials)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Image.MaxSizeMB <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_IMAGE_MB must be positive", ErrInvalidInput)
	}
	return nil
}
