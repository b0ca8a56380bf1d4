package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required
	AnthropicAPIKey string
	OpenAIAPIKey    string

	// Optional remote calendar sync; missing files disable it
	GoogleCredentialsFile string
	GoogleTokenFile       string

	// Optional with defaults
	DBPath            string
	HTTPPort          int
	QdrantHost        string
	QdrantPort        int
	QdrantCollection  string
	OpenAIBaseURL     string
	ClaudeModel       string
	ClaudeTemperature float64
	LogLevel          string
	DevMode           bool
}

func LoadFromEnv() *Config {
	cfg := &Config{
		// Required
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),

		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),
		GoogleTokenFile:       getEnvOrDefault("GOOGLE_TOKEN_FILE", "./token.json"),

		// Optional with defaults
		DBPath:            getEnvOrDefault("DONNA_DB_PATH", "./donna.db"),
		HTTPPort:          getEnvAsIntOrDefault("DONNA_HTTP_PORT", 8080),
		QdrantHost:        getEnvOrDefault("DONNA_QDRANT_HOST", "localhost"),
		QdrantPort:        getEnvAsIntOrDefault("DONNA_QDRANT_PORT", 6334),
		QdrantCollection:  getEnvOrDefault("DONNA_QDRANT_COLLECTION", "events"),
		OpenAIBaseURL:     os.Getenv("DONNA_OPENAI_BASE_URL"),
		ClaudeModel:       getEnvOrDefault("DONNA_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		ClaudeTemperature: getEnvAsFloatOrDefault("DONNA_CLAUDE_TEMPERATURE", 0.1),
		LogLevel:          getEnvOrDefault("DONNA_LOG_LEVEL", "info"),
		DevMode:           getEnvAsBoolOrDefault("DONNA_DEV_MODE", false),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
