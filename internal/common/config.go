package common

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	DocIntel DocIntelConfig
	LLM      LLMConfig
	Paths    PathsConfig
}

// DatabaseConfig holds database-related configuration. A postgres:// URL
// selects the pgx driver; anything else is treated as a SQLite DSN.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds review-API server configuration.
type ServerConfig struct {
	Addr string
}

// DocIntelConfig holds Azure Document Intelligence settings.
type DocIntelConfig struct {
	Endpoint   string
	Key        string
	APIVersion string
	ModelID    string
	Timeout    time.Duration
}

// LLMConfig holds Azure OpenAI settings.
type LLMConfig struct {
	Endpoint    string
	Key         string
	APIVersion  string
	Deployment  string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	InputDir       string
	OutputDir      string
	BodyModelsFile string
}

// LoadConfig loads configuration from a .env file (when present) and the
// environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config.dotenv_load_failed", "error", err)
	}

	return &Config{
		Database: DatabaseConfig{
			URL:             getEnv("DB_URL", "file:invoices.db"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		DocIntel: DocIntelConfig{
			Endpoint:   getEnv("AZURE_DOC_INTELLIGENCE_ENDPOINT", ""),
			Key:        getEnv("AZURE_DOC_INTELLIGENCE_KEY", ""),
			APIVersion: getEnv("AZURE_DOC_INTELLIGENCE_API_VERSION", "2024-11-30"),
			ModelID:    getEnv("AZURE_DOC_INTELLIGENCE_MODEL", "prebuilt-invoice"),
			Timeout:    getEnvAsDuration("AZURE_DOC_INTELLIGENCE_TIMEOUT", 120*time.Second),
		},
		LLM: LLMConfig{
			Endpoint:    getEnv("AZURE_OPENAI_ENDPOINT", ""),
			Key:         getEnv("AZURE_OPENAI_KEY", ""),
			APIVersion:  getEnv("AZURE_OPENAI_API_VERSION", "2024-12-01-preview"),
			Deployment:  getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-4.1"),
			Temperature: getEnvAsFloat32("AZURE_OPENAI_TEMPERATURE", 1.0),
			MaxTokens:   getEnvAsInt("AZURE_OPENAI_MAX_TOKENS", 5000),
			Timeout:     getEnvAsDuration("AZURE_OPENAI_TIMEOUT", 90*time.Second),
		},
		Paths: PathsConfig{
			InputDir:       getEnv("INVOICE_INPUT_DIR", "./invoices"),
			OutputDir:      getEnv("INVOICE_OUTPUT_DIR", "./processed_output"),
			BodyModelsFile: getEnv("BODY_MODELS_FILE", "body_model.txt"),
		},
	}
}

// Validate checks that the configuration is complete enough to call the
// external services.
func (c *Config) Validate() error {
	if c.DocIntel.Endpoint == "" || c.DocIntel.Key == "" {
		return NewAppError("CONFIG_ERROR", "AZURE_DOC_INTELLIGENCE_ENDPOINT and AZURE_DOC_INTELLIGENCE_KEY are required", ErrInvalidInput)
	}
	if c.LLM.Endpoint == "" || c.LLM.Key == "" {
		return NewAppError("CONFIG_ERROR", "AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_KEY are required", ErrInvalidInput)
	}
	return nil
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
