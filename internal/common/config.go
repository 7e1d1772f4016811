package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Store  StoreConfig
	LLM    LLMConfig
	Parser ParserConfig
	Retry  RetryConfig
}

// StoreConfig holds tabular-store configuration
type StoreConfig struct {
	WorkbookPath string
	SheetName    string
	CachePath    string
	MinPrice     float64
	MaxPrice     float64
}

// LLMConfig holds extraction-service configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// ParserConfig holds the escalation thresholds and the product/notes split
// heuristic. MaxProductTokens is the "first N tokens are the product" guess in
// price-first lines; it is configuration, not a law.
type ParserConfig struct {
	MaxLines         int
	MaxMessageLength int
	MaxNumericTokens int
	MaxProductTokens int
}

// RetryConfig holds the bounded-retry policy for external calls
type RetryConfig struct {
	Attempts int
	Backoff  time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			WorkbookPath: getEnv("WORKBOOK_PATH", "purchases.xlsx"),
			SheetName:    getEnv("WORKBOOK_SHEET", "Sheet1"),
			CachePath:    getEnv("CACHE_PATH", "purchases-cache.db"),
			MinPrice:     getEnvAsFloat64("MIN_PRICE", 0.01),
			MaxPrice:     getEnvAsFloat64("MAX_PRICE", 1000000),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("LLM_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		Parser: ParserConfig{
			MaxLines:         getEnvAsInt("PARSER_MAX_LINES", 3),
			MaxMessageLength: getEnvAsInt("PARSER_MAX_LENGTH", 100),
			MaxNumericTokens: getEnvAsInt("PARSER_MAX_NUMERIC_TOKENS", 2),
			MaxProductTokens: getEnvAsInt("PARSER_MAX_PRODUCT_TOKENS", 3),
		},
		Retry: RetryConfig{
			Attempts: getEnvAsInt("RETRY_ATTEMPTS", 3),
			Backoff:  getEnvAsDuration("RETRY_BACKOFF", 2*time.Second),
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Store.WorkbookPath == "" {
		return NewAppError("CONFIG_ERROR", "WORKBOOK_PATH is required", ErrValidation)
	}
	if c.Store.MinPrice <= 0 || c.Store.MaxPrice <= c.Store.MinPrice {
		return NewAppError("CONFIG_ERROR", "price bounds are inverted", ErrValidation)
	}
	if c.Retry.Attempts < 1 {
		return NewAppError("CONFIG_ERROR", "RETRY_ATTEMPTS must be at least 1", ErrValidation)
	}
	return nil
}
