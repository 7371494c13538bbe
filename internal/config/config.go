package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis, optional. Without it coach turns run inline and events are not pushed.
	RedisURL string

	// JWT issued by the hosted auth provider
	JWTSecret string

	// LLM
	LLMProvider      string // "openai" | "gemini"
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	GeminiAPIKey     string
	GeminiModel      string
	LLMTemperature   float64
	LLMMaxConcurrent int

	// Workers
	WorkerCount int

	// HTTP
	CORSOrigin      string
	RateLimitPerMin int

	// Timezone used for feedback dates in prompts
	Timezone string

	// Product images
	AssetBaseURL      string
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		DatabaseURL:       mustGetEnv("DATABASE_URL"),
		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		JWTSecret:         mustGetEnv("JWT_SECRET"),
		LLMProvider:       getEnvOrDefault("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:      getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", "gpt-4.1-mini"),
		GeminiAPIKey:      getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTemperature:    getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.7),
		LLMMaxConcurrent:  getEnvAsIntOrDefault("LLM_MAX_CONCURRENT", 5),
		WorkerCount:       getEnvAsIntOrDefault("WORKER_COUNT", 4),
		CORSOrigin:        getEnvOrDefault("CORS_ORIGIN", "http://localhost:5173"),
		RateLimitPerMin:   getEnvAsIntOrDefault("RATE_LIMIT_PER_MIN", 20),
		Timezone:          getEnvOrDefault("TIMEZONE", "Europe/Paris"),
		AssetBaseURL:      getEnvOrDefault("ASSET_BASE_URL", ""),
		S3Endpoint:        getEnvOrDefault("S3_ENDPOINT", ""),
		S3Region:          getEnvOrDefault("S3_REGION", "us-east-1"),
		S3Bucket:          getEnvOrDefault("S3_BUCKET", ""),
		S3AccessKeyID:     getEnvOrDefault("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnvOrDefault("S3_SECRET_ACCESS_KEY", ""),
	}

	return cfg
}

// LLMAPIKey returns the key of the selected provider, empty when unset.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
