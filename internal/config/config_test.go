package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("TEST_REQUIRED", "value123")
	defer os.Unsetenv("TEST_REQUIRED")

	result := mustGetEnv("TEST_REQUIRED")
	if result != "value123" {
		t.Errorf("Expected 'value123', got %q", result)
	}
}

func TestGetEnvAsFloatOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal float64
		expected   float64
	}{
		{"parses float", "TEST_FLOAT_1", "0.3", 0.7, 0.3},
		{"parses integer form", "TEST_FLOAT_2", "1", 0.7, 1},
		{"uses default for empty", "TEST_FLOAT_3", "", 0.7, 0.7},
		{"uses default for garbage", "TEST_FLOAT_4", "warm", 0.7, 0.7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsFloatOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/coach")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("REDIS_URL", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.LLMProvider != "openai" || cfg.OpenAIModel == "" {
		t.Errorf("Expected openai defaults, got provider=%q model=%q", cfg.LLMProvider, cfg.OpenAIModel)
	}
	if cfg.RedisURL != "" {
		t.Errorf("Expected redis to stay optional, got %q", cfg.RedisURL)
	}
	if cfg.LLMTemperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", cfg.LLMTemperature)
	}
}

func TestLLMAPIKey(t *testing.T) {
	cfg := &Config{LLMProvider: "gemini", GeminiAPIKey: "g", OpenAIAPIKey: "o"}
	if cfg.LLMAPIKey() != "g" {
		t.Errorf("Expected gemini key, got %q", cfg.LLMAPIKey())
	}
	cfg.LLMProvider = "openai"
	if cfg.LLMAPIKey() != "o" {
		t.Errorf("Expected openai key, got %q", cfg.LLMAPIKey())
	}
}
