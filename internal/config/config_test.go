package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string)
	envVars := []string{
		"API_PORT", "DB_PATH", "QDRANT_URL", "VECTOR_SIZE",
		"EMBEDDING_BASE_URL", "EMBEDDING_API_KEY", "EMBEDDING_MODEL",
		"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL",
		"INBOX_PATH", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with required fields",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "corpusqa.db"))
				setEnv("VECTOR_SIZE", "1024")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.VectorSize == 1024
			},
		},
		{
			name: "missing VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "corpusqa.db"))
			},
			wantErr: true,
		},
		{
			name: "invalid VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "corpusqa.db"))
				setEnv("VECTOR_SIZE", "invalid")
			},
			wantErr: true,
		},
		{
			name: "zero VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "corpusqa.db"))
				setEnv("VECTOR_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "negative VECTOR_SIZE",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "corpusqa.db"))
				setEnv("VECTOR_SIZE", "-1")
			},
			wantErr: true,
		},
		{
			name: "default values for optional fields",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "corpusqa.db"))
				setEnv("VECTOR_SIZE", "1024")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.APIPort == "9000" &&
					cfg.QdrantURL == "http://localhost:6333" &&
					cfg.LLMBaseURL == "http://localhost:8080" &&
					cfg.EmbeddingBaseURL == "http://localhost:8081" &&
					cfg.InboxPath == "" &&
					cfg.LogLevel == slog.LevelInfo &&
					cfg.LogFormat == "text"
			},
		},
		{
			name: "custom values override defaults",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "corpusqa.db"))
				setEnv("VECTOR_SIZE", "768")
				setEnv("API_PORT", "8888")
				setEnv("LLM_MODEL", "custom-model")
				setEnv("INBOX_PATH", "/tmp/inbox")
				setEnv("LOG_LEVEL", "debug")
				setEnv("LOG_FORMAT", "json")
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.APIPort == "8888" &&
					cfg.VectorSize == 768 &&
					cfg.LLMModelName == "custom-model" &&
					cfg.InboxPath == "/tmp/inbox" &&
					cfg.LogLevel == slog.LevelDebug &&
					cfg.LogFormat == "json"
			},
		},
		{
			name: "invalid LOG_LEVEL",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "corpusqa.db"))
				setEnv("VECTOR_SIZE", "1024")
				setEnv("LOG_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_FORMAT",
			setupEnv: func(t *testing.T) {
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "corpusqa.db"))
				setEnv("VECTOR_SIZE", "1024")
				setEnv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envVars {
				unsetEnv(key)
			}
			tt.setupEnv(t)

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("Load() config check failed: %+v", cfg)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	setEnv("CONFIG_TEST_KEY", "value")
	defer unsetEnv("CONFIG_TEST_KEY")

	if got := getEnv("CONFIG_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("getEnv() = %q, want value", got)
	}
	if got := getEnv("CONFIG_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv() = %q, want fallback", got)
	}
}
