package config

import (
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		shouldSet    bool
		want         int
	}{
		{
			name:         "returns environment variable as int when set with valid integer",
			key:          "TEST_INT_VAR",
			defaultValue: 100,
			envValue:     "200",
			shouldSet:    true,
			want:         200,
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_INT_VAR_MISSING",
			defaultValue: 100,
			envValue:     "",
			shouldSet:    false,
			want:         100,
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_INT_VAR_EMPTY",
			defaultValue: 100,
			envValue:     "",
			shouldSet:    true,
			want:         100,
		},
		{
			name:         "returns default when environment variable is not a valid integer",
			key:          "TEST_INT_VAR_INVALID",
			defaultValue: 100,
			envValue:     "not_a_number",
			shouldSet:    true,
			want:         100,
		},
		{
			name:         "handles negative integers",
			key:          "TEST_INT_VAR_NEGATIVE",
			defaultValue: 100,
			envValue:     "-50",
			shouldSet:    true,
			want:         -50,
		},
		{
			name:         "handles zero",
			key:          "TEST_INT_VAR_ZERO",
			defaultValue: 100,
			envValue:     "0",
			shouldSet:    true,
			want:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT_VAR", "2.5")
	t.Setenv("TEST_FLOAT_VAR_INVALID", "fast")

	if got := getEnvAsFloat("TEST_FLOAT_VAR", 1); got != 2.5 {
		t.Errorf("getEnvAsFloat() = %v, want 2.5", got)
	}

	if got := getEnvAsFloat("TEST_FLOAT_VAR_INVALID", 1); got != 1 {
		t.Errorf("getEnvAsFloat() invalid = %v, want default 1", got)
	}

	if got := getEnvAsFloat("TEST_FLOAT_VAR_MISSING", 3); got != 3 {
		t.Errorf("getEnvAsFloat() missing = %v, want default 3", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL_TRUE", "true")
	t.Setenv("TEST_BOOL_ZERO", "0")
	t.Setenv("TEST_BOOL_INVALID", "sometimes")

	if got := getEnvAsBool("TEST_BOOL_TRUE", false); !got {
		t.Errorf("getEnvAsBool(true) = %v, want true", got)
	}

	if got := getEnvAsBool("TEST_BOOL_ZERO", true); got {
		t.Errorf("getEnvAsBool(0) = %v, want false", got)
	}

	if got := getEnvAsBool("TEST_BOOL_INVALID", true); !got {
		t.Errorf("getEnvAsBool(invalid) = %v, want default true", got)
	}

	if got := getEnvAsBool("TEST_BOOL_MISSING", true); !got {
		t.Errorf("getEnvAsBool(missing) = %v, want default true", got)
	}
}

// TestLoad cannot use t.Parallel() because it uses t.Setenv (Go restriction).
func TestLoad(t *testing.T) {
	t.Run("requires OPENAI_API_KEY", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for missing OPENAI_API_KEY")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		checks := []struct {
			field string
			got   any
			want  any
		}{
			{"EmbeddingModel", cfg.EmbeddingModel, "text-embedding-3-large"},
			{"ChatModel", cfg.ChatModel, "gpt-4.1-mini"},
			{"VectorCollectionName", cfg.VectorCollectionName, "remedies"},
			{"Port", cfg.Port, "8080"},
			{"LogLevel", cfg.LogLevel, "info"},
			{"MaxRequestBodyBytes", cfg.MaxRequestBodyBytes, int64(1 << 20)},
			{"ChatRateLimit", cfg.ChatRateLimit, 5.0},
			{"ChatRateBurst", cfg.ChatRateBurst, 10},
			{"MetricsEnabled", cfg.MetricsEnabled, false},
			{"SchemaAutoMigrate", cfg.SchemaAutoMigrate, true},
			{"EmbeddingDimensions", cfg.EmbeddingDimensions, 0},
		}

		for _, c := range checks {
			if c.got != c.want {
				t.Errorf("Load() %s = %v, want %v", c.field, c.got, c.want)
			}
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
		t.Setenv("OPENAI_CHAT_MODEL", "gpt-4.1")
		t.Setenv("VECTOR_COLLECTION_NAME", "bach")
		t.Setenv("METRICS_ENABLED", "true")
		t.Setenv("OTEL_TRACES_EXPORTER", "stdout")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.OpenAIBaseURL != "http://localhost:9999/v1" {
			t.Errorf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
		}

		if cfg.ChatModel != "gpt-4.1" {
			t.Errorf("ChatModel = %q, want gpt-4.1", cfg.ChatModel)
		}

		if cfg.VectorCollectionName != "bach" {
			t.Errorf("VectorCollectionName = %q, want bach", cfg.VectorCollectionName)
		}

		if !cfg.MetricsEnabled {
			t.Error("MetricsEnabled = false, want true")
		}

		if cfg.OtelTracesExporter != "stdout" {
			t.Errorf("OtelTracesExporter = %q, want stdout", cfg.OtelTracesExporter)
		}
	})

	t.Run("rejects non-positive limits", func(t *testing.T) {
		for _, key := range []string{"MAX_REQUEST_BODY_BYTES", "CHAT_RATE_LIMIT", "CHAT_RATE_BURST"} {
			t.Run(key, func(t *testing.T) {
				t.Setenv("OPENAI_API_KEY", "sk-test")
				t.Setenv(key, "0")

				if _, err := Load(); err == nil {
					t.Errorf("Load() with %s=0 error = nil, want error", key)
				}
			})
		}
	})

	t.Run("rejects negative dimensions", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("OPENAI_EMBED_DIMENSIONS", "-1")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for negative dimensions")
		}
	})
}
