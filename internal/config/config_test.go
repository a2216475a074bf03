package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("HTTP_TIMEOUT_SEC", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 120*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.APIKey)
}

func TestLoad_CredentialFallbackOrder(t *testing.T) {
	t.Setenv("AI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "AIzaGeminiKey")
	assert.Equal(t, "AIzaGeminiKey", Load().APIKey)

	t.Setenv("OPENAI_API_KEY", "sk-openai")
	assert.Equal(t, "sk-openai", Load().APIKey)

	t.Setenv("AI_API_KEY", " sk-explicit ")
	assert.Equal(t, "sk-explicit", Load().APIKey)
}

func TestLoad_ParsesListsAndDurations(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("PIPELINE_TIMEOUT_SEC", "42")
	t.Setenv("TRANSLATION_CACHE_TTL_SEC", "not-a-number")

	cfg := Load()

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 42*time.Second, cfg.PipelineTimeout)
	assert.Equal(t, 600*time.Second, cfg.TranslationCacheTTL)
}

func TestValidate(t *testing.T) {
	valid := Config{APIKey: "sk-x", DBDriver: "sqlite", SQLitePath: "x.db", UploadDir: "uploads"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing credential", func(c *Config) { c.APIKey = "  " }, "no AI credential"},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, "unsupported DB_DRIVER"},
		{"postgres without url", func(c *Config) { c.DBDriver = "postgres" }, "DATABASE_URL"},
		{"empty upload dir", func(c *Config) { c.UploadDir = "" }, "UPLOAD_DIR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
