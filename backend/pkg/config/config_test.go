package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5000", cfg.Addr())
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.SeedSampleData)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.False(t, cfg.Neo4jEnabled())
	assert.False(t, cfg.SQLLegacyFKReferences)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("ENABLE_OPENAI_NLP", "TRUE")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_TIMEOUT", "5")
	t.Setenv("SEED_SAMPLE_DATA", "false")
	t.Setenv("SQL_LEGACY_FK_REFERENCES", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, ,https://editor.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.True(t, cfg.OpenAIEnabled())
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.False(t, cfg.SeedSampleData)
	assert.True(t, cfg.SQLLegacyFKReferences)
	assert.Equal(t, []string{"http://localhost:3000", "https://editor.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: \"9000\"\nenv: staging\nsession_ttl: 1h\nneo4j_uri: bolt://graph:7687\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ENV", "")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.Neo4jEnabled())
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prot: 1\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"missing port", func(c *Config) { c.Port = "" }, "PORT"},
		{"non numeric port", func(c *Config) { c.Port = "http" }, "PORT"},
		{"dev secret in production", func(c *Config) { c.Env = "production" }, "SECRET_KEY"},
		{"zero llm timeout", func(c *Config) { c.LLMTimeout = 0 }, "LLM_TIMEOUT"},
		{"neo4j without user", func(c *Config) { c.Neo4jURI = "bolt://x"; c.Neo4jUser = "" }, "NEO4J_USER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var verr *apperrors.ErrConfigValidationFailed
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConfig))
		})
	}

	assert.NoError(t, Default().Validate())
}
