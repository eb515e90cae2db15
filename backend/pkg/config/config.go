package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

// DevSecretKey is the session signing key used when SECRET_KEY is not set.
// It is rejected in production.
const DevSecretKey = "dev-secret-key-change-in-production"

// Config holds all application configuration
type Config struct {
	// App
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`

	// HTTP server
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Sessions
	SecretKey  string        `yaml:"secret_key"`
	SessionTTL time.Duration `yaml:"session_ttl"`

	// CORSAllowedOrigins may send credentialed requests; others get "*"
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Graph
	SeedSampleData bool `yaml:"seed_sample_data"`

	// SQLLegacyFKReferences points junction foreign keys at node-id tables
	SQLLegacyFKReferences bool `yaml:"sql_legacy_fk_references"`

	// OpenAI
	EnableOpenAINLP bool          `yaml:"enable_openai_nlp"`
	OpenAIAPIKey    string        `yaml:"openai_api_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	OpenAIModel     string        `yaml:"openai_model"`
	LLMTimeout      time.Duration `yaml:"llm_timeout"`

	// Observability
	EnableMetrics bool `yaml:"enable_metrics"`

	// Neo4j export, disabled when the URI is empty
	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Host:            "127.0.0.1",
		Port:            "5000",
		Env:             "development",
		LogLevel:        "",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		SecretKey:       DevSecretKey,
		SessionTTL:      12 * time.Hour,
		SeedSampleData:  true,
		EnableOpenAINLP: true,
		OpenAIModel:     "gpt-3.5-turbo",
		LLMTimeout:      30 * time.Second,
		EnableMetrics:   true,
		Neo4jUser:       "neo4j",
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and then
// from environment variables, which take precedence.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Host = getEnv("HOST", c.Host)
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.ReadTimeout = getEnvDuration("READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = getEnvDuration("WRITE_TIMEOUT", c.WriteTimeout)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.SecretKey = getEnv("SECRET_KEY", c.SecretKey)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)
	c.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.SeedSampleData = getEnvBool("SEED_SAMPLE_DATA", c.SeedSampleData)
	c.SQLLegacyFKReferences = getEnvBool("SQL_LEGACY_FK_REFERENCES", c.SQLLegacyFKReferences)
	c.EnableOpenAINLP = getEnvBool("ENABLE_OPENAI_NLP", c.EnableOpenAINLP)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)
	c.LLMTimeout = getEnvDuration("LLM_TIMEOUT", c.LLMTimeout)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.Neo4jURI = getEnv("NEO4J_URI", c.Neo4jURI)
	c.Neo4jUser = getEnv("NEO4J_USER", c.Neo4jUser)
	c.Neo4jPassword = getEnv("NEO4J_PASSWORD", c.Neo4jPassword)
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Port == "" {
		return apperrors.NewConfigValidationFailed("PORT", "is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return apperrors.NewConfigValidationFailed("PORT", "must be numeric")
	}
	if c.SecretKey == "" {
		return apperrors.NewConfigValidationFailed("SECRET_KEY", "is required")
	}
	if c.IsProduction() && c.SecretKey == DevSecretKey {
		return apperrors.NewConfigValidationFailed("SECRET_KEY", "must be changed in production")
	}
	if c.SessionTTL <= 0 {
		return apperrors.NewConfigValidationFailed("SESSION_TTL", "must be positive")
	}
	if c.LLMTimeout <= 0 {
		return apperrors.NewConfigValidationFailed("LLM_TIMEOUT", "must be positive")
	}
	if c.EnableOpenAINLP && c.OpenAIModel == "" {
		return apperrors.NewConfigValidationFailed("OPENAI_MODEL", "is required when ENABLE_OPENAI_NLP is set")
	}
	if c.Neo4jURI != "" && c.Neo4jUser == "" {
		return apperrors.NewConfigValidationFailed("NEO4J_USER", "is required when NEO4J_URI is set")
	}
	// OpenAI API key is optional: the query endpoint is disabled without it
	return nil
}

// OpenAIEnabled reports whether the LLM query feature can be served
func (c *Config) OpenAIEnabled() bool {
	return c.EnableOpenAINLP && c.OpenAIAPIKey != ""
}

// Neo4jEnabled reports whether the Neo4j export target is configured
func (c *Config) Neo4jEnabled() bool {
	return c.Neo4jURI != ""
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Bare numbers are seconds, as in gunicorn-style timeouts
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
