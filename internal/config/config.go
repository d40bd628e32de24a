// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends understood by db.Open.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"
)

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config is the full runtime configuration of the server binaries.
type Config struct {
	Port     string
	LogLevel string

	StorageBackend string
	DatabaseURL    string
	SQLitePath     string
	MongoURL       string
	DBName         string
	NotifyChannel  string

	LLMProvider   string
	OpenAIKey     string
	OpenAIBaseURL string
	ChatModel     string
	MaxTokens     int
	LLMTimeout    time.Duration

	SearchKey     string
	SearchBaseURL string
	SearchModel   string

	GCPProject  string
	GCPLocation string
	GeminiModel string

	ReportsDir      string
	ReportFontPath  string
	ReportRetention time.Duration
}

// Load reads a .env file if one is present and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults and validating the
// result.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:     get("PORT", "8000"),
		LogLevel: get("LOG_LEVEL", "info"),

		StorageBackend: strings.ToLower(get("STORAGE_BACKEND", BackendMemory)),
		DatabaseURL:    get("DATABASE_URL", ""),
		SQLitePath:     get("SQLITE_PATH", "arogya.db"),
		MongoURL:       get("MONGO_URL", ""),
		DBName:         get("DB_NAME", "arogya"),
		NotifyChannel:  get("POSTGRES_NOTIFY_CHANNEL", ""),

		LLMProvider:   strings.ToLower(get("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIKey:     get("OPENAI_API_KEY", ""),
		OpenAIBaseURL: get("OPENAI_BASE_URL", ""),
		ChatModel:     get("OPENAI_MODEL_CHAT", "gpt-4o-mini"),

		SearchKey:     get("SEARCH_API_KEY", ""),
		SearchBaseURL: get("SEARCH_BASE_URL", "https://api.perplexity.ai"),
		SearchModel:   get("SEARCH_MODEL", "sonar"),

		GCPProject:  get("GCP_PROJECT", ""),
		GCPLocation: get("GCP_LOCATION", "us-central1"),
		GeminiModel: get("GEMINI_MODEL", "gemini-2.5-flash"),

		ReportsDir:     get("REPORTS_DIR", "reports"),
		ReportFontPath: get("REPORT_FONT_PATH", ""),
	}

	var err error
	if cfg.MaxTokens, err = strconv.Atoi(get("LLM_MAX_TOKENS", "1000")); err != nil {
		return Config{}, fmt.Errorf("LLM_MAX_TOKENS: %w", err)
	}
	if cfg.LLMTimeout, err = time.ParseDuration(get("LLM_TIMEOUT", "30s")); err != nil {
		return Config{}, fmt.Errorf("LLM_TIMEOUT: %w", err)
	}
	if cfg.ReportRetention, err = time.ParseDuration(get("REPORT_RETENTION", "168h")); err != nil {
		return Config{}, fmt.Errorf("REPORT_RETENTION: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set for the postgres backend")
		}
	case BackendMongo:
		if c.MongoURL == "" {
			return errors.New("MONGO_URL must be set for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.LLMProvider {
	case ProviderOpenAI:
	case ProviderGemini:
		if c.GCPProject == "" {
			return errors.New("GCP_PROJECT must be set for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.MaxTokens <= 0 {
		return errors.New("LLM_MAX_TOKENS must be positive")
	}
	if c.LLMTimeout <= 0 {
		return errors.New("LLM_TIMEOUT must be positive")
	}
	return nil
}
