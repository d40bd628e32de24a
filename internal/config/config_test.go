package config

import (
	"testing"
	"time"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "8000" || cfg.StorageBackend != BackendMemory || cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxTokens != 1000 || cfg.LLMTimeout != 30*time.Second {
		t.Errorf("llm defaults = %d/%s", cfg.MaxTokens, cfg.LLMTimeout)
	}
	if cfg.ReportRetention != 7*24*time.Hour {
		t.Errorf("ReportRetention = %s, want 168h", cfg.ReportRetention)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"PORT":            "9090",
		"STORAGE_BACKEND": "Postgres",
		"DATABASE_URL":    "postgres://localhost/arogya",
		"LLM_TIMEOUT":     "5s",
		"LLM_MAX_TOKENS":  "300",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "9090" || cfg.StorageBackend != BackendPostgres {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.LLMTimeout != 5*time.Second || cfg.MaxTokens != 300 {
		t.Errorf("llm overrides = %d/%s", cfg.MaxTokens, cfg.LLMTimeout)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"postgres without url":   {"STORAGE_BACKEND": "postgres"},
		"mongo without url":      {"STORAGE_BACKEND": "mongo"},
		"unknown backend":        {"STORAGE_BACKEND": "redis"},
		"gemini without project": {"LLM_PROVIDER": "gemini"},
		"unknown provider":       {"LLM_PROVIDER": "llama"},
		"bad timeout":            {"LLM_TIMEOUT": "soon"},
		"bad max tokens":         {"LLM_MAX_TOKENS": "lots"},
		"zero max tokens":        {"LLM_MAX_TOKENS": "0"},
		"bad retention":          {"REPORT_RETENTION": "a week"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := FromEnv(envOf(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
