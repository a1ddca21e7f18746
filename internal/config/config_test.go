package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Mode:                ModeLive,
		ServerPort:          "8080",
		MaxWorkers:          2,
		GitHubToken:         "ghp_test",
		LLMProvider:         "ollama",
		OllamaHost:          "http://localhost:11434",
		GeneratorModelName:  "gemma3:latest",
		EmbedderModelName:   "nomic-embed-text",
		IndexBackend:        IndexBackendMemory,
		IndexTopK:           3,
		IndexMinScore:       0.7,
		QueryMaxLength:      1000,
		RetryMaxAttempts:    3,
		RetryInitialDelay:   time.Second,
		RetryAttemptTimeout: 30 * time.Second,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid live config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "stub mode needs no credentials",
			mutate: func(c *Config) {
				c.Mode = ModeStub
				c.GitHubToken = ""
			},
			wantErr: false,
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Mode = "dry-run" },
			wantErr: true,
		},
		{
			name: "live mode without any github credential",
			mutate: func(c *Config) {
				c.GitHubToken = ""
				c.GitHubAppID = 0
			},
			wantErr: true,
		},
		{
			name: "app auth without private key path",
			mutate: func(c *Config) {
				c.GitHubToken = ""
				c.GitHubAppID = 1234
				c.GitHubPrivateKeyPath = ""
			},
			wantErr: true,
		},
		{
			name: "postgres backend without database url",
			mutate: func(c *Config) {
				c.IndexBackend = IndexBackendPostgres
				c.DatabaseURL = ""
			},
			wantErr: true,
		},
		{
			name: "postgres backend with database url",
			mutate: func(c *Config) {
				c.IndexBackend = IndexBackendPostgres
				c.DatabaseURL = "postgres://localhost:5432/reviewpilot?sslmode=disable"
			},
			wantErr: false,
		},
		{
			name:    "unknown index backend",
			mutate:  func(c *Config) { c.IndexBackend = "qdrant" },
			wantErr: true,
		},
		{
			name: "gemini provider without api key",
			mutate: func(c *Config) {
				c.LLMProvider = "gemini"
				c.GeminiAPIKey = ""
			},
			wantErr: true,
		},
		{
			name:    "min score above one",
			mutate:  func(c *Config) { c.IndexMinScore = 1.5 },
			wantErr: true,
		},
		{
			name:    "non-positive top k",
			mutate:  func(c *Config) { c.IndexTopK = 0 },
			wantErr: true,
		},
		{
			name:    "non-positive retry attempts",
			mutate:  func(c *Config) { c.RetryMaxAttempts = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseReviewConfig(t *testing.T) {
	data := []byte(`
guidelines:
  - "Prefer table-driven tests."
  - "Error strings start lowercase."
ignore_paths:
  - "vendor/"
  - "*.pb.go"
  - "docs/generated/*"
`)

	cfg, err := ParseReviewConfig(data)
	if err != nil {
		t.Fatalf("ParseReviewConfig() error = %v", err)
	}
	if len(cfg.Guidelines) != 2 {
		t.Fatalf("expected 2 guidelines, got %d", len(cfg.Guidelines))
	}

	block := cfg.GuidelineBlock()
	if block == "" {
		t.Fatal("expected a rendered guideline block")
	}

	ignored := []string{
		"vendor/github.com/lib/pq/conn.go",
		"api/service.pb.go",
		"docs/generated/index.html",
	}
	for _, p := range ignored {
		if !cfg.Ignored(p) {
			t.Errorf("expected %q to be ignored", p)
		}
	}

	kept := []string{
		"internal/server/router.go",
		"docs/architecture.md",
	}
	for _, p := range kept {
		if cfg.Ignored(p) {
			t.Errorf("expected %q to be kept", p)
		}
	}
}

func TestParseReviewConfigRejectsGarbage(t *testing.T) {
	if _, err := ParseReviewConfig([]byte("guidelines: {broken")); err == nil {
		t.Fatal("expected a parse error")
	}
}
