package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Adapter modes. Stub binds fixture-backed adapters and an in-memory index;
// live binds the real APIs. The choice is made once at startup.
const (
	ModeLive = "live"
	ModeStub = "stub"
)

// Index backends.
const (
	IndexBackendPostgres = "postgres"
	IndexBackendMemory   = "memory"
)

// Config holds the application's configuration values.
type Config struct {
	Mode       string
	ServerPort string
	LogLevel   slog.Level
	LogFormat  string
	MaxWorkers int

	// Code host.
	GitHubToken          string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKeyPath string
	GitHubWebhookSecret  string

	// Ticket tracker. Optional: an unset base URL means ticket context is
	// simply never available.
	JiraBaseURL  string
	JiraEmail    string
	JiraAPIToken string

	// Knowledge base. Optional in the same way.
	ConfluenceBaseURL  string
	ConfluenceUser     string
	ConfluenceAPIToken string
	ConfluenceSpaceKey string

	// Language model and embeddings.
	LLMProvider        string
	GeminiAPIKey       string
	OllamaHost         string
	GeneratorModelName string
	EmbedderModelName  string

	// Semantic index.
	IndexBackend   string
	DatabaseURL    string
	IndexTopK      int
	IndexMinScore  float64
	QueryMaxLength int

	// Retry budget for external calls.
	RetryMaxAttempts    int
	RetryInitialDelay   time.Duration
	RetryAttemptTimeout time.Duration
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("MODE", ModeLive)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("LLM_PROVIDER", "ollama")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("GENERATOR_MODEL_NAME", "gemma3:latest")
	viper.SetDefault("EMBEDDER_MODEL_NAME", "nomic-embed-text")
	viper.SetDefault("INDEX_BACKEND", IndexBackendMemory)
	viper.SetDefault("INDEX_TOP_K", 3)
	viper.SetDefault("INDEX_MIN_SCORE", 0.7)
	viper.SetDefault("QUERY_MAX_LENGTH", 1000)
	viper.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("RETRY_INITIAL_DELAY", "1s")
	viper.SetDefault("RETRY_ATTEMPT_TIMEOUT", "30s")
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/review-pilot-app.private-key.pem")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", "error", err)
		}
	}
	viper.AutomaticEnv()

	// Special handling for the Gemini generator model name.
	generatorModel := viper.GetString("GENERATOR_MODEL_NAME")
	if viper.GetString("LLM_PROVIDER") == "gemini" {
		geminiModel := viper.GetString("GEMINI_GENERATOR_MODEL_NAME")
		if geminiModel != "" {
			generatorModel = geminiModel
		} else {
			generatorModel = "gemini-2.5-flash"
		}
	}

	cfg := &Config{
		Mode:       strings.ToLower(viper.GetString("MODE")),
		ServerPort: viper.GetString("SERVER_PORT"),
		LogLevel:   parseLogLevel(viper.GetString("LOG_LEVEL")),
		LogFormat:  viper.GetString("LOG_FORMAT"),
		MaxWorkers: viper.GetInt("MAX_WORKERS"),

		GitHubToken:          viper.GetString("GITHUB_TOKEN"),
		GitHubAppID:          viper.GetInt64("GITHUB_APP_ID"),
		GitHubInstallationID: viper.GetInt64("GITHUB_INSTALLATION_ID"),
		GitHubPrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		GitHubWebhookSecret:  viper.GetString("GITHUB_WEBHOOK_SECRET"),

		JiraBaseURL:  viper.GetString("JIRA_BASE_URL"),
		JiraEmail:    viper.GetString("JIRA_EMAIL"),
		JiraAPIToken: viper.GetString("JIRA_API_TOKEN"),

		ConfluenceBaseURL:  viper.GetString("CONFLUENCE_BASE_URL"),
		ConfluenceUser:     viper.GetString("CONFLUENCE_USER"),
		ConfluenceAPIToken: viper.GetString("CONFLUENCE_API_TOKEN"),
		ConfluenceSpaceKey: viper.GetString("CONFLUENCE_SPACE_KEY"),

		LLMProvider:        viper.GetString("LLM_PROVIDER"),
		GeminiAPIKey:       viper.GetString("GEMINI_API_KEY"),
		OllamaHost:         viper.GetString("OLLAMA_HOST"),
		GeneratorModelName: generatorModel,
		EmbedderModelName:  viper.GetString("EMBEDDER_MODEL_NAME"),

		IndexBackend:   strings.ToLower(viper.GetString("INDEX_BACKEND")),
		DatabaseURL:    viper.GetString("DATABASE_URL"),
		IndexTopK:      viper.GetInt("INDEX_TOP_K"),
		IndexMinScore:  viper.GetFloat64("INDEX_MIN_SCORE"),
		QueryMaxLength: viper.GetInt("QUERY_MAX_LENGTH"),

		RetryMaxAttempts:    viper.GetInt("RETRY_MAX_ATTEMPTS"),
		RetryInitialDelay:   viper.GetDuration("RETRY_INITIAL_DELAY"),
		RetryAttemptTimeout: viper.GetDuration("RETRY_ATTEMPT_TIMEOUT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations a process cannot start without.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeLive, ModeStub:
	default:
		return fmt.Errorf("MODE must be %q or %q, got %q", ModeLive, ModeStub, c.Mode)
	}

	if c.Mode == ModeLive {
		if c.GitHubToken == "" && c.GitHubAppID == 0 {
			return fmt.Errorf("live mode needs GITHUB_TOKEN or GITHUB_APP_ID")
		}
		if c.GitHubAppID != 0 && c.GitHubPrivateKeyPath == "" {
			return fmt.Errorf("GITHUB_PRIVATE_KEY_PATH must be set when GITHUB_APP_ID is used")
		}
	}

	switch c.IndexBackend {
	case IndexBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for the postgres index backend")
		}
	case IndexBackendMemory:
	default:
		return fmt.Errorf("INDEX_BACKEND must be %q or %q, got %q", IndexBackendPostgres, IndexBackendMemory, c.IndexBackend)
	}

	if c.LLMProvider == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY must be set for the gemini provider")
	}

	if c.IndexMinScore < 0 || c.IndexMinScore > 1 {
		return fmt.Errorf("INDEX_MIN_SCORE must be within [0,1], got %v", c.IndexMinScore)
	}
	if c.IndexTopK <= 0 {
		return fmt.Errorf("INDEX_TOP_K must be positive, got %d", c.IndexTopK)
	}
	if c.RetryMaxAttempts <= 0 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be positive, got %d", c.RetryMaxAttempts)
	}
	return nil
}

// TicketSystemConfigured reports whether a ticket tracker is reachable at all.
func (c *Config) TicketSystemConfigured() bool {
	return c.Mode == ModeStub || c.JiraBaseURL != ""
}

// KnowledgeBaseConfigured reports whether a knowledge base is reachable at all.
func (c *Config) KnowledgeBaseConfigured() bool {
	return c.Mode == ModeStub || c.ConfluenceBaseURL != ""
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", s)
		return slog.LevelInfo
	}
}
