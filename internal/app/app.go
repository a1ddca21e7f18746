// Package app wires the application together: configuration, adapters,
// pipeline, dispatcher, and HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/review-pilot/internal/config"
	"github.com/sevigo/review-pilot/internal/confluence"
	"github.com/sevigo/review-pilot/internal/core"
	"github.com/sevigo/review-pilot/internal/db"
	"github.com/sevigo/review-pilot/internal/github"
	"github.com/sevigo/review-pilot/internal/index"
	"github.com/sevigo/review-pilot/internal/jira"
	"github.com/sevigo/review-pilot/internal/jobs"
	"github.com/sevigo/review-pilot/internal/llm"
	"github.com/sevigo/review-pilot/internal/pipeline"
	"github.com/sevigo/review-pilot/internal/resolve"
	"github.com/sevigo/review-pilot/internal/retry"
	"github.com/sevigo/review-pilot/internal/server"
	"github.com/sevigo/review-pilot/internal/storage"
	"github.com/sevigo/review-pilot/internal/stub"
)

// App holds the main application components. The exported fields let the CLI
// commands reuse the same wiring without running the server.
type App struct {
	Runner *pipeline.Runner
	Index  core.SemanticIndex
	Runs   storage.RunStore
	Tools  core.Toolset

	cfg        *config.Config
	logger     *slog.Logger
	server     *server.Server
	dispatcher *jobs.Dispatcher
	dbClose    func()
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing review pilot",
		"mode", cfg.Mode,
		"index_backend", cfg.IndexBackend,
		"llm_provider", cfg.LLMProvider,
		"max_workers", cfg.MaxWorkers)

	docStore, runStore, dbClose, err := buildStorage(cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := buildEmbedder(cfg, logger)
	if err != nil {
		dbClose()
		return nil, err
	}
	semanticIndex := index.NewService(docStore, embedder, logger)

	tools, analyzer, err := buildToolset(ctx, cfg, logger)
	if err != nil {
		dbClose()
		return nil, err
	}

	if cfg.Mode == config.ModeStub {
		seedStubIndex(ctx, tools, semanticIndex, logger)
	}

	resolver := resolve.NewResolver(tools.Docs, semanticIndex, resolve.Options{
		TopK:           cfg.IndexTopK,
		MinScore:       cfg.IndexMinScore,
		QueryMaxLength: cfg.QueryMaxLength,
	}, logger)

	exec := retry.NewExecutor(retry.Policy{
		MaxAttempts:       cfg.RetryMaxAttempts,
		InitialDelay:      cfg.RetryInitialDelay,
		PerAttemptTimeout: cfg.RetryAttemptTimeout,
	}, logger)

	runner := pipeline.NewRunner(tools, analyzer, resolver, exec, logger)
	reviewJob := jobs.NewReviewJob(runner, runStore, logger)
	dispatcher := jobs.NewDispatcher(reviewJob, cfg.MaxWorkers, logger)
	httpServer := server.NewServer(cfg, dispatcher, logger)

	logger.Info("review pilot initialized")
	return &App{
		Runner:     runner,
		Index:      semanticIndex,
		Runs:       runStore,
		Tools:      tools,
		cfg:        cfg,
		logger:     logger,
		server:     httpServer,
		dispatcher: dispatcher,
		dbClose:    dbClose,
	}, nil
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.logger.Info("starting review pilot",
		"server_port", a.cfg.ServerPort,
		"max_workers", a.cfg.MaxWorkers)
	return a.server.Start()
}

// Stop shuts the application down: server first so no new work arrives, then
// the dispatcher drains, then the database closes.
func (a *App) Stop() error {
	a.logger.Info("shutting down review pilot")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()
	a.dbClose()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("review pilot stopped")
	return nil
}

// Close releases resources for callers that never started the server.
func (a *App) Close() {
	a.dispatcher.Stop()
	a.dbClose()
}

func buildStorage(cfg *config.Config) (storage.DocumentStore, storage.RunStore, func(), error) {
	if cfg.IndexBackend == config.IndexBackendPostgres {
		database, closeDB, err := db.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return storage.NewDocumentStore(database.DB), storage.NewRunStore(database.DB), closeDB, nil
	}
	return storage.NewMemoryDocumentStore(), storage.NewMemoryRunStore(), func() {}, nil
}

func buildEmbedder(cfg *config.Config, logger *slog.Logger) (index.Embedder, error) {
	if cfg.Mode == config.ModeStub {
		return stub.NewEmbedder(), nil
	}

	embedderLLM, err := ollama.New(
		ollama.WithServerURL(cfg.OllamaHost),
		ollama.WithModel(cfg.EmbedderModelName),
		ollama.WithHTTPClient(newOllamaHTTPClient()),
		ollama.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder LLM: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(embedderLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// buildToolset binds the external capabilities once, by mode. Downstream code
// never branches on which implementation it got.
func buildToolset(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.Toolset, core.Analyzer, error) {
	if cfg.Mode == config.ModeStub {
		tools, err := stub.NewToolset(logger)
		if err != nil {
			return core.Toolset{}, nil, fmt.Errorf("failed to load stub fixtures: %w", err)
		}
		return tools, stub.NewAnalyzer(), nil
	}

	ghClient, err := buildGitHubClient(ctx, cfg, logger)
	if err != nil {
		return core.Toolset{}, nil, err
	}

	tools := core.Toolset{Code: github.NewAdapter(ghClient, logger)}
	if cfg.JiraBaseURL != "" {
		tools.Tickets = jira.NewClient(cfg.JiraBaseURL, cfg.JiraEmail, cfg.JiraAPIToken, logger)
	}
	if cfg.ConfluenceBaseURL != "" {
		tools.Docs = confluence.NewClient(cfg.ConfluenceBaseURL, cfg.ConfluenceUser,
			cfg.ConfluenceAPIToken, cfg.ConfluenceSpaceKey, logger)
	}

	model, err := createLLM(ctx, cfg, logger)
	if err != nil {
		return core.Toolset{}, nil, fmt.Errorf("failed to create generator LLM: %w", err)
	}
	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		return core.Toolset{}, nil, fmt.Errorf("failed to initialize prompt manager: %w", err)
	}

	return tools, llm.NewService(cfg.LLMProvider, promptMgr, model, logger), nil
}

func buildGitHubClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (github.Client, error) {
	if cfg.GitHubAppID != 0 {
		client, err := github.NewAppClient(cfg.GitHubAppID, cfg.GitHubInstallationID,
			cfg.GitHubPrivateKeyPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub App client: %w", err)
		}
		return client, nil
	}
	return github.NewPATClient(ctx, cfg.GitHubToken, logger), nil
}

// seedStubIndex loads the fixture documents into the in-memory index so the
// semantic tier has something to search right away.
func seedStubIndex(ctx context.Context, tools core.Toolset, idx core.SemanticIndex, logger *slog.Logger) {
	kb, ok := tools.Docs.(*stub.KnowledgeBase)
	if !ok {
		return
	}
	report := idx.BulkIngest(ctx, kb.Documents(), core.IngestPolicy{SkipExisting: true})
	logger.Info("seeded stub index", "ingested", report.Ingested, "skipped", report.Skipped)
}

// createLLM creates the appropriate model client based on the configured provider.
func createLLM(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llms.Model, error) {
	switch cfg.LLMProvider {
	case "gemini":
		logger.Info("using Gemini provider", "model", cfg.GeneratorModelName)
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set for the gemini provider")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.GeneratorModelName),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)

	case "ollama":
		logger.Info("using Ollama provider", "model", cfg.GeneratorModelName)
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithModel(cfg.GeneratorModelName),
			ollama.WithLogger(logger),
		)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// newOllamaHTTPClient builds an HTTP client with generous timeouts; local
// model servers can take minutes on a cold model.
func newOllamaHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}
