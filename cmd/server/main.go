package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arogya-intake/internal/config"
	"arogya-intake/internal/conversation"
	"arogya-intake/internal/core"
	"arogya-intake/internal/db"
	httpserver "arogya-intake/internal/http"
	"arogya-intake/internal/llm"
	"arogya-intake/internal/logging"
	"arogya-intake/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger().Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Configure(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	log := logging.Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("store ready", "backend", cfg.StorageBackend)

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		log.Error("failed to create completion client", "provider", cfg.LLMProvider, "error", err)
		os.Exit(1)
	}

	hub := httpserver.NewHub()
	notifiers := conversation.Notifiers{hub}
	if sqlStore, ok := store.(*db.SQLStore); ok && sqlStore.Dialect() == config.BackendPostgres && cfg.NotifyChannel != "" {
		pg := db.NewNotifier(sqlStore.DB(), cfg.DatabaseURL, cfg.NotifyChannel)
		notifiers = append(notifiers, pg)
		go watchGuides(ctx, pg)
	}

	var reports *report.Renderer
	if r, err := report.NewRenderer(cfg.ReportsDir, cfg.ReportFontPath); err != nil {
		log.Warn("pdf reports disabled", "error", err)
	} else {
		reports = r
		if n, err := reports.Cleanup(cfg.ReportRetention); err != nil {
			log.Error("report cleanup failed", "error", err)
		} else if n > 0 {
			log.Info("removed expired reports", "count", n)
		}
	}

	deps := conversation.Deps{
		Store:    store,
		LLM:      completer,
		Notifier: notifiers,
		LLMOpts:  core.Options{MaxTokens: cfg.MaxTokens, Timeout: cfg.LLMTimeout},
	}
	// A nil *SearchClient must not become a non-nil interface.
	if sc := llm.NewSearchClient(llm.SearchConfig{APIKey: cfg.SearchKey, BaseURL: cfg.SearchBaseURL, Model: cfg.SearchModel}); sc != nil {
		deps.Searcher = sc
	}
	if reports != nil {
		deps.Reports = reports
	}
	svc := conversation.NewService(deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.NewServer(svc, reports, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newCompleter(ctx context.Context, cfg config.Config) (core.Completer, error) {
	if cfg.LLMProvider == config.ProviderGemini {
		return llm.NewGeminiClient(ctx, llm.GeminiConfig{
			Project:  cfg.GCPProject,
			Location: cfg.GCPLocation,
			Model:    cfg.GeminiModel,
		})
	}
	return llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.ChatModel,
	}), nil
}

// watchGuides logs the guide notifications seen on the Postgres channel,
// including those published by other replicas.
func watchGuides(ctx context.Context, n *db.Notifier) {
	log := logging.Logger()
	ch, err := n.Listen(ctx)
	if err != nil {
		log.Error("guide listener failed", "error", err)
		return
	}
	for id := range ch {
		log.Info("guide ready", "session_id", id, "channel", n.Channel)
	}
}
