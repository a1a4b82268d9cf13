package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/membridge/membridge/internal/brain"
	"github.com/membridge/membridge/internal/config"
	"github.com/membridge/membridge/internal/dialogue"
	"github.com/membridge/membridge/internal/httpapi"
	"github.com/membridge/membridge/internal/observability"
	"github.com/membridge/membridge/internal/recall"
	"github.com/membridge/membridge/internal/shortterm"
	"github.com/membridge/membridge/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	memoryStore, err := shortterm.NewFileStore(cfg.MemoriesDir)
	if err != nil {
		log.Fatalf("short-term store init failed: %v", err)
	}

	ctx := context.Background()
	index, err := recall.NewIndex(ctx, cfg.DatabaseURL, cfg.RecallDir, cfg.EmbeddingDim)
	if err != nil {
		log.Fatalf("long-term index init failed: %v", err)
	}
	embedder := recall.NewEmbedder(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDim)
	archive := recall.NewArchive(index, embedder)
	defer archive.Close()

	var generator brain.Generator
	if cfg.OpenRouterAPIKey != "" {
		generator = brain.NewOpenRouterGenerator(brain.OpenRouterConfig{
			APIKey:      cfg.OpenRouterAPIKey,
			BaseURL:     cfg.OpenRouterBaseURL,
			Model:       cfg.GenerationModel,
			MaxTokens:   cfg.GenerationMaxTokens,
			Temperature: cfg.GenerationTemperature,
		})
		log.Printf("generation provider: openrouter (%s)", cfg.GenerationModel)
	} else {
		generator = brain.NewMockGenerator()
		log.Printf("generation provider: mock (no OPENROUTER_API_KEY)")
	}
	generator = brain.NewRetrier(generator, cfg.GenerationMaxAttempts, cfg.GenerationBackoff, cfg.GenerationTimeout)

	controller := dialogue.New(memoryStore, archive, generator, metrics, cfg.RecallLimit)

	var tg *telegram.Client
	if cfg.BotToken != "" {
		tg = telegram.NewClient(cfg.TelegramAPIBaseURL, cfg.BotToken)
	}

	var sender httpapi.Sender
	if tg != nil {
		sender = tg
	}
	api := httpapi.New(cfg, controller, sender)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	switch {
	case tg == nil:
		log.Printf("telegram transport disabled (no BOT_TOKEN); websocket chat only")
	case cfg.WebhookBaseURL != "":
		// Push delivery: register the webhook and let the HTTP server
		// receive updates.
		url := strings.TrimRight(cfg.WebhookBaseURL, "/") + "/webhook"
		if err := tg.DeleteWebhook(runCtx); err != nil {
			log.Printf("delete stale webhook failed: %v", err)
		}
		if err := tg.SetWebhook(runCtx, url); err != nil {
			log.Fatalf("set webhook failed: %v", err)
		}
		log.Printf("telegram webhook registered at %s", url)
	default:
		// Pull delivery for local runs.
		if err := tg.DeleteWebhook(runCtx); err != nil {
			log.Printf("delete stale webhook failed: %v", err)
		}
		poller := telegram.NewPoller(tg, func(ctx context.Context, upd telegram.Update) {
			api.ProcessUpdate(ctx, upd)
		})
		go poller.Run(runCtx)
		log.Printf("telegram transport: long polling")
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
