package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adewoleduyilemi-bit/n8n-video-worker/config"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/adapter/encoder/ffmpeg"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/adapter/fetch"
	HTTPAdapter "github.com/adewoleduyilemi-bit/n8n-video-worker/internal/adapter/http"
	sqlitestore "github.com/adewoleduyilemi-bit/n8n-video-worker/internal/adapter/storage/sqlite"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/domain"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/infrastructure/logger"
	"github.com/adewoleduyilemi-bit/n8n-video-worker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	logger.Info.Printf("starting video worker on port %d", cfg.Port)

	for _, dir := range []string{cfg.OutputDir, cfg.WorkDir, cfg.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error.Printf("failed to create directory %s: %v", dir, err)
			os.Exit(1)
		}
	}

	store, err := sqlitestore.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to create store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	encoder := ffmpeg.NewEncoder(int64(cfg.EncoderConcurrency))
	fetcher := fetch.NewFetcher()
	catalog := domain.DefaultCatalog()
	workspaces := service.NewWorkspaceManager(cfg.WorkDir)
	pipeline := service.NewPipeline(catalog, fetcher, encoder, store, workspaces, cfg.OutputDir)

	probeCtx, probeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if !encoder.Available(probeCtx) {
		logger.Warn.Printf("ffmpeg not found on PATH, merge requests will fail")
	}
	probeCancel()

	handlers := HTTPAdapter.NewHandlers(pipeline, catalog, encoder, store, cfg.OutputDir, cfg.Domain, cfg.BehindProxy)
	server := HTTPAdapter.NewServer(handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := newHTTPServer(addr, server)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info.Printf("received %s, shutting down", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}

		logger.Info.Printf("shutdown complete")
	}()

	logger.Info.Printf("server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error.Printf("server failed: %v", err)
		os.Exit(1)
	}
}

// newHTTPServer carries no write deadline: a merge request blocks for
// the whole pipeline, whose stage budgets alone sum past 40 minutes,
// plus any encoder queueing wait. Response time is bounded by the
// per-stage contexts instead.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}
}
