package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"assistantchat/internal/config"
	"assistantchat/internal/handler"
	"assistantchat/internal/service/assistant"
	chatservice "assistantchat/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	registry := chatservice.NewRegistry()

	var assistantSvc *assistant.Service
	if cfg.Assistant.Enabled() {
		assistantSvc = assistant.NewService(cfg.Assistant)
		if id, err := assistantSvc.EnsureAssistant(ctx); err != nil {
			log.Printf("warning: failed to prepare assistant: %v", err)
			log.Println("the assistant will be retried lazily on the first chat request")
		} else {
			log.Printf("assistant ready: %s", id)
		}
	} else {
		log.Println("OPENAI_API_KEY not configured, chat and upload endpoints will answer 503")
	}

	router := handler.NewRouter(assistantSvc, registry, cfg.Upload)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("assistant chat backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
