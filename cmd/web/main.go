package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tomz197/shooter/internal/config"
	"github.com/tomz197/shooter/internal/storage"
	"github.com/tomz197/shooter/internal/webplay"
)

//go:embed index.html
var htmlPage string

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load settings: %v\n", err)
		os.Exit(1)
	}
	logger, closeLog, err := settings.NewLogger(os.Stderr, "web")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	tuning, err := config.LoadTuning(settings.TuningFile)
	if err != nil {
		logger.Fatal("failed to load tuning", "err", err)
	}

	var kv storage.KV = storage.NewMemoryKV()
	if settings.HighScoreFile != "" {
		kv = storage.NewFileKV(settings.HighScoreFile)
	}
	play := webplay.NewServer(webplay.Options{
		Store:  storage.NewHighScore(kv, settings.HighScoreKey),
		Tuning: tuning,
		Seed:   settings.Seed,
		Logger: logger,
	})

	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.Handle("GET /play", play)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok %d\n", play.Active())
	})

	addr := net.JoinHostPort(settings.WebHost, settings.WebPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting web server", "url", "http://"+addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server", "sessions", play.Active())

	// Hijacked websocket connections are not tracked by Shutdown; they end
	// when the process exits.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
