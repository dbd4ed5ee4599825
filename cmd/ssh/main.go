package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/shooter/internal/config"
	"github.com/tomz197/shooter/internal/draw"
	"github.com/tomz197/shooter/internal/engine"
	"github.com/tomz197/shooter/internal/loop"
	"github.com/tomz197/shooter/internal/storage"
)

// shutdownGrace is how long running sessions get to finish on shutdown.
const shutdownGrace = 10 * time.Second

// app holds what every session shares: one high score and the tuning.
type app struct {
	store  engine.ScoreStore
	tuning config.Tuning
	seed   int64
	logger *log.Logger

	nextID atomic.Int64
	active sync.WaitGroup
}

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load settings: %v\n", err)
		os.Exit(1)
	}
	logger, closeLog, err := settings.NewLogger(os.Stderr, "ssh")
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
	a := &app{
		store:  storage.NewHighScore(kv, settings.HighScoreKey),
		tuning: tuning,
		seed:   settings.Seed,
		logger: logger,
	}

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.Warn("failed to get working directory", "err", workErr)
	}
	logger.Info("ssh config",
		"host", settings.SSHHost,
		"port", settings.SSHPort,
		"host_key", settings.HostKeyPath,
		"highscore_file", settings.HighScoreFile,
		"working_dir", workingDir)

	// Session contexts are cancelled when the server shuts down, which ends
	// each game loop cleanly.
	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(settings.SSHHost, settings.SSHPort)),
		wish.WithMiddleware(
			a.gameMiddleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if settings.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(settings.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", net.JoinHostPort(settings.SSHHost, settings.SSHPort))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	// Shutdown stops accepting and waits for open sessions; Close forces
	// the stragglers.
	if err := s.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown timed out, closing sessions", "err", err)
		_ = s.Close()
	}
	a.active.Wait()
	logger.Info("server stopped")
}

// gameMiddleware runs one independent game per SSH session.
func (a *app) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		a.active.Add(1)
		defer a.active.Done()

		id := a.nextID.Add(1)
		logger := a.logger.With("session", id, "user", sess.User())
		logger.Info("new game session", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		opts := loop.Options{
			TermSizeFunc: sizeTracker.getSize,
			Store:        a.store,
			Tuning:       a.tuning,
			Logger:       logger,
			IdleTimeout:  loop.DefaultIdleTimeout,
		}
		if a.seed != 0 {
			opts.Rand = rand.New(rand.NewSource(a.seed + id))
		}

		reader := bufio.NewReader(sess)
		if err := loop.Run(sess.Context(), reader, sess, opts); err != nil {
			logger.Error("game error", "err", err)
		}

		logger.Info("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
