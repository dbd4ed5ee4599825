package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomz197/shooter/internal/audio"
	"github.com/tomz197/shooter/internal/config"
	"github.com/tomz197/shooter/internal/engine"
	"github.com/tomz197/shooter/internal/loop"
	"github.com/tomz197/shooter/internal/storage"
	"golang.org/x/term"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load settings: %v\n", err)
		os.Exit(1)
	}
	tuning, err := config.LoadTuning(settings.TuningFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load tuning: %v\n", err)
		os.Exit(1)
	}

	// Stdout is the game screen, so logs only go to a file.
	logger, closeLog, err := settings.NewLogger(io.Discard, "game")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	var store engine.ScoreStore
	if settings.HighScoreFile != "" {
		store = storage.NewHighScore(storage.NewFileKV(settings.HighScoreFile), settings.HighScoreKey)
	}

	opts := loop.Options{
		Store:  store,
		Tuning: tuning,
		Logger: logger,
	}
	if settings.Seed != 0 {
		opts.Rand = rand.New(rand.NewSource(settings.Seed))
	}
	if settings.Audio {
		sm := audio.NewSoundManager(logger)
		if err := sm.Initialize(); err != nil {
			logger.Warn("audio disabled", "err", err)
		} else {
			defer sm.Close()
			opts.Sound = sm
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "seed", settings.Seed, "highscore_file", settings.HighScoreFile)
	reader := bufio.NewReader(os.Stdin)
	if err := loop.Run(ctx, reader, os.Stdout, opts); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
