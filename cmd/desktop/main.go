package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tomz197/shooter/internal/config"
	"github.com/tomz197/shooter/internal/desktop"
	"github.com/tomz197/shooter/internal/engine"
	"github.com/tomz197/shooter/internal/storage"
)

// windowScale sizes the window relative to the playfield.
const windowScale = 2

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load settings: %v\n", err)
		os.Exit(1)
	}
	logger, closeLog, err := settings.NewLogger(os.Stderr, "desktop")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	tuning, err := config.LoadTuning(settings.TuningFile)
	if err != nil {
		logger.Fatal("failed to load tuning", "err", err)
	}

	var store engine.ScoreStore
	if settings.HighScoreFile != "" {
		store = storage.NewHighScore(storage.NewFileKV(settings.HighScoreFile), settings.HighScoreKey)
	}
	var rng *rand.Rand
	if settings.Seed != 0 {
		rng = rand.New(rand.NewSource(settings.Seed))
	}
	eng := engine.New(store, rng, engine.WithTuning(tuning), engine.WithLogger(logger))

	// ebiten owns the audio device, so the beep speaker stays closed here.
	game := desktop.New(eng, nil, logger)

	ebiten.SetWindowSize(int(tuning.Width)*windowScale, int(tuning.Height)*windowScale)
	ebiten.SetWindowTitle("Space Shooter")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		logger.Error("game error", "err", err)
		os.Exit(1)
	}
}
