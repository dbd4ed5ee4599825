// Package loop runs one terminal play session: it reads keys and mouse
// reports, drives an engine at a fixed frame rate, and draws its frames.
package loop

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/shooter/internal/config"
	"github.com/tomz197/shooter/internal/draw"
	"github.com/tomz197/shooter/internal/engine"
	"github.com/tomz197/shooter/internal/input"
)

// Sound receives gameplay events after every frame.
type Sound interface {
	Play(ev engine.Event)
}

// Options configures a session. The zero value plays with default tuning,
// an in-memory best score and a clock-seeded random source.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Store        engine.ScoreStore
	Rand         *rand.Rand
	Tuning       config.Tuning
	Logger       *log.Logger
	Sound        Sound
	IdleTimeout  time.Duration // Zero disables the inactivity disconnect
	NoMouse      bool
}

// session handles rendering and input for a single terminal.
type session struct {
	engine       *engine.Engine
	frame        engine.Frame
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates one frame of output
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	sound        Sound
	logger       *log.Logger
	styles       styles
	mouse        bool

	lastInput   time.Time
	idleTimeout time.Duration
	idle        bool

	// Full clear on transitions so stale overlays disappear.
	prevPhase engine.Phase
	wasIdle   bool
}

// Run plays until the player quits, the reader ends, the session goes idle
// past its timeout, or ctx is cancelled. It restores the terminal on return.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, opts Options) error {
	s := newSession(r, w, opts)
	defer s.close()

	draw.HideCursor(w)
	draw.ClearScreen(w)
	if s.mouse {
		draw.EnableMouse(w)
	}

	ticker := time.NewTicker(targetFrameTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if !s.update(now) {
				return nil
			}
			if err := s.drawFrame(now); err != nil {
				return err
			}
		}
	}
}

func newSession(r *bufio.Reader, w io.Writer, opts Options) *session {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	tuning := opts.Tuning
	if tuning == (config.Tuning{}) {
		tuning = config.DefaultTuning()
	}

	eng := engine.New(opts.Store, opts.Rand,
		engine.WithTuning(tuning),
		engine.WithLogger(logger),
	)

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := draw.TermSize(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := fitTermSize(termWidth, termHeight, tuning.Width/tuning.Height)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, tuning.Width, tuning.Height)
	canvas.SetOffset(offsetCol, offsetRow)

	return &session{
		engine:       eng,
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		sound:        opts.Sound,
		logger:       logger,
		styles:       newStyles(w),
		mouse:        !opts.NoMouse,
		lastInput:    time.Now(),
		idleTimeout:  opts.IdleTimeout,
		prevPhase:    eng.Phase(),
	}
}

// close stops input and restores the terminal.
func (s *session) close() {
	s.inputStream.Close()
	if s.mouse {
		draw.DisableMouse(s.writer)
	}
	draw.ResetStyle(s.writer)
	draw.ClearScreen(s.writer)
	draw.ShowCursor(s.writer)
}

// update runs the Input and Update phases of one frame. It returns false
// when the session should end.
func (s *session) update(now time.Time) bool {
	in, open := input.ReadInput(s.inputStream)
	if !open || in.Quit {
		return false
	}
	if !s.trackActivity(in, now) {
		s.logger.Info("disconnecting idle session", "idle", now.Sub(s.lastInput).Round(time.Second))
		return false
	}

	s.applyInput(in)
	s.engine.Advance(now)
	s.playEvents()
	s.updateScreen()
	return true
}

// trackActivity updates the inactivity state. It returns false once the
// session has been idle past its timeout.
func (s *session) trackActivity(in input.Input, now time.Time) bool {
	if in.Any() {
		s.lastInput = now
		s.idle = false
		return true
	}
	if s.idleTimeout <= 0 {
		return true
	}
	idleFor := now.Sub(s.lastInput)
	if idleFor > s.idleTimeout {
		return false
	}
	if idleFor > time.Duration(float64(s.idleTimeout)*idleWarnFraction) && !s.idle {
		s.idle = true
		s.engine.Pause()
	}
	return true
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (s *session) updateScreen() {
	termWidth, termHeight, err := draw.TermSize(s.termSizeFunc)
	if err != nil {
		return
	}
	t := s.engine.Tuning()
	renderWidth, renderHeight, offsetCol, offsetRow := fitTermSize(termWidth, termHeight, t.Width/t.Height)

	if renderWidth != s.canvas.TerminalWidth() || renderHeight != s.canvas.TerminalHeight() ||
		offsetCol != s.canvas.OffsetCol() || offsetRow != s.canvas.OffsetRow() {
		draw.ClearScreen(s.chunkWriter)
		s.canvas.ForceRedraw()
	}

	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// fitTermSize picks the largest canvas that fits the terminal, stays under
// the max render resolution, and keeps the playfield's aspect ratio, then
// computes the centering offset. A terminal cell is about twice as tall as
// wide, so one half-block sub-pixel is roughly square.
func fitTermSize(termWidth, termHeight int, aspect float64) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, MaxTermWidth)
	renderHeight = min(termHeight, MaxTermHeight)

	if float64(renderWidth) > float64(renderHeight*2)*aspect {
		renderWidth = int(float64(renderHeight*2) * aspect)
	} else {
		renderHeight = int(float64(renderWidth) / aspect / 2)
	}
	renderWidth = max(renderWidth, 1)
	renderHeight = max(renderHeight, 1)

	offsetCol = max((termWidth-renderWidth)/2, 0)
	offsetRow = max((termHeight-renderHeight)/2, 0)
	return
}
