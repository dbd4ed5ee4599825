package loop

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/shooter/internal/engine"
	"github.com/tomz197/shooter/internal/input"
	"github.com/tomz197/shooter/internal/storage"
)

type recordingSound struct {
	events []engine.Event
}

func (r *recordingSound) Play(ev engine.Event) {
	r.events = append(r.events, ev)
}

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

func newTestSession(t *testing.T, out io.Writer, opts Options) *session {
	t.Helper()
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = fixedSize(80, 24)
	}
	if opts.Store == nil {
		opts.Store = storage.NewHighScore(storage.NewMemoryKV(), "best")
	}
	opts.Rand = rand.New(rand.NewSource(1))
	opts.Logger = log.New(io.Discard)

	s := newSession(bufio.NewReader(pr), out, opts)
	t.Cleanup(s.inputStream.Close)
	return s
}

func keys(k ...input.Key) input.Input {
	return input.Input{Keys: k, Pressed: []byte("x")}
}

func TestFitTermSize(t *testing.T) {
	tests := []struct {
		name                   string
		termWidth, termHeight  int
		wantWidth, wantHeight  int
		wantOffCol, wantOffRow int
	}{
		{"wide terminal", 80, 24, 60, 24, 10, 0},
		{"tall terminal", 50, 40, 50, 20, 0, 10},
		{"huge terminal", 300, 120, 200, 80, 50, 20},
		{"tiny terminal", 1, 1, 1, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, oc, or := fitTermSize(tt.termWidth, tt.termHeight, 500.0/400.0)
			if w != tt.wantWidth || h != tt.wantHeight || oc != tt.wantOffCol || or != tt.wantOffRow {
				t.Fatalf("got %dx%d at (%d,%d), want %dx%d at (%d,%d)",
					w, h, oc, or, tt.wantWidth, tt.wantHeight, tt.wantOffCol, tt.wantOffRow)
			}
		})
	}
}

func TestApplyInputKeys(t *testing.T) {
	s := newTestSession(t, io.Discard, Options{})

	s.applyInput(keys(input.KeyLeft, input.KeyLeft, input.KeyFire, input.KeyFire, input.KeyFire))
	if got := s.engine.Phase(); got != engine.PhaseIdle {
		t.Fatalf("phase = %v, want idle before start", got)
	}

	s.applyInput(keys(input.KeyStart, input.KeyLeft, input.KeyLeft, input.KeyFire, input.KeyFire, input.KeyFire))
	if got := s.engine.Phase(); got != engine.PhaseRunning {
		t.Fatalf("phase = %v, want running", got)
	}
	if got := s.engine.Ship().X; got != 182 {
		t.Fatalf("ship x = %v, want 182", got)
	}
	if got := s.engine.BulletCount(); got != 1 {
		t.Fatalf("bullets = %d, want 1 (cooldown blocks the rest)", got)
	}

	s.applyInput(keys(input.KeyPause))
	if got := s.engine.Phase(); got != engine.PhasePaused {
		t.Fatalf("phase = %v, want paused", got)
	}
	s.applyInput(keys(input.KeyPause, input.KeyPause))
	if got := s.engine.Phase(); got != engine.PhasePaused {
		t.Fatalf("phase = %v, want paused after two toggles", got)
	}
}

func TestApplyInputKeepsKeyOrder(t *testing.T) {
	s := newTestSession(t, io.Discard, Options{})
	s.applyInput(keys(input.KeyStart))

	s.applyInput(keys(input.KeyFire, input.KeyPause))
	if got := s.engine.BulletCount(); got != 1 {
		t.Fatalf("bullets = %d, want 1 (fire came before pause)", got)
	}
	if got := s.engine.Phase(); got != engine.PhasePaused {
		t.Fatalf("phase = %v, want paused", got)
	}

	s.applyInput(keys(input.KeyLeft, input.KeyPause, input.KeyLeft))
	if got := s.engine.Ship().X; got != 206 {
		t.Fatalf("ship x = %v, want 206 (only the move after resume counts)", got)
	}
}

func TestApplyInputMouse(t *testing.T) {
	s := newTestSession(t, io.Discard, Options{})
	s.applyInput(keys(input.KeyStart))

	// 80x24 terminal: a 60 column canvas starting after a 10 column margin.
	s.applyInput(input.Input{Mouse: []input.Mouse{{Col: 41, Row: 5, Press: true}}})
	want := 30.5 * 500 / 60
	if got := s.engine.Ship().CenterX(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("ship center = %v, want %v", got, want)
	}
	if got := s.engine.BulletCount(); got != 1 {
		t.Fatalf("bullets = %d, want 1 after press", got)
	}

	before := s.engine.Ship().X
	s.applyInput(input.Input{Mouse: []input.Mouse{{Col: 5, Row: 5, Motion: true}}})
	if got := s.engine.Ship().X; got != before {
		t.Fatalf("motion in the margin moved the ship to %v", got)
	}

	s.applyInput(input.Input{Mouse: []input.Mouse{{Col: 11, Row: 5, Motion: true}}})
	if got := s.engine.Ship().X; got != 0 {
		t.Fatalf("ship x = %v, want 0 at the left edge", got)
	}
}

func TestIdleWarningAndTimeout(t *testing.T) {
	s := newTestSession(t, io.Discard, Options{IdleTimeout: 4 * time.Second})
	s.applyInput(keys(input.KeyStart))
	start := s.lastInput

	if !s.trackActivity(input.Input{}, start.Add(time.Second)) || s.idle {
		t.Fatal("session idle too early")
	}
	if !s.trackActivity(input.Input{}, start.Add(3500*time.Millisecond)) {
		t.Fatal("session ended at the warning")
	}
	if !s.idle {
		t.Fatal("idle warning not shown")
	}
	if got := s.engine.Phase(); got != engine.PhasePaused {
		t.Fatalf("phase = %v, want paused while idle", got)
	}

	if !s.trackActivity(input.Input{Pressed: []byte("x")}, start.Add(3600*time.Millisecond)) || s.idle {
		t.Fatal("key press did not clear the idle warning")
	}
	if s.trackActivity(input.Input{}, start.Add(8*time.Second)) {
		t.Fatal("session survived past the idle timeout")
	}
}

func TestEventsReachSound(t *testing.T) {
	snd := &recordingSound{}
	s := newTestSession(t, io.Discard, Options{Sound: snd})

	s.applyInput(keys(input.KeyStart, input.KeyFire))
	s.playEvents()

	if len(snd.events) != 2 {
		t.Fatalf("got %d events, want 2", len(snd.events))
	}
	if snd.events[0].Kind != engine.EventStarted || snd.events[1].Kind != engine.EventFired {
		t.Fatalf("events = %+v, want started then fired", snd.events)
	}
}

func TestDrawFrameShowsScreens(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(t, &out, Options{})

	if err := s.drawFrame(time.UnixMilli(0)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "S P A C E") {
		t.Fatal("title screen not drawn")
	}
	if !strings.Contains(out.String(), "Score: 0") {
		t.Fatal("HUD not drawn")
	}

	out.Reset()
	s.applyInput(keys(input.KeyStart, input.KeyPause))
	if err := s.drawFrame(time.UnixMilli(0)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "PAUSED") {
		t.Fatal("pause overlay not drawn")
	}
	if !strings.Contains(out.String(), "\033[H\033[2J") {
		t.Fatal("phase change did not clear the screen")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Run(ctx, bufio.NewReader(pr), &out, Options{
		TermSizeFunc: fixedSize(80, 24),
		Logger:       log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasSuffix(out.String(), "\033[?25h") {
		t.Fatal("cursor not restored on exit")
	}
	if !strings.Contains(out.String(), "\033[?1003l") {
		t.Fatal("mouse tracking not disabled on exit")
	}
}

func TestRunStopsOnQuitKey(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), bufio.NewReader(strings.NewReader("q")), io.Discard, Options{
			TermSizeFunc: fixedSize(80, 24),
			Logger:       log.New(io.Discard),
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}
}
