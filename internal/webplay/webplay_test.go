package webplay

import (
	"context"
	"io"
	"math/rand"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/shooter/internal/engine"
	"github.com/tomz197/shooter/internal/storage"
)

type fakeConn struct {
	sendCh chan []byte
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case f.sendCh <- cp:
	default: // Test stopped reading
	}
	return nil
}

func (f *fakeConn) Close() error {
	return nil
}

func newTestEngine() *engine.Engine {
	return engine.New(nil, rand.New(rand.NewSource(1)), engine.WithLogger(log.New(io.Discard)))
}

func TestEncodeDecodeCommand(t *testing.T) {
	b, err := Encode(MsgCommand, engine.Command{Op: engine.OpPointer, X: 12, Width: 300})
	if err != nil {
		t.Fatal(err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatal(err)
	}
	if env.T != MsgCommand {
		t.Fatalf("type = %q, want %q", env.T, MsgCommand)
	}
	cmd, err := DecodePayload[engine.Command](env)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Op != engine.OpPointer || cmd.X != 12 || cmd.Width != 300 {
		t.Fatalf("command = %+v", cmd)
	}

	if _, err := DecodeEnvelope(nil); err == nil {
		t.Fatal("empty message accepted")
	}
	if _, err := DecodePayload[engine.Command](Envelope{T: MsgCommand}); err == nil {
		t.Fatal("empty payload accepted")
	}
}

// readFrames decodes frames from next until match returns true.
func readFrames(t *testing.T, next func() ([]byte, error), match func(FrameMessage) bool) FrameMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		b, err := next()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		env, err := DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.T != MsgFrame {
			continue
		}
		f, err := DecodePayload[FrameMessage](env)
		if err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if match(f) {
			return f
		}
	}
	t.Fatal("timed out waiting for frame")
	return FrameMessage{}
}

func TestSessionWelcomeAndFrames(t *testing.T) {
	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	sess := NewSession(newTestEngine(), fc, log.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	env, err := DecodeEnvelope(<-fc.sendCh)
	if err != nil {
		t.Fatal(err)
	}
	welcome, err := DecodePayload[Welcome](env)
	if err != nil {
		t.Fatal(err)
	}
	if welcome.Width != 500 || welcome.Height != 400 || welcome.TickHz != TickHz {
		t.Fatalf("welcome = %+v", welcome)
	}

	sess.Submit(engine.Command{Op: engine.OpStart})
	next := func() ([]byte, error) {
		select {
		case b := <-fc.sendCh:
			return b, nil
		case <-time.After(time.Second):
			return nil, context.DeadlineExceeded
		}
	}
	f := readFrames(t, next, func(f FrameMessage) bool { return f.Phase == engine.PhaseRunning })
	if f.Lives != 3 || f.Score != 0 {
		t.Fatalf("running frame lives=%d score=%d, want 3 and 0", f.Lives, f.Score)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestServerPlaysOverWebsocket(t *testing.T) {
	srv := NewServer(Options{
		Store:  storage.NewHighScore(storage.NewMemoryKV(), "best"),
		Seed:   7,
		Logger: log.New(io.Discard),
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	send := func(c engine.Command) {
		b, err := Encode(MsgCommand, c)
		if err != nil {
			t.Fatal(err)
		}
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	next := func() ([]byte, error) {
		_ = ws.SetReadDeadline(time.Now().Add(time.Second))
		_, b, err := ws.ReadMessage()
		return b, err
	}

	send(engine.Command{Op: engine.OpStart})
	send(engine.Command{Op: engine.OpFire})

	var sawFired bool
	f := readFrames(t, next, func(f FrameMessage) bool {
		sawFired = sawFired || slices.Contains(f.Events, engine.EventFired)
		return sawFired && len(f.Bullets) > 0
	})
	if f.Phase != engine.PhaseRunning {
		t.Fatalf("phase = %v, want running", f.Phase)
	}

	deadline := time.Now().Add(time.Second)
	for srv.Active() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := srv.Active(); got != 1 {
		t.Fatalf("active sessions = %d, want 1", got)
	}

	ws.Close()
	deadline = time.Now().Add(2 * time.Second)
	for srv.Active() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := srv.Active(); got != 0 {
		t.Fatalf("active sessions after close = %d, want 0", got)
	}
}
