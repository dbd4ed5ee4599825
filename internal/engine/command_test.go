package engine

import (
	"encoding/json"
	"testing"
)

func TestApplyCommands(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := e.Apply(Command{Op: OpFire}); err != nil {
		t.Fatal(err)
	}
	if e.BulletCount() != 0 {
		t.Fatal("fire before start created a bullet")
	}

	steps := []struct {
		cmd   Command
		wantX float64
	}{
		{Command{Op: OpStart}, 230},
		{Command{Op: OpLeft}, 206},
		{Command{Op: OpRight}, 230},
		// 250 of 1000 display pixels is logical 125; the ship centers on it.
		{Command{Op: OpPointer, X: 250, Width: 1000}, 105},
		{Command{Op: OpPointer, X: 60}, 40},
		{Command{Op: OpPress, X: 1000, Width: 1000}, 460},
	}
	for _, st := range steps {
		if err := e.Apply(st.cmd); err != nil {
			t.Fatalf("%s: %v", st.cmd.Op, err)
		}
		if got := e.Ship().X; got != st.wantX {
			t.Fatalf("after %+v ship x = %v, want %v", st.cmd, got, st.wantX)
		}
	}
	if e.BulletCount() != 1 {
		t.Fatalf("bullets = %d, want 1 after press", e.BulletCount())
	}

	if err := e.Apply(Command{Op: OpPause}); err != nil {
		t.Fatal(err)
	}
	if e.Phase() != PhasePaused {
		t.Fatalf("phase = %v, want paused", e.Phase())
	}

	if err := e.Apply(Command{Op: "warp"}); err == nil {
		t.Fatal("unknown op accepted")
	}
}

func TestPhaseAndEventJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Phase  Phase       `json:"phase"`
		Events []EventKind `json:"events"`
	}{PhaseGameOver, []EventKind{EventFired, EventLifeLost}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"phase":"game_over","events":["fired","life_lost"]}`
	if string(b) != want {
		t.Fatalf("json = %s, want %s", b, want)
	}

	var back struct {
		Phase  Phase       `json:"phase"`
		Events []EventKind `json:"events"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Phase != PhaseGameOver || len(back.Events) != 2 || back.Events[1] != EventLifeLost {
		t.Fatalf("decoded %+v", back)
	}

	var p Phase
	if err := p.UnmarshalText([]byte("sleeping")); err == nil {
		t.Fatal("unknown phase accepted")
	}
}
