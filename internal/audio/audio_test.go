package audio

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"

	"github.com/tomz197/shooter/internal/engine"
)

// drain streams s to the end and returns the sample count and peak amplitude.
func drain(t *testing.T, s beep.Streamer, limit int) (total int, peak float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	for total < limit {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = max(peak, buf[i][0], -buf[i][0])
		}
		total += n
		if !ok {
			return total, peak
		}
	}
	t.Fatalf("stream still running after %d samples", limit)
	return total, peak
}

func TestOscillatorLengthAndRange(t *testing.T) {
	rate := beep.SampleRate(44100)
	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveNoise} {
		osc := NewOscillator(440, 100*time.Millisecond, wave, rate)
		total, peak := drain(t, osc, rate.N(time.Second))
		if total != rate.N(100*time.Millisecond) {
			t.Errorf("wave %d: streamed %d samples, want %d", wave, total, rate.N(100*time.Millisecond))
		}
		if peak > 1 {
			t.Errorf("wave %d: peak %v exceeds 1", wave, peak)
		}
	}
}

func TestEnvelopeFadesToSilence(t *testing.T) {
	rate := beep.SampleRate(1000)
	osc := NewOscillator(0, 100*time.Millisecond, WaveSquare, rate)
	env := NewEnvelope(osc, 100*time.Millisecond, 10*time.Millisecond, 50*time.Millisecond, rate)

	buf := make([][2]float64, 100)
	n, _ := env.Stream(buf)
	if n != 100 {
		t.Fatalf("streamed %d samples, want 100", n)
	}
	if buf[0][0] != 0 {
		t.Errorf("first sample = %v, want 0 at the start of the attack", buf[0][0])
	}
	if buf[30][0] != 1 {
		t.Errorf("sustain sample = %v, want 1", buf[30][0])
	}
	if v := buf[99][0]; v <= 0 || v > 0.05 {
		t.Errorf("last sample = %v, want a small positive tail", v)
	}
}

func TestSoundForEvents(t *testing.T) {
	rate := beep.SampleRate(8000)
	audible := []engine.EventKind{
		engine.EventFired,
		engine.EventEnemyDestroyed,
		engine.EventLifeLost,
		engine.EventStarted,
		engine.EventGameOver,
	}
	for _, kind := range audible {
		s := SoundFor(kind, rate)
		if s == nil {
			t.Fatalf("event %d has no sound", kind)
		}
		total, peak := drain(t, s, rate.N(2*time.Second))
		if total == 0 || peak == 0 {
			t.Errorf("event %d: %d samples, peak %v, want audible output", kind, total, peak)
		}
	}
	for _, kind := range []engine.EventKind{engine.EventPaused, engine.EventResumed} {
		if SoundFor(kind, rate) != nil {
			t.Errorf("event %d should be silent", kind)
		}
	}
}

func TestSoundManagerWithoutSpeaker(t *testing.T) {
	sm := NewSoundManager(log.New(io.Discard))
	// Without Initialize nothing is played and nothing panics.
	sm.Play(engine.Event{Kind: engine.EventFired})
	sm.Close()
}
