package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/tomz197/shooter/internal/engine"
)

// WaveType defines oscillator wave shapes.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a raw wave whose frequency slides linearly from
// freq to endFreq over its duration.
type oscillator struct {
	freq     float64
	endFreq  float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *rand.Rand
}

// NewOscillator creates a fixed-pitch oscillator.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewSweep(freq, freq, duration, wave, rate)
}

// NewSweep creates an oscillator gliding from freq to endFreq.
func NewSweep(freq, endFreq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		endFreq:  endFreq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      rand.New(rand.NewSource(int64(freq*1000) + int64(duration))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		progress := float64(o.position) / float64(o.duration)
		freq := o.freq + (o.endFreq-o.freq)*progress
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase) // Keep in [0, 1)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream.
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope shapes s, which should last duration, with an attack ramp and a release fade.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:       s,
		attackSamples:  rate.N(attack),
		releaseSamples: rate.N(release),
		totalSamples:   rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if remaining := e.totalSamples - e.position; remaining < e.releaseSamples {
			vol = min(vol, float64(remaining)/float64(e.releaseSamples))
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly. math.Log2(0) is -Inf, so zero is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// tone is a shaped oscillator.
func tone(freq, endFreq float64, d time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	osc := NewSweep(freq, endFreq, d, wave, rate)
	return NewEnvelope(osc, d, 5*time.Millisecond, d/2, rate)
}

// CreateShotSound is a short descending square chirp.
func CreateShotSound(rate beep.SampleRate) beep.Streamer {
	return newVolume(tone(1200, 600, 70*time.Millisecond, WaveSquare, rate), 0.15)
}

// CreateExplosionSound is a burst of noise over a low rumble.
func CreateExplosionSound(rate beep.SampleRate) beep.Streamer {
	d := 250 * time.Millisecond
	noise := NewEnvelope(NewOscillator(0, d, WaveNoise, rate), d, 2*time.Millisecond, 200*time.Millisecond, rate)
	rumble := tone(90, 50, d, WaveSine, rate)
	return newVolume(beep.Mix(newVolume(noise, 0.6), newVolume(rumble, 0.5)), 0.4)
}

// CreateLifeLostSound is a falling saw buzz.
func CreateLifeLostSound(rate beep.SampleRate) beep.Streamer {
	return newVolume(tone(220, 110, 300*time.Millisecond, WaveSaw, rate), 0.25)
}

// CreateStartSound is a rising two-note square chime.
func CreateStartSound(rate beep.SampleRate) beep.Streamer {
	return newVolume(beep.Seq(
		tone(523.25, 523.25, 90*time.Millisecond, WaveSquare, rate),
		tone(783.99, 783.99, 140*time.Millisecond, WaveSquare, rate),
	), 0.15)
}

// CreateGameOverSound is a descending three-note sine phrase.
func CreateGameOverSound(rate beep.SampleRate) beep.Streamer {
	return newVolume(beep.Seq(
		tone(392, 392, 180*time.Millisecond, WaveSine, rate),
		tone(311.13, 311.13, 180*time.Millisecond, WaveSine, rate),
		tone(261.63, 196, 400*time.Millisecond, WaveSine, rate),
	), 0.35)
}

// SoundFor returns the effect for an engine event, or nil for silent events.
func SoundFor(kind engine.EventKind, rate beep.SampleRate) beep.Streamer {
	switch kind {
	case engine.EventFired:
		return CreateShotSound(rate)
	case engine.EventEnemyDestroyed:
		return CreateExplosionSound(rate)
	case engine.EventLifeLost:
		return CreateLifeLostSound(rate)
	case engine.EventStarted:
		return CreateStartSound(rate)
	case engine.EventGameOver:
		return CreateGameOverSound(rate)
	default:
		return nil
	}
}
