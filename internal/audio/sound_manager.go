// Package audio synthesizes short sound effects for engine events and plays
// them through the system speaker.
package audio

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"

	"github.com/tomz197/shooter/internal/engine"
)

const sampleRate = beep.SampleRate(44100)

// maxVoices caps simultaneous effects so rapid fire cannot pile up.
const maxVoices = 8

// SoundManager plays engine events through the speaker. Before Initialize
// succeeds every Play is a no-op, so the game runs the same without a
// sound device.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	logger      *log.Logger
	initialized bool
}

// NewSoundManager creates a silent manager.
func NewSoundManager(logger *log.Logger) *SoundManager {
	if logger == nil {
		logger = log.Default()
	}
	return &SoundManager{
		mixer:  &beep.Mixer{},
		logger: logger.WithPrefix("audio"),
	}
}

// Initialize opens the speaker. Calling it again after success is a no-op.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return errors.Wrap(err, "init speaker")
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	sm.logger.Debug("speaker ready", "rate", int(sampleRate))
	return nil
}

// Play starts the effect for ev, if it has one.
func (sm *SoundManager) Play(ev engine.Event) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	s := SoundFor(ev.Kind, sampleRate)
	if s == nil {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()
	if sm.mixer.Len() >= maxVoices {
		return
	}
	sm.mixer.Add(s)
}

// Close silences everything and releases the speaker.
func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}
