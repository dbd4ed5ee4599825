package loop

import (
	"github.com/tomz197/shooter/internal/engine"
	"github.com/tomz197/shooter/internal/input"
)

// applyInput turns one frame of terminal input into engine commands, in
// the order the keys arrived. The engine ignores the ones that do not apply
// to its current phase.
func (s *session) applyInput(in input.Input) {
	e := s.engine

	for _, k := range in.Keys {
		switch k {
		case input.KeyStart:
			e.Start()
		case input.KeyPause:
			e.TogglePause()
		case input.KeyLeft:
			e.MoveLeft()
		case input.KeyRight:
			e.MoveRight()
		case input.KeyFire:
			e.Fire()
		}
	}

	for _, m := range in.Mouse {
		x, _, ok := s.canvas.TerminalToLogical(m.Col, m.Row)
		if !ok {
			continue
		}
		switch {
		case m.Press:
			e.PointerPress(x)
		case m.Motion:
			e.PointerMove(x)
		}
	}
}

// playEvents drains the engine's events into the sound sink and the log.
func (s *session) playEvents() {
	for _, ev := range s.engine.Events() {
		switch ev.Kind {
		case engine.EventStarted:
			s.logger.Debug("run started")
		case engine.EventGameOver:
			s.logger.Info("game over", "score", ev.Score, "high", s.engine.HighScore())
		}
		if s.sound != nil {
			s.sound.Play(ev)
		}
	}
}
