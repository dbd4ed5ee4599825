package webplay

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/tomz197/shooter/internal/engine"
)

// Conn is the outbound half of a client connection.
type Conn interface {
	Send([]byte) error
	Close() error
}

// inboxSize bounds queued commands; a client flooding faster than the
// tick rate loses the excess.
const inboxSize = 64

// Session owns one engine. Only Run's goroutine touches it; other
// goroutines hand over commands with Submit.
type Session struct {
	engine *engine.Engine
	conn   Conn
	logger *log.Logger
	inbox  chan engine.Command
	msg    FrameMessage
}

// NewSession pairs an engine with a connection.
func NewSession(eng *engine.Engine, conn Conn, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		engine: eng,
		conn:   conn,
		logger: logger,
		inbox:  make(chan engine.Command, inboxSize),
	}
}

// Submit queues a command without blocking. It reports false when the
// queue is full and the command was dropped.
func (s *Session) Submit(c engine.Command) bool {
	select {
	case s.inbox <- c:
		return true
	default:
		return false
	}
}

// Run sends the welcome, then ticks until ctx ends or a send fails.
func (s *Session) Run(ctx context.Context) error {
	t := s.engine.Tuning()
	welcome, err := Encode(MsgWelcome, Welcome{
		Width:     t.Width,
		Height:    t.Height,
		TickHz:    TickHz,
		HighScore: s.engine.HighScore(),
	})
	if err != nil {
		return err
	}
	if err := s.conn.Send(welcome); err != nil {
		return errors.Wrap(err, "send welcome")
	}

	ticker := time.NewTicker(time.Second / TickHz)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-s.inbox:
			if err := s.engine.Apply(c); err != nil {
				s.logger.Debug("ignoring command", "err", err)
			}
		case now := <-ticker.C:
			s.engine.Advance(now)
			if err := s.sendFrame(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) sendFrame() error {
	s.engine.FrameInto(&s.msg.Frame)
	s.msg.Events = s.msg.Events[:0]
	for _, ev := range s.engine.Events() {
		if ev.Kind == engine.EventGameOver {
			s.logger.Info("game over", "score", ev.Score, "high", s.engine.HighScore())
		}
		s.msg.Events = append(s.msg.Events, ev.Kind)
	}

	b, err := Encode(MsgFrame, &s.msg)
	if err != nil {
		return err
	}
	return errors.Wrap(s.conn.Send(b), "send frame")
}
