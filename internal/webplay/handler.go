// Package webplay serves game sessions over websockets. Each connection gets
// its own engine; the browser sends commands and draws the frames it receives.
package webplay

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/shooter/internal/config"
	"github.com/tomz197/shooter/internal/engine"
)

const (
	readLimit    = 4 << 10 // Commands are tiny
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Store  engine.ScoreStore
	Tuning config.Tuning
	Seed   int64 // Zero seeds each session from the clock
	Logger *log.Logger
	// CheckOrigin overrides the same-origin check, e.g. for local development.
	CheckOrigin func(r *http.Request) bool
}

// Server upgrades requests to websockets and runs one session per connection.
type Server struct {
	opts     Options
	logger   *log.Logger
	upgrader websocket.Upgrader
	nextID   atomic.Int64
	active   atomic.Int64
}

// NewServer creates a websocket game handler.
func NewServer(opts Options) *Server {
	if opts.Tuning == (config.Tuning{}) {
		opts.Tuning = config.DefaultTuning()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		opts:   opts,
		logger: logger.WithPrefix("webplay"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
	}
}

// Active returns the number of connected sessions.
func (s *Server) Active() int64 {
	return s.active.Load()
}

func (s *Server) newEngine(id int64) *engine.Engine {
	seed := s.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return engine.New(s.opts.Store, rand.New(rand.NewSource(seed+id)),
		engine.WithTuning(s.opts.Tuning),
		engine.WithLogger(s.logger),
	)
}

// ServeHTTP upgrades the request and plays until either side closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	conn := &wsConn{ws: ws}
	defer conn.Close()

	id := s.nextID.Add(1)
	logger := s.logger.With("session", id, "remote", r.RemoteAddr)
	s.active.Add(1)
	defer s.active.Add(-1)
	logger.Info("session started")
	defer logger.Info("session ended")

	// Basic timeouts + pong handling (keeps connections healthy)
	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := NewSession(s.newEngine(id), conn, logger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		if err := sess.Run(ctx); err != nil {
			logger.Debug("session stopped", "err", err)
		}
		// Unblocks the read loop below.
		conn.Close()
	}()
	go func() {
		defer wg.Done()
		pingLoop(ctx, ws)
	}()

	s.readLoop(ws, sess, logger)
	cancel()
	wg.Wait()
}

// readLoop decodes commands until the connection fails.
func (s *Server) readLoop(ws *websocket.Conn, sess *Session, logger *log.Logger) {
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("read failed", "err", err)
			}
			return
		}
		env, err := DecodeEnvelope(msg)
		if err != nil {
			logger.Debug("bad message", "err", err)
			continue
		}
		if env.T != MsgCommand {
			continue
		}
		cmd, err := DecodePayload[engine.Command](env)
		if err != nil {
			logger.Debug("bad command", "err", err)
			continue
		}
		if !sess.Submit(cmd) {
			logger.Debug("command dropped", "op", cmd.Op)
		}
	}
}

// pingLoop keeps the read deadline alive on idle connections.
func pingLoop(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// wsConn adapts a websocket to Conn. Only the session goroutine sends data
// messages; pings use WriteControl, which may run concurrently.
type wsConn struct {
	ws   *websocket.Conn
	once sync.Once
	err  error
}

func (c *wsConn) Send(b []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) Close() error {
	c.once.Do(func() {
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.err = c.ws.Close()
	})
	return c.err
}
