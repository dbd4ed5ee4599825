// Package input turns raw terminal bytes into per-frame key and mouse input.
package input

import (
	"bufio"
	"bytes"
	"strconv"
	"sync"
)

// Key is one decoded game key.
type Key uint8

const (
	KeyLeft Key = iota + 1
	KeyRight
	KeyFire
	KeyPause
	KeyStart
)

// Input is everything the terminal sent since the previous frame.
// Keys keeps every press in arrival order, so auto-repeat of a held key
// yields several discrete commands.
type Input struct {
	Quit    bool
	Keys    []Key
	Mouse   []Mouse // In arrival order
	Pressed []byte  // Raw bytes consumed this frame
}

// Count returns how many times k was pressed.
func (in Input) Count(k Key) int {
	n := 0
	for _, got := range in.Keys {
		if got == k {
			n++
		}
	}
	return n
}

// Any reports whether the frame carried any input at all.
func (in Input) Any() bool {
	return len(in.Pressed) > 0
}

// Mouse is one SGR mouse report. Col and Row are 1-based terminal positions.
type Mouse struct {
	Col, Row int
	Press    bool // Left button went down
	Release  bool
	Motion   bool
}

// Stream delivers input bytes via a channel and keeps partial escape
// sequences between frames.
type Stream struct {
	ch      chan byte
	done    chan struct{}
	once    sync.Once
	pending []byte
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// The goroutine ends when r fails or after Close once the next byte arrives.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch:   make(chan byte, 128),
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			select {
			case s.ch <- b:
			case <-s.done:
				return
			}
		}
	}()
	return s
}

// Close stops delivering input. It is safe to call more than once.
func (s *Stream) Close() {
	s.once.Do(func() { close(s.done) })
}

// ReadInput drains all available bytes from the stream (non-blocking) and
// decodes them. The second result is false once the reader has ended.
func ReadInput(s *Stream) (Input, bool) {
	buf := s.pending
	s.pending = nil
	open := true

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				open = false
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in := s.decode(buf)
	return in, open
}

// decode parses buf. An escape sequence cut off at the end is kept for the
// next call.
func (s *Stream) decode(buf []byte) Input {
	var in Input

	i := 0
	for i < len(buf) {
		b := buf[i]
		if b == '\x1b' {
			n, complete := decodeEscape(buf[i:], &in)
			if !complete {
				s.pending = append(s.pending[:0], buf[i:]...)
				break
			}
			i += n
			continue
		}
		applyByte(&in, b)
		i++
	}

	in.Pressed = buf[:i]
	return in
}

// maxEscapeLen bounds how long an unfinished escape sequence may be held.
const maxEscapeLen = 32

// decodeEscape handles a sequence starting with ESC. It returns how many
// bytes were consumed, or complete=false when more bytes are needed.
// Arrow keys count whatever their modifiers, in both normal (ESC [) and
// application (ESC O) cursor mode.
func decodeEscape(buf []byte, in *Input) (n int, complete bool) {
	if len(buf) < 2 {
		return 0, false
	}
	switch buf[1] {
	case 'O':
		if len(buf) < 3 {
			return 0, false
		}
		applyArrow(in, buf[2])
		return 3, true
	case '[':
	default:
		return 1, true // Lone escape
	}
	if len(buf) < 3 {
		return 0, false
	}

	if buf[2] == '<' {
		end := bytes.IndexAny(buf[3:], "Mm")
		if end < 0 {
			if len(buf) > maxEscapeLen {
				return len(buf), true
			}
			return 0, false
		}
		if m, ok := parseSGRMouse(buf[3:3+end], buf[3+end] == 'm'); ok {
			in.Mouse = append(in.Mouse, m)
		}
		return 3 + end + 1, true
	}

	// CSI: parameter bytes 0x30-0x3F, intermediates 0x20-0x2F, one final
	// byte 0x40-0x7E.
	for i := 2; i < len(buf); i++ {
		switch c := buf[i]; {
		case c >= 0x20 && c <= 0x3f:
		case c >= 0x40 && c <= 0x7e:
			applyArrow(in, c)
			return i + 1, true
		default:
			return i, true // Malformed; drop what came before
		}
	}
	if len(buf) > maxEscapeLen {
		return len(buf), true
	}
	return 0, false
}

// applyArrow maps the final byte of a cursor key sequence.
func applyArrow(in *Input, final byte) {
	switch final {
	case 'C':
		in.Keys = append(in.Keys, KeyRight)
	case 'D':
		in.Keys = append(in.Keys, KeyLeft)
	}
}

// parseSGRMouse decodes the "b;x;y" body of an ESC [ < b ; x ; y M/m report.
func parseSGRMouse(body []byte, release bool) (Mouse, bool) {
	parts := bytes.Split(body, []byte{';'})
	if len(parts) != 3 {
		return Mouse{}, false
	}
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(string(p))
		if err != nil {
			return Mouse{}, false
		}
		vals[i] = v
	}

	button := vals[0]
	m := Mouse{Col: vals[1], Row: vals[2]}
	switch {
	case button&32 != 0:
		m.Motion = true
	case release:
		m.Release = true
	case button&3 == 0 && button&64 == 0:
		m.Press = true
	}
	return m, true
}

// applyByte maps a single key byte.
func applyByte(in *Input, b byte) {
	switch b {
	case 'q', 'Q', 0x03: // 0x03 is Ctrl-C in raw mode
		in.Quit = true
	case 'a', 'A', 'h', 'H':
		in.Keys = append(in.Keys, KeyLeft)
	case 'd', 'D', 'l', 'L':
		in.Keys = append(in.Keys, KeyRight)
	case ' ', 'w', 'W', 'k', 'K':
		in.Keys = append(in.Keys, KeyFire)
	case 'p', 'P':
		in.Keys = append(in.Keys, KeyPause)
	case '\r', '\n', 'r', 'R':
		in.Keys = append(in.Keys, KeyStart)
	}
}
