package draw

import (
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// maxChunkSize keeps each write under a typical MTU.
const maxChunkSize = 1400

// ChunkWriter collects one frame of output (canvas cells, HUD, overlays)
// and sends it on Flush in writes of at most maxChunkSize bytes, which keeps
// SSH sessions from stalling on one huge packet. Positions passed to WriteAt
// are shifted by the canvas offset.
type ChunkWriter struct {
	w      io.Writer
	frame  []byte
	offCol int
	offRow int
}

// NewChunkWriter creates a ChunkWriter over w with the given canvas offset.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		w:      w,
		frame:  make([]byte, 0, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset moves the canvas origin, e.g. after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol, cw.offRow = offsetCol, offsetRow
}

// Write appends p to the frame.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	cw.frame = append(cw.frame, p...)
	return len(p), nil
}

// WriteAt appends s at 1-based canvas position col, row.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.frame = append(cw.frame, "\033["...)
	cw.frame = strconv.AppendInt(cw.frame, int64(row+cw.offRow), 10)
	cw.frame = append(cw.frame, ';')
	cw.frame = strconv.AppendInt(cw.frame, int64(col+cw.offCol), 10)
	cw.frame = append(cw.frame, 'H')
	cw.frame = append(cw.frame, s...)
}

// Flush sends the frame and starts a new one.
func (cw *ChunkWriter) Flush() error {
	data := cw.frame
	cw.frame = cw.frame[:0]
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := cw.w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// TermSizeFunc reports the terminal size in columns and rows.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc reads the size of the local terminal on stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// TermSize calls sizeFunc, or DefaultTermSizeFunc when it is nil.
func TermSize(sizeFunc TermSizeFunc) (width, height int, err error) {
	if sizeFunc == nil {
		sizeFunc = DefaultTermSizeFunc
	}
	return sizeFunc()
}

// Escape sequences the loop emits around a session.
const (
	seqClear      = "\033[H\033[2J"
	seqHideCursor = "\033[?25l"
	seqShowCursor = "\033[?25h"
	seqMouseOn    = "\033[?1003h\033[?1006h" // Any motion, SGR coordinates
	seqMouseOff   = "\033[?1006l\033[?1003l"
	seqResetStyle = "\033[0m"
)

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) { io.WriteString(w, seqClear) }

func HideCursor(w io.Writer) { io.WriteString(w, seqHideCursor) }

func ShowCursor(w io.Writer) { io.WriteString(w, seqShowCursor) }

// EnableMouse turns on mouse reporting; DisableMouse undoes it.
func EnableMouse(w io.Writer) { io.WriteString(w, seqMouseOn) }

func DisableMouse(w io.Writer) { io.WriteString(w, seqMouseOff) }

func ResetStyle(w io.Writer) { io.WriteString(w, seqResetStyle) }
