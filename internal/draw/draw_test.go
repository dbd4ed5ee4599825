package draw

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/tomz197/shooter/internal/physics"
)

func TestFillRectScalesToPixels(t *testing.T) {
	// 50x20 terminal shows a 500x400 playfield: 10 units per column, 10 per sub-pixel.
	c := NewScaledCanvas(50, 20, 500, 400)
	c.FillRect(physics.Rect{X: 230, Y: 360, W: 40, H: 20}, InkShip)

	for x := 23; x < 27; x++ {
		for y := 36; y < 38; y++ {
			if got := c.pixel(x, y); got != InkShip {
				t.Fatalf("pixel(%d,%d) = %v, want ship", x, y, got)
			}
		}
	}
	if got := c.pixel(22, 36); got != InkNone {
		t.Fatalf("pixel left of ship = %v, want none", got)
	}
	if got := c.pixel(27, 36); got != InkNone {
		t.Fatalf("pixel right of ship = %v, want none", got)
	}
}

func TestFillRectTinyStaysVisible(t *testing.T) {
	c := NewScaledCanvas(50, 20, 500, 400)
	c.FillRect(physics.Rect{X: 101, Y: 101, W: 2, H: 2}, InkSpark)
	if got := c.pixel(10, 10); got != InkSpark {
		t.Fatalf("pixel = %v, want spark", got)
	}
}

func TestFillRectClipsToCanvas(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.FillRect(physics.Rect{X: -50, Y: -50, W: 500, H: 500}, InkEnemy)
	for i, ink := range c.pixels {
		if ink != InkEnemy {
			t.Fatalf("pixel %d = %v, want enemy", i, ink)
		}
	}
}

func TestDrawLineHorizontalSpansCanvas(t *testing.T) {
	c := NewScaledCanvas(50, 20, 500, 400)
	c.DrawLine(Point{Y: 380}, Point{X: 500, Y: 380}, InkGround)

	for x := 0; x < 50; x++ {
		if got := c.pixel(x, 38); got != InkGround {
			t.Fatalf("pixel(%d,38) = %v, want ground", x, got)
		}
		if got := c.pixel(x, 37); got != InkNone {
			t.Fatalf("pixel(%d,37) = %v, want none", x, got)
		}
	}
}

func TestDrawLineDiagonal(t *testing.T) {
	c := NewScaledCanvas(50, 20, 500, 400)
	c.DrawLine(Point{X: 90, Y: 90}, Point{X: 0, Y: 0}, InkBullet)

	for i := 0; i < 10; i++ {
		if got := c.pixel(i, i); got != InkBullet {
			t.Fatalf("pixel(%d,%d) = %v, want bullet", i, i, got)
		}
	}
	if got := c.pixel(1, 0); got != InkNone {
		t.Fatalf("pixel(1,0) = %v, want none", got)
	}
}

func TestSetFloatScalesAndClips(t *testing.T) {
	c := NewScaledCanvas(50, 20, 500, 400)
	c.SetFloat(105, 215, InkSpark)
	if got := c.pixel(10, 21); got != InkSpark {
		t.Fatalf("pixel(10,21) = %v, want spark", got)
	}

	c.SetFloat(-1, 500, InkSpark)
	n := 0
	for _, ink := range c.pixels {
		if ink != InkNone {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("%d pixels set, want 1 (off-canvas point ignored)", n)
	}
}

func TestRenderOnlyChangedCells(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.FillRect(physics.Rect{X: 0, Y: 0, W: 10, H: 10}, InkBullet)

	var first bytes.Buffer
	c.Render(&first)
	if !strings.ContainsRune(first.String(), BlockUpperHalf) {
		t.Fatalf("first render missing upper half block: %q", first.String())
	}

	var second bytes.Buffer
	c.Render(&second)
	if strings.Contains(second.String(), "H") {
		t.Fatalf("unchanged render moved the cursor: %q", second.String())
	}

	c.ForceRedraw()
	var third bytes.Buffer
	c.Render(&third)
	if got := strings.Count(third.String(), "H"); got != 50 {
		t.Fatalf("forced render wrote %d cells, want 50", got)
	}
}

func TestRenderTwoColorCell(t *testing.T) {
	c := NewScaledCanvas(1, 1, 1, 2)
	c.setPixel(0, 0, InkShip)
	c.setPixel(0, 1, InkEnemy)

	var buf bytes.Buffer
	c.Render(&buf)
	want := "\033[0;38;5;46;48;5;221m▀"
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("render = %q, want it to contain %q", buf.String(), want)
	}
}

func TestTerminalToLogical(t *testing.T) {
	c := NewScaledCanvas(50, 20, 500, 400)
	c.SetOffset(3, 2)

	x, y, ok := c.TerminalToLogical(4+25, 3+10)
	if !ok {
		t.Fatal("point inside canvas reported outside")
	}
	if x != 255 || y != 210 {
		t.Fatalf("logical = (%v,%v), want (255,210)", x, y)
	}

	if _, _, ok := c.TerminalToLogical(3, 3); ok {
		t.Fatal("column in the left margin reported inside")
	}
	if _, _, ok := c.TerminalToLogical(4, 23); ok {
		t.Fatal("row below the canvas reported inside")
	}
}

func TestLogicalToTerminal(t *testing.T) {
	c := NewScaledCanvas(50, 20, 500, 400)
	col, row := c.LogicalToTerminal(250, 200)
	if col != 26 || row != 11 {
		t.Fatalf("terminal = (%d,%d), want (26,11)", col, row)
	}
}

func TestChunkWriterOffsetsAndFlush(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 1)
	cw.WriteAt(1, 1, "hi")
	if out.Len() != 0 {
		t.Fatal("ChunkWriter wrote before Flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "\033[2;3Hhi"; got != want {
		t.Fatalf("flushed %q, want %q", got, want)
	}
}

type countingWriter struct {
	writes int
	bytes.Buffer
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	if len(p) > maxChunkSize {
		return 0, io.ErrShortWrite
	}
	return w.Buffer.Write(p)
}

func TestChunkWriterSplitsLargeFrames(t *testing.T) {
	out := &countingWriter{}
	cw := NewChunkWriter(out, 0, 0)
	cw.Write(bytes.Repeat([]byte("x"), 2*maxChunkSize+10))
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if out.writes != 3 {
		t.Fatalf("writes = %d, want 3", out.writes)
	}
	if out.Len() != 2*maxChunkSize+10 {
		t.Fatalf("wrote %d bytes, want %d", out.Len(), 2*maxChunkSize+10)
	}

	if err := cw.Flush(); err != nil || out.writes != 3 {
		t.Fatalf("empty flush wrote: writes = %d, err = %v", out.writes, err)
	}
}
