// Package draw renders the playfield to ANSI terminals with colored
// half-block characters.
package draw

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tomz197/shooter/internal/physics"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Ink is a palette index for a canvas pixel. InkNone leaves the pixel empty.
type Ink uint8

const (
	InkNone Ink = iota
	InkShip
	InkBullet
	InkEnemy
	InkSpark
	InkSparkDim
	InkGround
	inkCount
)

// palette maps inks to xterm-256 color numbers.
var palette = [inkCount]int{
	InkNone:     0,
	InkShip:     46,  // Lime
	InkBullet:   203, // Light red
	InkEnemy:    221, // Amber
	InkSpark:    231, // White
	InkSparkDim: 245, // Grey
	InkGround:   236, // Dark grey
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// cell is what one terminal character shows: the upper and lower sub-pixel.
type cell struct {
	top, bottom Ink
}

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels.
// Render only rewrites cells that changed since the previous Render.
type Canvas struct {
	termWidth      int   // Actual terminal columns
	termHeight     int   // Actual terminal rows
	subPixelHeight int   // termHeight * 2
	pixels         []Ink // Flat slice: [y * termWidth + x]
	shown          []cell
	redraw         bool // Next Render rewrites every cell

	// Logical coordinate space mapped onto the pixels
	logicalWidth  float64
	logicalHeight float64

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by the playfield.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 1)
	termHeight = max(termHeight, 1)
	if termWidth == c.termWidth && termHeight == c.termHeight {
		return
	}

	subPixelHeight := termHeight * 2
	c.pixels = make([]Ink, subPixelHeight*termWidth)
	c.shown = make([]cell, termHeight*termWidth)
	c.termWidth = termWidth
	c.termHeight = termHeight
	c.subPixelHeight = subPixelHeight
	c.redraw = true
}

// toPixelX scales a logical x to pixel space.
func (c *Canvas) toPixelX(x float64) float64 {
	return x * float64(c.termWidth) / c.logicalWidth
}

func (c *Canvas) toPixelY(y float64) float64 {
	return y * float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.redraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// ForceRedraw makes the next Render rewrite every cell, e.g. after the
// terminal was cleared.
func (c *Canvas) ForceRedraw() {
	c.redraw = true
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, ink Ink) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = ink
	}
}

// pixel returns the ink at actual terminal coordinates.
func (c *Canvas) pixel(x, y int) Ink {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return InkNone
	}
	return c.pixels[y*c.termWidth+x]
}

// SetFloat sets a pixel using float logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64, ink Ink) {
	px := int(math.Floor(c.toPixelX(x)))
	py := int(math.Floor(c.toPixelY(y)))
	c.setPixel(px, py, ink)
}

// FillRect paints a logical rectangle. Any non-empty rectangle covers at
// least one pixel so small objects stay visible at low resolutions.
func (c *Canvas) FillRect(r physics.Rect, ink Ink) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	x0 := int(math.Floor(c.toPixelX(r.X)))
	y0 := int(math.Floor(c.toPixelY(r.Y)))
	x1 := max(int(math.Ceil(c.toPixelX(r.Right()))), x0+1)
	y1 := max(int(math.Ceil(c.toPixelY(r.Bottom()))), y0+1)

	x0, x1 = max(x0, 0), min(x1, c.termWidth)
	y0, y1 = max(y0, 0), min(y1, c.subPixelHeight)
	for y := y0; y < y1; y++ {
		row := c.pixels[y*c.termWidth : (y+1)*c.termWidth]
		for x := x0; x < x1; x++ {
			row[x] = ink
		}
	}
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, ink Ink) {
	x1 := int(math.Floor(c.toPixelX(p1.X)))
	y1 := int(math.Floor(c.toPixelY(p1.Y)))
	x2 := int(math.Floor(c.toPixelX(p2.X)))
	y2 := int(math.Floor(c.toPixelY(p2.Y)))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, ink)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// Render writes the cells that changed since the last Render using colored
// half-block characters. The upper sub-pixel is the foreground color, the
// lower one the background.
func (c *Canvas) Render(w io.Writer) {
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			next := cell{top: c.pixels[topOffset+col], bottom: c.pixels[bottomOffset+col]}
			idx := row*c.termWidth + col
			if !c.redraw && c.shown[idx] == next {
				continue
			}
			c.shown[idx] = next

			fmt.Fprintf(w, "\033[%d;%dH", row+1+c.offsetRow, col+1+c.offsetCol)
			writeCell(w, next)
		}
	}
	io.WriteString(w, "\033[0m")
	c.redraw = false
}

// writeCell writes one styled character. Styles are reset afterwards so
// text overlays are not tinted.
func writeCell(w io.Writer, cl cell) {
	switch {
	case cl.top == InkNone && cl.bottom == InkNone:
		io.WriteString(w, "\033[0m ")
	case cl.top == cl.bottom:
		fmt.Fprintf(w, "\033[0;38;5;%dm%c", palette[cl.top], BlockFull)
	case cl.bottom == InkNone:
		fmt.Fprintf(w, "\033[0;38;5;%dm%c", palette[cl.top], BlockUpperHalf)
	case cl.top == InkNone:
		fmt.Fprintf(w, "\033[0;38;5;%dm%c", palette[cl.bottom], BlockLowerHalf)
	default:
		fmt.Fprintf(w, "\033[0;38;5;%d;48;5;%dm%c", palette[cl.top], palette[cl.bottom], BlockUpperHalf)
	}
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
// Draws horizontal borders when there is vertical offset, vertical borders
// when there is horizontal offset, and corners when both are present.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	line := strings.Repeat("─", c.termWidth)
	if hasV {
		if hasH {
			fmt.Fprintf(w, "\033[%d;%dH┌%s┐", top, left, line)
			fmt.Fprintf(w, "\033[%d;%dH└%s┘", bottom, left, line)
		} else {
			fmt.Fprintf(w, "\033[%d;%dH%s", top, c.offsetCol+1, line)
			fmt.Fprintf(w, "\033[%d;%dH%s", bottom, c.offsetCol+1, line)
		}
	}

	if hasH {
		startRow := top + 1
		endRow := bottom
		if !hasV {
			// No horizontal borders, side bars span full canvas height
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			fmt.Fprintf(w, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}
}

// LogicalWidth returns the logical width (target resolution).
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height (target resolution).
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a 1-based canvas position (col, row).
// This is useful for placing text overlays at positions matching canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Floor(c.toPixelX(x)))
	py := int(math.Floor(c.toPixelY(y)))
	return px + 1, py/2 + 1
}

// TerminalToLogical converts a 1-based absolute terminal position, as
// reported by mouse events, to the logical point at the center of that cell.
// ok is false when the position lies outside the canvas area.
func (c *Canvas) TerminalToLogical(col, row int) (x, y float64, ok bool) {
	px := col - 1 - c.offsetCol
	cy := row - 1 - c.offsetRow
	if px < 0 || px >= c.termWidth || cy < 0 || cy >= c.termHeight {
		return 0, 0, false
	}
	x = (float64(px) + 0.5) * c.logicalWidth / float64(c.termWidth)
	y = float64(cy*2+1) * c.logicalHeight / float64(c.subPixelHeight)
	return x, y, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
