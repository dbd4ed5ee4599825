// Package desktop runs the engine in an ebiten window.
package desktop

import (
	"fmt"
	"image/color"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/tomz197/shooter/internal/engine"
	"github.com/tomz197/shooter/internal/physics"
)

var (
	colorBackground = color.RGBA{0x05, 0x05, 0x10, 0xff}
	colorGround     = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorShip       = color.RGBA{0x00, 0xff, 0x00, 0xff}
	colorShipPaused = color.RGBA{0x2a, 0xff, 0x2a, 0xff}
	colorBullet     = color.RGBA{0xff, 0x55, 0x55, 0xff}
	colorEnemy      = color.RGBA{0xff, 0xd5, 0x4a, 0xff}
	colorShade      = color.RGBA{0x00, 0x00, 0x00, 0x66}
)

// Key auto-repeat, in ticks.
const (
	repeatDelay    = 15
	repeatInterval = 4
)

// Sound receives gameplay events after every tick.
type Sound interface {
	Play(ev engine.Event)
}

// Game adapts an engine to ebiten.Game. ebiten calls Update and Draw from
// one goroutine, which makes it the engine's only owner.
type Game struct {
	engine *engine.Engine
	frame  engine.Frame
	sound  Sound
	logger *log.Logger

	cmds             []engine.Command
	cursorX, cursorY int
	touchIDs         []ebiten.TouchID
}

// New wraps eng. sound may be nil.
func New(eng *engine.Engine, sound Sound, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}
	return &Game{engine: eng, sound: sound, logger: logger}
}

// Update reads input, applies it, and advances the engine by one tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.cmds = g.readInput(g.cmds[:0])
	for _, c := range g.cmds {
		if err := g.engine.Apply(c); err != nil {
			g.logger.Debug("ignoring command", "err", err)
		}
	}

	g.engine.Step(time.Second / time.Duration(ebiten.TPS()))

	for _, ev := range g.engine.Events() {
		if ev.Kind == engine.EventGameOver {
			g.logger.Info("game over", "score", ev.Score, "high", g.engine.HighScore())
		}
		if g.sound != nil {
			g.sound.Play(ev)
		}
	}
	return nil
}

// repeating reports a key press plus auto-repeat while it stays held.
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0)
}

// readInput translates this tick's keyboard, mouse and touch input into
// commands. Layout makes cursor and touch positions playfield units.
func (g *Game) readInput(cmds []engine.Command) []engine.Command {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyR) {
		cmds = append(cmds, engine.Command{Op: engine.OpStart})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		cmds = append(cmds, engine.Command{Op: engine.OpPause})
	}
	if repeating(ebiten.KeyArrowLeft) || repeating(ebiten.KeyA) {
		cmds = append(cmds, engine.Command{Op: engine.OpLeft})
	}
	if repeating(ebiten.KeyArrowRight) || repeating(ebiten.KeyD) {
		cmds = append(cmds, engine.Command{Op: engine.OpRight})
	}
	if repeating(ebiten.KeySpace) || repeating(ebiten.KeyArrowUp) {
		cmds = append(cmds, engine.Command{Op: engine.OpFire})
	}

	// The pointer only steers when it moves, so a resting mouse does not
	// fight the keyboard.
	x, y := ebiten.CursorPosition()
	if x != g.cursorX || y != g.cursorY {
		g.cursorX, g.cursorY = x, y
		cmds = append(cmds, engine.Command{Op: engine.OpPointer, X: float64(x)})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		cmds = append(cmds, engine.Command{Op: engine.OpPress, X: float64(x)})
	}

	g.touchIDs = inpututil.AppendJustPressedTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		tx, _ := ebiten.TouchPosition(id)
		cmds = append(cmds, engine.Command{Op: engine.OpPress, X: float64(tx)})
	}
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		tx, _ := ebiten.TouchPosition(id)
		cmds = append(cmds, engine.Command{Op: engine.OpPointer, X: float64(tx)})
	}
	return cmds
}

func fillRect(dst *ebiten.Image, r physics.Rect, clr color.Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), clr, false)
}

// Draw paints the current frame.
func (g *Game) Draw(screen *ebiten.Image) {
	g.engine.FrameInto(&g.frame)
	f := &g.frame

	screen.Fill(colorBackground)
	vector.StrokeLine(screen, 0, float32(f.GroundY), float32(f.Width), float32(f.GroundY), 1, colorGround, false)

	shipColor := colorShip
	if f.Paused {
		shipColor = colorShipPaused
	}
	fillRect(screen, f.Ship, shipColor)
	for _, b := range f.Bullets {
		fillRect(screen, b, colorBullet)
	}
	for _, e := range f.Enemies {
		fillRect(screen, e, colorEnemy)
	}
	for _, sp := range f.Sparks {
		a := uint8(sp.Alpha * 0xff)
		fillRect(screen, sp.Rect, color.RGBA{a, a, a, a}) // Premultiplied white
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Score: %d", f.Score), 10, 6)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("High: %d", f.HighScore), 100, 6)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Lives: %d", f.Lives), 190, 6)

	switch f.Phase {
	case engine.PhaseIdle:
		g.drawOverlay(screen, "SPACE SHOOTER", "Enter to start, arrows or mouse to move, space or click to fire")
	case engine.PhasePaused:
		g.drawOverlay(screen, "Paused", "P to resume")
	case engine.PhaseGameOver:
		g.drawOverlay(screen, "Game Over", fmt.Sprintf("Score %d, high %d. Enter to play again", f.Score, f.HighScore))
	}
}

// debugCharWidth is the advance of ebitenutil's debug font.
const debugCharWidth = 6

func (g *Game) drawOverlay(screen *ebiten.Image, title, hint string) {
	f := &g.frame
	fillRect(screen, physics.Rect{W: f.Width, H: f.Height}, colorShade)
	cx := int(f.Width / 2)
	cy := int(f.Height / 2)
	ebitenutil.DebugPrintAt(screen, title, cx-len(title)*debugCharWidth/2, cy-16)
	ebitenutil.DebugPrintAt(screen, hint, cx-len(hint)*debugCharWidth/2, cy+4)
}

// Layout fixes the logical screen to the playfield; ebiten scales it to the
// window and maps cursor positions back.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	t := g.engine.Tuning()
	return int(t.Width), int(t.Height)
}
