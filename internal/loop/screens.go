package loop

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/shooter/internal/draw"
	"github.com/tomz197/shooter/internal/engine"
)

// styles holds the lipgloss styles for text drawn over the canvas.
type styles struct {
	hud    lipgloss.Style
	title  lipgloss.Style
	text   lipgloss.Style
	dim    lipgloss.Style
	accent lipgloss.Style
	panel  lipgloss.Style
}

// newStyles binds styles to w. Sessions write to PTYs that lipgloss cannot
// probe, so the color profile is fixed to 256 colors.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)

	return styles{
		hud:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("221")),
		text:   r.NewStyle().Foreground(lipgloss.Color("252")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("244")),
		accent: r.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			Align(lipgloss.Center),
	}
}

// paint draws a frame onto the canvas.
func paint(c *draw.Canvas, f *engine.Frame) {
	c.Clear()
	c.DrawLine(draw.Point{Y: f.GroundY}, draw.Point{X: f.Width, Y: f.GroundY}, draw.InkGround)
	c.FillRect(f.Ship, draw.InkShip)
	for _, b := range f.Bullets {
		c.FillRect(b, draw.InkBullet)
	}
	for _, e := range f.Enemies {
		c.FillRect(e, draw.InkEnemy)
	}
	for _, sp := range f.Sparks {
		ink := draw.InkSpark
		if sp.Alpha < 0.5 {
			ink = draw.InkSparkDim
		}
		// A spark is smaller than a cell; one sub-pixel at its center.
		x, y := sp.Rect.Center()
		c.SetFloat(x, y, ink)
	}
}

// drawFrame draws the current frame.
func (s *session) drawFrame(now time.Time) error {
	s.engine.FrameInto(&s.frame)

	// On phase or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	if s.frame.Phase != s.prevPhase || s.idle != s.wasIdle {
		draw.ClearScreen(s.chunkWriter)
		s.canvas.ForceRedraw()
		s.prevPhase = s.frame.Phase
		s.wasIdle = s.idle
	}

	paint(s.canvas, &s.frame)
	s.canvas.Render(s.chunkWriter)
	s.canvas.RenderBorder(s.chunkWriter)
	s.drawUI(now)

	return s.chunkWriter.Flush()
}

// drawUI draws the HUD and the overlay for the current phase.
func (s *session) drawUI(now time.Time) {
	termWidth := s.canvas.TerminalWidth()
	centerX := termWidth / 2
	centerY := s.canvas.TerminalHeight() / 2

	s.drawHUD()

	if s.idle {
		s.drawIdleScreen(centerX, centerY, now)
		return
	}

	switch s.frame.Phase {
	case engine.PhaseIdle:
		s.drawStartScreen(centerX, centerY, now)
	case engine.PhasePaused:
		s.drawPausedScreen(centerX, centerY)
	case engine.PhaseGameOver:
		s.drawGameOverScreen(centerX, centerY)
	}
}

// drawHUD writes score, best score and lives on the top row.
// Fields are fixed width so shrinking values leave no residue.
func (s *session) drawHUD() {
	f := &s.frame
	hud := fmt.Sprintf("Score: %-6d High: %-6d Lives: %s",
		f.Score, f.HighScore, lifeMarks(f.Lives, s.engine.Tuning().InitialLives))
	s.chunkWriter.WriteAt(2, 1, s.styles.hud.Render(hud))
}

// lifeMarks shows remaining lives as filled marks out of total.
func lifeMarks(lives, total int) string {
	lives = max(min(lives, total), 0)
	return strings.Repeat("♥", lives) + strings.Repeat("·", total-lives)
}

// writeCentered writes a possibly multi-line block centered on centerX,
// starting at row top.
func (s *session) writeCentered(centerX, top int, block string) {
	for i, line := range strings.Split(block, "\n") {
		col := max(centerX-lipgloss.Width(line)/2, 1)
		s.chunkWriter.WriteAt(col, top+i, line)
	}
}

func (s *session) drawStartScreen(centerX, centerY int, now time.Time) {
	st := s.styles
	lines := []string{
		st.title.Render("S P A C E   S H O O T E R"),
		"",
		st.text.Render("Stop the invaders before they reach the ground."),
		"",
		st.dim.Render("A D / < >  . . . . . Move"),
		st.dim.Render("SPACE / Click . . . . Fire"),
		st.dim.Render("P . . . . . . . . . Pause"),
		st.dim.Render("Q . . . . . . . . . . Quit"),
		"",
	}
	// Blinking start prompt, blanked with spaces since the screen is not
	// cleared every frame
	prompt := ">>  Press ENTER to Start  <<"
	if now.UnixMilli()/600%2 == 0 {
		lines = append(lines, st.accent.Render(prompt))
	} else {
		lines = append(lines, strings.Repeat(" ", len(prompt)))
	}
	block := strings.Join(lines, "\n")
	s.writeCentered(centerX, centerY-len(lines)/2, block)
}

func (s *session) drawPausedScreen(centerX, centerY int) {
	st := s.styles
	body := st.title.Render("PAUSED") + "\n" + st.dim.Render("Press P to resume")
	panel := st.panel.Render(body)
	s.writeCentered(centerX, centerY-lipgloss.Height(panel)/2, panel)
}

func (s *session) drawGameOverScreen(centerX, centerY int) {
	st := s.styles
	f := &s.frame
	lines := []string{
		st.title.Render("GAME OVER"),
		"",
		st.text.Render(fmt.Sprintf("Score: %d", f.Score)),
		st.text.Render(fmt.Sprintf("High:  %d", f.HighScore)),
	}
	if f.Score > 0 && f.Score >= f.HighScore {
		lines = append(lines, st.accent.Render("New high score!"))
	}
	lines = append(lines, "", st.dim.Render("ENTER or R to play again, Q to quit"))
	panel := st.panel.Render(strings.Join(lines, "\n"))
	s.writeCentered(centerX, centerY-lipgloss.Height(panel)/2, panel)
}

func (s *session) drawIdleScreen(centerX, centerY int, now time.Time) {
	st := s.styles
	left := max(s.idleTimeout-now.Sub(s.lastInput), 0)
	lines := []string{
		st.title.Render("STILL THERE?"),
		"",
		st.text.Render(fmt.Sprintf("Disconnecting in %d seconds.", int(left.Seconds()))),
		st.dim.Render("Press any key to stay"),
	}
	panel := st.panel.Render(strings.Join(lines, "\n"))
	s.writeCentered(centerX, centerY-lipgloss.Height(panel)/2, panel)
}
