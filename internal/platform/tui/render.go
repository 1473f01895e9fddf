package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilejump/internal/core"
	"github.com/vovakirdan/tilejump/internal/game"
	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/player"
	"github.com/vovakirdan/tilejump/internal/tile"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:   lipgloss.NewStyle(),
	core.ColorGround:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorObject:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorWall:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	core.ColorSpawn:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
	core.ColorFinish:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	core.ColorBounce:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorPlayer:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	core.ColorPlayerAir: lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	core.ColorHUD:       lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
	core.ColorDim:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	core.ColorAlert:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Adjacent cells of the same color share one style run.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		x := 0
		for x < s.Width() {
			color := s.Get(x, y).Color
			var run strings.Builder
			for x < s.Width() {
				cell := s.Get(x, y)
				if cell.Color != color {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}
			style, ok := colorStyles[color]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// Glyph returns the rune and color a tile is drawn with. Spawn markers and
// invisible walls only show in the editor.
func Glyph(t tile.Type, editor bool) (rune, core.Color) {
	switch {
	case t == tile.Empty:
		return ' ', core.ColorDefault
	case t == tile.Spawn:
		if editor {
			return 'S', core.ColorSpawn
		}
		return ' ', core.ColorDefault
	case t == tile.Finish:
		return 'F', core.ColorFinish
	case t == tile.Bounce:
		return '^', core.ColorBounce
	case t == tile.InvisibleWall:
		if editor {
			return '░', core.ColorWall
		}
		return ' ', core.ColorDefault
	case t.IsObstacle():
		return '█', core.ColorGround
	case t.IsObject():
		return '"', core.ColorObject
	default:
		return '?', core.ColorAlert
	}
}

// spriteFrames holds the glyph of every animation frame per sprite name.
var spriteFrames = map[string][]rune{
	player.AnimIdle + "Right":   {'@'},
	player.AnimIdle + "Left":    {'@'},
	player.AnimWalk + "Right":   {'>', ')'},
	player.AnimWalk + "Left":    {'<', '('},
	player.AnimJump + "Right":   {'/'},
	player.AnimJump + "Left":    {'\\'},
	player.AnimBounce + "Right": {'*'},
	player.AnimBounce + "Left":  {'*'},
}

func frameCount(name string) int { return len(spriteFrames[name]) }

// Renderer draws session frames into a screen: a HUD row on top and a
// window of the active level below it, one cell per tile.
type Renderer struct {
	screen *core.Screen
	frames int

	view       core.Rect // map area of the last frame
	originX    int       // first visible tile column
	originY    int       // first visible tile row
	mapW, mapH int
}

// NewRenderer creates a renderer drawing into screen.
func NewRenderer(screen *core.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Screen returns the target buffer.
func (r *Renderer) Screen() *core.Screen { return r.screen }

// Frames returns how many frames were rendered.
func (r *Renderer) Frames() int { return r.frames }

// Render implements game.Renderer.
func (r *Renderer) Render(f game.Frame) {
	r.frames++
	r.screen.Clear()
	if f.Map == nil || f.Map.LevelCount() == 0 {
		r.screen.DrawTextCentered(r.screen.Height()/2, "no map loaded", core.ColorDim)
		return
	}

	view := core.NewRect(0, 1, r.screen.Width(), r.screen.Height()-1)
	x0, y0 := r.window(f, view)
	r.view, r.originX, r.originY = view, x0, y0
	r.mapW, r.mapH = f.Map.Width(), f.Map.Height()
	r.drawTiles(f.Map, view, x0, y0)
	if f.Player != nil && f.State != game.StateEditor {
		r.drawPlayer(f, view, x0, y0)
	}
	r.drawHUD(f)
}

// TileAt maps a screen cell of the last frame to its tile.
func (r *Renderer) TileAt(sx, sy int) (int, int, bool) {
	if !r.view.Contains(sx, sy) {
		return 0, 0, false
	}
	tx, ty := r.originX+sx-r.view.X, r.originY+sy-r.view.Y
	if tx >= r.mapW || ty >= r.mapH {
		return 0, 0, false
	}
	return tx, ty, true
}

// window returns the first tile column and row of the viewport, centered
// on the camera.
func (r *Renderer) window(f game.Frame, view core.Rect) (int, int) {
	m := f.Map
	cx := m.TileX(f.CameraX + f.CameraW/2)
	cy := m.TileY(f.CameraY + f.CameraH/2)
	return core.Window(cx, view.W, m.Width()), core.Window(cy, view.H, m.Height())
}

func (r *Renderer) drawTiles(m *level.Map, view core.Rect, x0, y0 int) {
	editor := m.Mode() == level.EditorMode
	for sy := 0; sy < view.H; sy++ {
		for sx := 0; sx < view.W; sx++ {
			t, err := m.TileAt(x0+sx, y0+sy)
			if err != nil {
				continue
			}
			ch, color := Glyph(t.Type, editor)
			r.screen.Set(view.X+sx, view.Y+sy, ch, color)
		}
	}
}

func (r *Renderer) drawPlayer(f game.Frame, view core.Rect, x0, y0 int) {
	p, m := f.Player, f.Map
	tx := m.TileX(p.X + p.Width()/2)
	ty := m.TileY(p.Y + p.Height()/2)

	sp := p.Animate(f.Number, frameCount)
	glyphs := spriteFrames[sp.Name]
	ch := '@'
	if sp.Frame < len(glyphs) {
		ch = glyphs[sp.Frame]
	}
	color := core.ColorPlayer
	if !p.OnGround {
		color = core.ColorPlayerAir
	}
	r.screen.Set(view.X+tx-x0, view.Y+ty-y0, ch, color)
}

// drawHUD writes the map name and level on the left and the run time on
// the right. On narrow screens the mode goes first, then the timer; the
// left text is clipped to the screen width.
func (r *Renderer) drawHUD(f game.Frame) {
	m := f.Map
	name := m.Name
	if name == "" {
		name = "untitled"
	}
	w := r.screen.Width()
	right := FormatTime(f.PassedTime) + " "
	left := fmt.Sprintf(" %s  level %d/%d", name, m.ActiveLevel()+1, m.LevelCount())
	if f.Player != nil {
		if withMode := left + "  " + f.Player.Mode.String(); hudWidth(withMode) <= w-len(right)-1 {
			left = withMode
		}
	}
	if hudWidth(left) > w-len(right)-1 {
		right = ""
	}
	if rs := []rune(left); len(rs) > w {
		left = string(rs[:w])
	}
	r.screen.DrawText(0, 0, left, core.ColorHUD)
	if right != "" {
		r.screen.DrawText(w-len(right), 0, right, core.ColorHUD)
	}
}

func hudWidth(s string) int { return len([]rune(s)) }

// FormatTime renders a run time in ms as m:ss.mmm.
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}
