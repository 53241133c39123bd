// Package terminal renders the warehouse minimap in a text terminal and
// turns terminal key presses into key events.
package terminal

import (
	"context"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/bookistos/warehouse-simulator/internal/core/pose"
	"github.com/bookistos/warehouse-simulator/internal/input"
	"github.com/bookistos/warehouse-simulator/internal/ui/hud"
	"github.com/bookistos/warehouse-simulator/internal/view"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

const (
	// Terminals report no key releases, only presses and auto-repeat. A key
	// is released once no repeat has arrived for this long.
	DefaultReleaseAfter = 150 * time.Millisecond

	frameInterval = 16 * time.Millisecond
	cellWidth     = 2
	originX       = 1
	originY       = 1
)

// Viewer draws the minimap into a tcell screen and acts as an input.Source.
type Viewer struct {
	input.Dispatcher

	screen  tcell.Screen
	world   *warehouse.Map
	minimap view.Minimap
	legend  []warehouse.LegendEntry

	ReleaseAfter time.Duration

	mu       sync.Mutex
	lastSeen map[input.Key]time.Time
}

// NewViewer creates a viewer for an initialized screen.
func NewViewer(screen tcell.Screen, m *warehouse.Map) *Viewer {
	return &Viewer{
		screen:       screen,
		world:        m,
		minimap:      view.NewMinimap(m, 1),
		legend:       m.Legend(),
		ReleaseAfter: DefaultReleaseAfter,
		lastSeen:     make(map[input.Key]time.Time),
	}
}

// HandleEvent processes one terminal event. It returns false when the user
// asked to quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}

		key, ok := arrowKey(ev.Key())
		if !ok {
			return true
		}
		mods := ev.Modifiers()
		v.modifier(input.KeyShiftLeft, mods&tcell.ModShift != 0, ev.When())
		v.modifier(input.KeyMetaLeft, mods&(tcell.ModAlt|tcell.ModMeta) != 0, ev.When())
		v.press(key, ev.When())

	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// Sweep releases every key with no repeat since now minus ReleaseAfter.
func (v *Viewer) Sweep(now time.Time) {
	var released []input.Key
	v.mu.Lock()
	for k, seen := range v.lastSeen {
		if now.Sub(seen) >= v.ReleaseAfter {
			delete(v.lastSeen, k)
			released = append(released, k)
		}
	}
	v.mu.Unlock()

	for _, k := range released {
		v.KeyUp(k)
	}
}

// ReleaseAll releases every key the viewer reported as held.
func (v *Viewer) ReleaseAll() {
	v.Sweep(time.Now().Add(v.ReleaseAfter + time.Hour))
}

func (v *Viewer) press(k input.Key, at time.Time) {
	v.mu.Lock()
	_, held := v.lastSeen[k]
	v.lastSeen[k] = at
	v.mu.Unlock()

	if !held {
		v.KeyDown(k)
	}
}

// modifier tracks a modifier from the state carried on each key event, so
// it is released as soon as an arrow arrives without it.
func (v *Viewer) modifier(k input.Key, down bool, at time.Time) {
	if down {
		v.press(k, at)
		return
	}

	v.mu.Lock()
	_, held := v.lastSeen[k]
	delete(v.lastSeen, k)
	v.mu.Unlock()

	if held {
		v.KeyUp(k)
	}
}

func arrowKey(k tcell.Key) (input.Key, bool) {
	switch k {
	case tcell.KeyUp:
		return input.KeyArrowUp, true
	case tcell.KeyDown:
		return input.KeyArrowDown, true
	case tcell.KeyLeft:
		return input.KeyArrowLeft, true
	case tcell.KeyRight:
		return input.KeyArrowRight, true
	default:
		return "", false
	}
}

// Draw renders p into the screen buffer. Call Show to flush.
func (v *Viewer) Draw(p pose.Pose) {
	v.screen.Clear()

	v.drawText(originX, 0, "Warehouse Map", tcell.StyleDefault.Bold(true))

	for r := 0; r < v.world.Rows(); r++ {
		for c := 0; c < v.world.Cols(); c++ {
			tile, _ := v.world.At(r, c)
			style := tcell.StyleDefault.Background(rgb(tile.Color())).Foreground(tcell.ColorBlack)
			label := ' '
			if tile.HasZone() {
				label = tile.Zone
			}
			x, y := originX+c*cellWidth, originY+r
			v.screen.SetContent(x, y, label, nil, style)
			v.screen.SetContent(x+1, y, ' ', nil, style)
		}
	}

	if tile, ok := v.world.TileAt(p.X, p.Z); ok {
		m := v.minimap.Project(p)
		x, y := originX+int(m.X*cellWidth), originY+int(m.Y)
		style := tcell.StyleDefault.Background(rgb(tile.Color())).Foreground(rgb(warehouse.PlayerColor)).Bold(true)
		v.screen.SetContent(x, y, Arrow(p.Heading), nil, style)
	}

	y := originY + v.world.Rows() + 1
	x := originX
	for _, entry := range v.legend {
		v.screen.SetContent(x, y, '■', nil, tcell.StyleDefault.Foreground(rgb(entry.Color)))
		v.drawText(x+2, y, entry.Label, tcell.StyleDefault)
		x += len(entry.Label) + 4
	}

	v.drawText(originX, y+2, hud.StatusLine(v.world, p), tcell.StyleDefault)
	v.drawText(originX, y+3, "arrows move, shift fast, alt strafe, esc quit", tcell.StyleDefault.Dim(true))
}

func (v *Viewer) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Run polls terminal events and redraws the latest pose from poses until
// ctx is done or the user quits.
func (v *Viewer) Run(ctx context.Context, poses *pose.Store) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	defer v.ReleaseAll()

	done := make(chan struct{})
	defer close(done)

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-eventChan:
			if !v.HandleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			v.Sweep(now)
			v.Draw(poses.Load())
			v.screen.Show()
		}
	}
}

// Arrow returns a glyph pointing along the heading as seen on the map,
// where heading 0 points down the screen.
func Arrow(heading float64) rune {
	deg := pose.Pose{Heading: heading}.HeadingDegrees()
	switch {
	case deg < 45 || deg >= 315:
		return '▼'
	case deg < 135:
		return '►'
	case deg < 225:
		return '▲'
	default:
		return '◄'
	}
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// NewScreen creates and initializes a terminal screen.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	return screen, nil
}
