package game

import (
	"log"

	"github.com/bookistos/warehouse-simulator/internal/core/pose"
	"github.com/bookistos/warehouse-simulator/internal/input"
	"github.com/bookistos/warehouse-simulator/internal/render"
	"github.com/bookistos/warehouse-simulator/internal/ui/hud"
	"github.com/bookistos/warehouse-simulator/internal/ui/scene"
)

// Game is the mounted walkthrough view: the first-person scene with the
// minimap overlay, both drawn from the published pose.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Poses        *pose.Store
	EyeHeight    float64

	Scene   *scene.Scene
	GameHUD *hud.HUD

	// UI state
	Messages []Message
}

// Update polls input. Movement itself advances on the session tick, not
// here, so frame rate does not change speed.
func (g *Game) Update() error {
	// Delta time for timers (assuming 60 FPS)
	dt := 1.0 / 60.0
	g.updateMessages(dt)

	g.InputMgr.Poll()
	if g.InputMgr.IsKeyJustPressed(input.KeyEscape) {
		return render.ErrQuit
	}
	return nil
}

// Layout returns the game's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.ScreenWidth || outsideHeight != g.ScreenHeight {
		g.ScreenWidth, g.ScreenHeight = outsideWidth, outsideHeight
		if g.GameHUD != nil {
			g.GameHUD.SetScreenSize(outsideWidth, outsideHeight)
		}
	}
	return g.ScreenWidth, g.ScreenHeight
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})
	log.Printf("Message: %s", text)
}
