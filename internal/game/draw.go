package game

import (
	"image/color"

	"github.com/bookistos/warehouse-simulator/internal/render"
	"github.com/bookistos/warehouse-simulator/internal/view"
)

// Draw renders the game to the screen.
func (g *Game) Draw(screen render.Image) {
	p := g.Poses.Load()

	g.Scene.Draw(screen, view.ProjectCamera(p, g.EyeHeight))
	if g.GameHUD != nil {
		g.GameHUD.Draw(screen, p)
	}
	g.drawUI(screen)
}

// drawUI draws the fading messages in the top-left corner.
func (g *Game) drawUI(screen render.Image) {
	y := 10
	for _, msg := range g.Messages {
		alpha := uint8(255 * msg.TimeLeft / msg.MaxTime)
		w, h := g.Renderer.MeasureText(msg.Text, 1)
		g.Renderer.FillRect(screen, 6, float32(y-2), float32(w+8), float32(h+4), color.RGBA{0, 0, 0, alpha / 2})
		g.Renderer.DrawText(screen, msg.Text, 10, y, color.RGBA{255, 255, 255, alpha}, 1)
		y += h + 6
	}
}
