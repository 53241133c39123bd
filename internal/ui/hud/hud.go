// Package hud draws the minimap overlay: the floor plan, the player marker,
// the legend and a status line, all derived from the current pose.
package hud

import (
	"fmt"
	"image/color"
	"math"

	"github.com/bookistos/warehouse-simulator/internal/core/pose"
	"github.com/bookistos/warehouse-simulator/internal/render"
	"github.com/bookistos/warehouse-simulator/internal/view"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

// HUDConfig defines what to display in the HUD
type HUDConfig struct {
	ShowLegend bool    `json:"show_legend"` // Legend under the minimap
	ShowStatus bool    `json:"show_status"` // Position/heading line
	Position   string  `json:"position"`    // "top-left", "top-right", "bottom-left", "bottom-right"
	Opacity    float64 `json:"opacity"`     // Background opacity (0-1)
	MarkerSize float64 `json:"marker_size"` // Marker triangle radius in pixels
}

// DefaultConfig returns a sensible default HUD configuration
func DefaultConfig() *HUDConfig {
	return &HUDConfig{
		ShowLegend: true,
		ShowStatus: true,
		Position:   "top-right",
		Opacity:    0.8,
		MarkerSize: 6,
	}
}

const (
	padding     = 10
	inset       = 8
	titleHeight = 18
	legendLine  = 14
	swatchSize  = 8
)

var (
	titleColor  = color.RGBA{255, 255, 255, 255}
	borderColor = color.RGBA{0x55, 0x55, 0x55, 255}
	statusColor = color.RGBA{200, 200, 200, 255}
)

// HUD manages the minimap overlay
type HUD struct {
	config       *HUDConfig
	renderer     render.Renderer
	world        *warehouse.Map
	minimap      view.Minimap
	legend       []warehouse.LegendEntry
	screenWidth  int
	screenHeight int

	// tiles caches the static floor plan, drawn once and blitted per frame.
	tiles render.Image
}

// New creates a new HUD for m with the given configuration
func New(config *HUDConfig, r render.Renderer, m *warehouse.Map, pixelsPerTile float64, screenWidth, screenHeight int) *HUD {
	if config == nil {
		config = DefaultConfig()
	}
	return &HUD{
		config:       config,
		renderer:     r,
		world:        m,
		minimap:      view.NewMinimap(m, pixelsPerTile),
		legend:       m.Legend(),
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
	}
}

// SetScreenSize updates the screen dimensions
func (h *HUD) SetScreenSize(width, height int) {
	h.screenWidth = width
	h.screenHeight = height
}

// Close releases the cached floor plan image
func (h *HUD) Close() {
	if h.tiles != nil {
		h.tiles.Dispose()
		h.tiles = nil
	}
}

// PanelSize returns the outer size of the minimap panel
func (h *HUD) PanelSize() (int, int) {
	mw, mh := h.minimap.Size()
	width := int(math.Ceil(mw)) + 2*inset
	height := titleHeight + int(math.Ceil(mh)) + 2*inset
	if h.config.ShowLegend {
		height += legendLine*h.legendRows() + inset
	}
	return width, height
}

// Draw renders the HUD for pose p
func (h *HUD) Draw(screen render.Image, p pose.Pose) {
	x, y := h.calculatePosition()
	width, height := h.PanelSize()

	alpha := uint8(h.config.Opacity * 255)
	h.renderer.FillRect(screen, float32(x-1), float32(y-1), float32(width+2), float32(height+2), color.RGBA{0x4b, 0x55, 0x63, alpha})
	h.renderer.FillRect(screen, float32(x), float32(y), float32(width), float32(height), color.RGBA{0, 0, 0, alpha})

	h.drawCenteredText(screen, "Warehouse Map", x, width, y+4)

	mapX, mapY := x+inset, y+titleHeight+inset
	h.drawTiles(screen, mapX, mapY)
	h.drawMarker(screen, mapX, mapY, h.minimap.Project(p))

	if h.config.ShowLegend {
		_, mh := h.minimap.Size()
		h.drawLegend(screen, mapX, mapY+int(math.Ceil(mh))+inset)
	}

	if h.config.ShowStatus {
		h.drawStatus(screen, p)
	}
}

// calculatePosition returns the top-left corner of the HUD panel
func (h *HUD) calculatePosition() (int, int) {
	width, height := h.PanelSize()

	switch h.config.Position {
	case "top-left":
		return padding, padding
	case "bottom-left":
		return padding, h.screenHeight - height - padding
	case "bottom-right":
		return h.screenWidth - width - padding, h.screenHeight - height - padding
	default: // "top-right"
		return h.screenWidth - width - padding, padding
	}
}

func (h *HUD) drawTiles(screen render.Image, ox, oy int) {
	if h.tiles == nil {
		h.tiles = h.renderTiles()
	}

	geoM := render.NewGeoM()
	geoM.Translate(float64(ox), float64(oy))
	screen.DrawImage(h.tiles, &render.DrawImageOptions{GeoM: geoM})
}

// renderTiles draws every tile with its border into a new image the size
// of the minimap.
func (h *HUD) renderTiles() render.Image {
	mw, mh := h.minimap.Size()
	img := h.renderer.NewImage(int(math.Ceil(mw)), int(math.Ceil(mh)))

	alpha := uint8(0.8 * 255)
	for r := 0; r < h.world.Rows(); r++ {
		for c := 0; c < h.world.Cols(); c++ {
			tile, _ := h.world.At(r, c)
			rect := h.minimap.CellRect(r, c)
			x, y := float32(rect.Min.X), float32(rect.Min.Y)
			w, hgt := float32(rect.Dx()), float32(rect.Dy())

			fill := tile.Color()
			fill.A = alpha
			h.renderer.FillRect(img, x, y, w, hgt, borderColor)
			h.renderer.FillRect(img, x+1, y+1, w-2, hgt-2, fill)
		}
	}
	return img
}

// drawMarker draws a triangle at the marker. At rotation 0 the tip points
// down the panel, the direction of travel at heading 0.
func (h *HUD) drawMarker(screen render.Image, ox, oy int, m view.Marker) {
	size := h.config.MarkerSize
	theta := m.RotationDeg * math.Pi / 180
	sin, cos := math.Sincos(theta)

	local := [][2]float64{
		{0, size},
		{-size * 0.7, -size * 0.7},
		{size * 0.7, -size * 0.7},
	}
	points := make([]render.Point, len(local))
	for i, v := range local {
		points[i] = render.Point{
			X: float32(float64(ox) + m.X + v[0]*cos - v[1]*sin),
			Y: float32(float64(oy) + m.Y + v[0]*sin + v[1]*cos),
		}
	}
	h.renderer.FillPolygon(screen, points, warehouse.PlayerColor)
}

func (h *HUD) legendRows() int {
	return (len(h.legend) + 1) / 2
}

func (h *HUD) drawLegend(screen render.Image, x, y int) {
	mw, _ := h.minimap.Size()
	colWidth := int(mw) / 2
	for i, entry := range h.legend {
		cx := x + (i%2)*colWidth
		cy := y + (i/2)*legendLine
		if i == 0 {
			// Legend lists the player first; it shares zone A's red, so
			// it gets a round swatch.
			h.renderer.FillCircle(screen, float32(cx)+swatchSize/2, float32(cy+4)+swatchSize/2, swatchSize/2, entry.Color)
		} else {
			h.renderer.FillRect(screen, float32(cx), float32(cy+4), swatchSize, swatchSize, entry.Color)
		}
		h.renderer.DrawText(screen, entry.Label, cx+swatchSize+4, cy, titleColor, 1)
	}
}

func (h *HUD) drawStatus(screen render.Image, p pose.Pose) {
	text := StatusLine(h.world, p)
	_, th := h.renderer.MeasureText(text, 1)
	h.renderer.DrawText(screen, text, padding, h.screenHeight-th-padding, statusColor, 1)
}

func (h *HUD) drawCenteredText(screen render.Image, text string, x, width, y int) {
	tw, _ := h.renderer.MeasureText(text, 1)
	h.renderer.DrawText(screen, text, x+(width-tw)/2, y, titleColor, 1)
}

// StatusLine describes the pose and the tile under it
func StatusLine(m *warehouse.Map, p pose.Pose) string {
	where := "outside"
	if row, col, ok := m.Cell(p.X, p.Z); ok {
		tile, _ := m.At(row, col)
		where = fmt.Sprintf("%s r%d c%d", tile.Kind, row, col)
		if tile.HasZone() {
			where = fmt.Sprintf("%s %c r%d c%d", tile.Kind, tile.Zone, row, col)
		}
	}
	return fmt.Sprintf("x %.1f  z %.1f  heading %3.0f°  %s", p.X, p.Z, p.HeadingDegrees(), where)
}
