package view

import (
	"image"
	"math"

	"github.com/bookistos/warehouse-simulator/internal/core/pose"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

// Marker is the player's position and rotation on the minimap panel.
type Marker struct {
	X, Y        float64
	RotationDeg float64 // Clockwise on screen, hence the negated heading
}

// Minimap maps world coordinates onto a panel of PixelsPerTile-sized cells.
// It uses the map's own tile size and centering, so panel and world agree.
type Minimap struct {
	Rows, Cols    int
	TileSize      float64
	PixelsPerTile float64
}

// NewMinimap creates a minimap projector for m.
func NewMinimap(m *warehouse.Map, pixelsPerTile float64) Minimap {
	return Minimap{
		Rows:          m.Rows(),
		Cols:          m.Cols(),
		TileSize:      m.TileSize(),
		PixelsPerTile: pixelsPerTile,
	}
}

// Project returns the marker for p.
func (mm Minimap) Project(p pose.Pose) Marker {
	return Marker{
		X:           (p.X/mm.TileSize + float64(mm.Cols)/2) * mm.PixelsPerTile,
		Y:           (p.Z/mm.TileSize + float64(mm.Rows)/2) * mm.PixelsPerTile,
		RotationDeg: -p.Heading * 180 / math.Pi,
	}
}

// Size returns the panel size in pixels.
func (mm Minimap) Size() (width, height float64) {
	return float64(mm.Cols) * mm.PixelsPerTile, float64(mm.Rows) * mm.PixelsPerTile
}

// CellRect returns the panel rectangle covered by grid cell (row, col).
func (mm Minimap) CellRect(row, col int) image.Rectangle {
	x0 := int(math.Round(float64(col) * mm.PixelsPerTile))
	y0 := int(math.Round(float64(row) * mm.PixelsPerTile))
	x1 := int(math.Round(float64(col+1) * mm.PixelsPerTile))
	y1 := int(math.Round(float64(row+1) * mm.PixelsPerTile))
	return image.Rect(x0, y0, x1, y1)
}
