// Package scene draws the first-person view of the warehouse by casting one
// ray per screen column through the tile grid.
package scene

import (
	"image/color"
	"math"

	"github.com/bookistos/warehouse-simulator/internal/render"
	"github.com/bookistos/warehouse-simulator/internal/view"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

var (
	ceilingColor = color.RGBA{0x4a, 0x4a, 0x4a, 0xff}
	floorColor   = color.RGBA{0x88, 0x88, 0x88, 0xff}
	wallColor    = color.RGBA{0x14, 0x16, 0x23, 0xff}
)

// Config controls the projection.
type Config struct {
	FieldOfView float64 // Horizontal, degrees
	WallHeight  float64 // World units
	Stripe      int     // Screen columns per ray
	FogDistance float64 // World units at which walls reach full fog
}

// DefaultConfig matches the stock view tuning.
func DefaultConfig() Config {
	return Config{
		FieldOfView: 75,
		WallHeight:  6,
		Stripe:      2,
		FogDistance: 40,
	}
}

type cell struct {
	solid bool
	color color.RGBA
}

// Scene holds the static occupancy grid built from the tile placements.
type Scene struct {
	renderer render.Renderer
	cfg      Config

	rows, cols int
	tileSize   float64
	cells      [][]cell
}

// New builds a scene for m from its static placements.
func New(r render.Renderer, m *warehouse.Map, placements []view.Placement, cfg Config) *Scene {
	if cfg.Stripe <= 0 {
		cfg.Stripe = 1
	}
	s := &Scene{
		renderer: r,
		cfg:      cfg,
		rows:     m.Rows(),
		cols:     m.Cols(),
		tileSize: m.TileSize(),
		cells:    make([][]cell, m.Rows()),
	}
	for i := range s.cells {
		s.cells[i] = make([]cell, m.Cols())
	}
	for _, p := range placements {
		tile := warehouse.Tile{Kind: p.Kind, Zone: p.Zone}
		s.cells[p.Row][p.Col] = cell{
			solid: p.Kind != warehouse.Aisle,
			color: tile.Color(),
		}
	}
	return s
}

// Hit describes where a ray stopped.
type Hit struct {
	Row, Col int
	Distance float64 // Perpendicular distance in world units
	Side     int     // 0 for a wall crossed along x, 1 along z
	Outside  bool    // Ray left the grid; the hit is the outer wall
}

// Cast walks the grid from world position (x, z) along (dx, dz) until it
// reaches a solid tile or leaves the grid. The direction need not be unit
// length; Distance is measured in multiples of it, scaled to world units.
func (s *Scene) Cast(x, z, dx, dz float64) Hit {
	gx := x/s.tileSize + float64(s.cols)/2
	gz := z/s.tileSize + float64(s.rows)/2
	col, row := int(math.Floor(gx)), int(math.Floor(gz))

	deltaX, deltaZ := math.Inf(1), math.Inf(1)
	if dx != 0 {
		deltaX = math.Abs(1 / dx)
	}
	if dz != 0 {
		deltaZ = math.Abs(1 / dz)
	}

	stepX, stepZ := 1, 1
	sideX := (float64(col) + 1 - gx) * deltaX
	if dx < 0 {
		stepX = -1
		sideX = (gx - float64(col)) * deltaX
	}
	sideZ := (float64(row) + 1 - gz) * deltaZ
	if dz < 0 {
		stepZ = -1
		sideZ = (gz - float64(row)) * deltaZ
	}

	side := 0
	for i := 0; i < 4*(s.rows+s.cols)+4; i++ {
		if sideX < sideZ {
			sideX += deltaX
			col += stepX
			side = 0
		} else {
			sideZ += deltaZ
			row += stepZ
			side = 1
		}

		dist := sideZ - deltaZ
		if side == 0 {
			dist = sideX - deltaX
		}

		if row < 0 || row >= s.rows || col < 0 || col >= s.cols {
			return Hit{Row: row, Col: col, Distance: dist * s.tileSize, Side: side, Outside: true}
		}
		if s.cells[row][col].solid {
			return Hit{Row: row, Col: col, Distance: dist * s.tileSize, Side: side}
		}
	}
	return Hit{Row: row, Col: col, Distance: math.Inf(1), Side: side, Outside: true}
}

// Draw renders the view from cam into dst.
func (s *Scene) Draw(dst render.Image, cam view.Camera) {
	w, h := dst.Size()
	if w == 0 || h == 0 {
		return
	}

	horizon := float32(h) / 2
	s.renderer.FillRect(dst, 0, 0, float32(w), horizon, ceilingColor)
	s.renderer.FillRect(dst, 0, horizon, float32(w), float32(h)-horizon, floorColor)

	fx, fz := cam.Direction()
	// Right of the view direction on the floor plane, y up.
	rx, rz := -fz, fx
	planeScale := math.Tan(s.cfg.FieldOfView * math.Pi / 360)
	focal := float64(w) / 2 / planeScale

	eye := cam.Position.Y
	for x := 0; x < w; x += s.cfg.Stripe {
		offset := (2*(float64(x)+float64(s.cfg.Stripe)/2)/float64(w) - 1) * planeScale
		hit := s.Cast(cam.Position.X, cam.Position.Z, fx+rx*offset, fz+rz*offset)
		if math.IsInf(hit.Distance, 1) || hit.Distance <= 0 {
			continue
		}

		top := float64(horizon) - (s.cfg.WallHeight-eye)*focal/hit.Distance
		bottom := float64(horizon) + eye*focal/hit.Distance
		top = math.Max(top, 0)
		bottom = math.Min(bottom, float64(h))
		if bottom <= top {
			continue
		}

		s.renderer.FillRect(dst, float32(x), float32(top), float32(s.cfg.Stripe), float32(bottom-top), s.shade(hit))
	}
}

func (s *Scene) shade(hit Hit) color.RGBA {
	base := wallColor
	if !hit.Outside {
		base = s.cells[hit.Row][hit.Col].color
	}

	k := 1.0
	if hit.Side == 1 {
		k = 0.75
	}
	if s.cfg.FogDistance > 0 {
		k *= 1 - 0.7*math.Min(hit.Distance/s.cfg.FogDistance, 1)
	}
	return color.RGBA{
		R: uint8(float64(base.R) * k),
		G: uint8(float64(base.G) * k),
		B: uint8(float64(base.B) * k),
		A: 0xff,
	}
}
