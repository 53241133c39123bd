// Package view projects the authoritative pose and the floor plan into the
// parameters each renderer consumes. Everything here is a pure function of
// its inputs.
package view

import (
	"math"

	"github.com/bookistos/warehouse-simulator/internal/core/pose"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

// Vec3 is a point in world space, y up.
type Vec3 struct {
	X, Y, Z float64
}

// Camera is the first-person camera placement.
type Camera struct {
	Position Vec3
	LookAt   Vec3
}

// Direction returns the unit vector from Position to LookAt on the floor
// plane.
func (c Camera) Direction() (dx, dz float64) {
	dx, dz = c.LookAt.X-c.Position.X, c.LookAt.Z-c.Position.Z
	if l := math.Hypot(dx, dz); l > 0 {
		dx, dz = dx/l, dz/l
	}
	return dx, dz
}

// ProjectCamera places the camera at eye height over the pose, aimed one
// unit ahead along the heading.
func ProjectCamera(p pose.Pose, eyeHeight float64) Camera {
	sin, cos := math.Sincos(p.Heading)
	return Camera{
		Position: Vec3{X: p.X, Y: eyeHeight, Z: p.Z},
		LookAt:   Vec3{X: p.X + sin, Y: eyeHeight, Z: p.Z + cos},
	}
}

// Placement is a tile positioned in world space, computed once when the
// scene is built.
type Placement struct {
	Row, Col int
	X, Z     float64
	Kind     warehouse.Kind
	Zone     rune
}

// Placements lists every tile of m in row-major order.
func Placements(m *warehouse.Map) []Placement {
	out := make([]Placement, 0, m.Rows()*m.Cols())
	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			tile, _ := m.At(r, c)
			x, z := m.WorldPosition(r, c)
			out = append(out, Placement{Row: r, Col: c, X: x, Z: z, Kind: tile.Kind, Zone: tile.Zone})
		}
	}
	return out
}
