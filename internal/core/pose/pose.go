// Package pose holds the player's position and heading, the single source of
// truth read by every view.
package pose

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Pose is the player's continuous position on the floor plane and heading.
// Heading is in radians, 0 faces the spawn direction and increases
// counter-clockwise. Forward at heading h is (sin h, cos h).
type Pose struct {
	X, Z    float64
	Heading float64
}

// Forward returns the unit direction the pose is facing.
func (p Pose) Forward() (dx, dz float64) {
	return math.Sin(p.Heading), math.Cos(p.Heading)
}

// Translate returns p moved by (dx, dz).
func (p Pose) Translate(dx, dz float64) Pose {
	p.X += dx
	p.Z += dz
	return p
}

// Rotate returns p with delta added to its heading.
func (p Pose) Rotate(delta float64) Pose {
	p.Heading += delta
	return p
}

// HeadingDegrees returns the heading normalized to [0, 360).
func (p Pose) HeadingDegrees() float64 {
	d := math.Mod(p.Heading*180/math.Pi, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.2f, %.2f) %.0f°", p.X, p.Z, p.HeadingDegrees())
}

// Store publishes poses to concurrent readers. Writers replace the whole
// value, so a reader never sees a half-updated pose.
type Store struct {
	current atomic.Pointer[Pose]
}

// NewStore returns a store holding initial.
func NewStore(initial Pose) *Store {
	s := &Store{}
	s.Set(initial)
	return s
}

// Load returns the last published pose.
func (s *Store) Load() Pose {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Pose{}
}

// Set publishes p.
func (s *Store) Set(p Pose) {
	s.current.Store(&p)
}
