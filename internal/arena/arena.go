// Package arena describes the ring: a rectangle with a floor line. It has no
// behaviour beyond bounds queries.
package arena

import (
	"fmt"

	"github.com/ringside/simulator/pkg/core"
)

// Config sizes the ring.
type Config struct {
	X, Y          float64
	Width, Height float64
	// FloorY is the y a grounded fighter stands on. Zero means the ring's bottom edge.
	FloorY float64
	// HalfWidth is half a fighter's body width; it keeps centers off the ropes.
	HalfWidth float64
}

// Arena is immutable once built.
type Arena struct {
	ring      core.Rect
	floorY    float64
	halfWidth float64
}

// New validates cfg and builds the arena.
func New(cfg Config) (*Arena, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("arena: ring size must be positive, got %vx%v", cfg.Width, cfg.Height)
	}
	if cfg.HalfWidth < 0 || 2*cfg.HalfWidth >= cfg.Width {
		return nil, fmt.Errorf("arena: fighter half width %v does not fit ring width %v", cfg.HalfWidth, cfg.Width)
	}
	ring := core.NewRect(cfg.X, cfg.Y, cfg.Width, cfg.Height)
	floor := cfg.FloorY
	if floor == 0 {
		floor = ring.Max.Y
	}
	if floor < ring.Min.Y || floor > ring.Max.Y {
		return nil, fmt.Errorf("arena: floor %v outside ring [%v, %v]", floor, ring.Min.Y, ring.Max.Y)
	}
	return &Arena{ring: ring, floorY: floor, halfWidth: cfg.HalfWidth}, nil
}

// BoundsContaining reports whether p is inside the ring rectangle.
func (a *Arena) BoundsContaining(p core.Vec2) bool {
	return a.ring.Contains(p)
}

// RingRectangle returns the ring.
func (a *Arena) RingRectangle() core.Rect { return a.ring }

// FloorY returns the floor height.
func (a *Arena) FloorY() float64 { return a.floorY }

// PlayableX returns the horizontal range a fighter's center may occupy.
func (a *Arena) PlayableX() (minX, maxX float64) {
	return a.ring.Min.X + a.halfWidth, a.ring.Max.X - a.halfWidth
}

// ClampX limits x to the playable range and reports whether it had to.
func (a *Arena) ClampX(x float64) (float64, bool) {
	lo, hi := a.PlayableX()
	c := core.Clamp(x, lo, hi)
	return c, c != x
}

// Spawn returns the starting centers for the two fighters, a quarter of the
// ring in from each side, standing on the floor.
func (a *Arena) Spawn() (left, right core.Vec2) {
	quarter := a.ring.Width() / 4
	left = core.Vec2{X: a.ring.Min.X + quarter, Y: a.floorY}
	right = core.Vec2{X: a.ring.Max.X - quarter, Y: a.floorY}
	return left, right
}
