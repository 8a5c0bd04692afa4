package arena

import (
	"testing"

	"github.com/ringside/simulator/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T) *Arena {
	t.Helper()
	a, err := New(Config{X: 0, Y: 0, Width: 800, Height: 400, FloorY: 360, HalfWidth: 20})
	require.NoError(t, err)
	return a
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Width: 0, Height: 10})
	assert.Error(t, err)

	_, err = New(Config{Width: 40, Height: 10, HalfWidth: 20})
	assert.Error(t, err, "fighter as wide as the ring")

	_, err = New(Config{Width: 100, Height: 100, FloorY: 150})
	assert.Error(t, err, "floor below ring")
}

func TestNew_DefaultFloorIsBottomEdge(t *testing.T) {
	a, err := New(Config{X: 10, Y: 20, Width: 100, Height: 50})
	require.NoError(t, err)
	assert.Equal(t, 70.0, a.FloorY())
}

func TestBoundsContaining(t *testing.T) {
	a := newTestArena(t)
	assert.True(t, a.BoundsContaining(core.Vec2{X: 400, Y: 200}))
	assert.True(t, a.BoundsContaining(core.Vec2{X: 0, Y: 0}), "edges are inside")
	assert.False(t, a.BoundsContaining(core.Vec2{X: -1, Y: 200}))
	assert.False(t, a.BoundsContaining(core.Vec2{X: 400, Y: 401}))
}

func TestRingRectangleAndFloor(t *testing.T) {
	a := newTestArena(t)
	assert.Equal(t, core.NewRect(0, 0, 800, 400), a.RingRectangle())
	assert.Equal(t, 360.0, a.FloorY())
}

func TestClampX(t *testing.T) {
	a := newTestArena(t)

	x, clamped := a.ClampX(5)
	assert.Equal(t, 20.0, x)
	assert.True(t, clamped)

	x, clamped = a.ClampX(900)
	assert.Equal(t, 780.0, x)
	assert.True(t, clamped)

	x, clamped = a.ClampX(400)
	assert.Equal(t, 400.0, x)
	assert.False(t, clamped)
}

func TestSpawn(t *testing.T) {
	a := newTestArena(t)
	l, r := a.Spawn()
	assert.Equal(t, core.Vec2{X: 200, Y: 360}, l)
	assert.Equal(t, core.Vec2{X: 600, Y: 360}, r)
}
