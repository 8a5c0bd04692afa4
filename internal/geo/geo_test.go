package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringside/simulator/pkg/core"
)

func TestPointFromVec(t *testing.T) {
	pt := PointFromVec(core.Vec2{X: 235, Y: 360})

	coords, ok := pt.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 235.0, coords.X)
	assert.Equal(t, 360.0, coords.Y)
}

func TestTrack_CollapsesDuplicates(t *testing.T) {
	var tr Track
	tr.Add(core.Vec2{X: 200, Y: 360})
	tr.Add(core.Vec2{X: 200, Y: 360})
	tr.Add(core.Vec2{X: 230, Y: 360})
	tr.Add(core.Vec2{X: 230, Y: 360})
	tr.Add(core.Vec2{X: 200, Y: 360})

	assert.Equal(t, 3, tr.Len())
}

func TestTrack_Summary(t *testing.T) {
	var tr Track
	tr.Add(core.Vec2{X: 200, Y: 360})
	tr.Add(core.Vec2{X: 230, Y: 360})
	tr.Add(core.Vec2{X: 230, Y: 320})

	p := tr.Summary()
	assert.Equal(t, "LINESTRING(200 360,230 360,230 320)", p.WKT)
	assert.InDelta(t, 70.0, p.Distance, 1e-9)
}

func TestTrack_SummaryDegenerate(t *testing.T) {
	var tr Track
	assert.Equal(t, core.Path{}, tr.Summary())

	tr.Add(core.Vec2{X: 600, Y: 360})
	p := tr.Summary()
	assert.Equal(t, "POINT(600 360)", p.WKT)
	assert.Zero(t, p.Distance)

	_, err := tr.LineString()
	assert.Error(t, err)
}

func TestTrack_Reset(t *testing.T) {
	var tr Track
	tr.Add(core.Vec2{X: 1, Y: 2})
	tr.Add(core.Vec2{X: 3, Y: 4})
	tr.Reset()

	assert.Zero(t, tr.Len())
	tr.Add(core.Vec2{X: 1, Y: 2})
	assert.Equal(t, 1, tr.Len())
}

func TestParsePath_RoundTrip(t *testing.T) {
	var tr Track
	tr.Add(core.Vec2{X: 100.5, Y: 360})
	tr.Add(core.Vec2{X: 140.25, Y: 300})

	path, err := ParsePath(tr.Summary().WKT)
	require.NoError(t, err)
	assert.Equal(t, []core.Vec2{{X: 100.5, Y: 360}, {X: 140.25, Y: 300}}, path)
}

func TestParsePath_Errors(t *testing.T) {
	_, err := ParsePath("not wkt")
	assert.Error(t, err)

	_, err = ParsePath("POINT(1 2)")
	assert.True(t, errors.Is(err, ErrNotLineString))
}
