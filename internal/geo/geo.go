// Package geo turns sampled fighter positions into simplefeatures geometry
// so replays can carry each fighter's movement path per round.
package geo

import (
	"errors"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/ringside/simulator/pkg/core"
)

// ErrNotLineString is returned by ParsePath for WKT of any other type.
var ErrNotLineString = errors.New("geometry is not a linestring")

// PointFromVec converts an arena position to a 2D point.
func PointFromVec(v core.Vec2) geom.Point {
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: v.X, Y: v.Y}, Type: geom.DimXY})
}

// Track accumulates one fighter's positions. Consecutive duplicates are
// collapsed so a fighter standing still adds no vertices.
type Track struct {
	coords []float64
}

// Add appends p unless it equals the last point.
func (t *Track) Add(p core.Vec2) {
	if n := len(t.coords); n >= 2 && t.coords[n-2] == p.X && t.coords[n-1] == p.Y {
		return
	}
	t.coords = append(t.coords, p.X, p.Y)
}

// Len returns the number of distinct points.
func (t *Track) Len() int { return len(t.coords) / 2 }

// Reset drops every point.
func (t *Track) Reset() { t.coords = t.coords[:0] }

// LineString returns the track as a linestring. It needs at least two
// distinct points.
func (t *Track) LineString() (geom.LineString, error) {
	if t.Len() < 2 {
		return geom.LineString{}, fmt.Errorf("track must have at least 2 points, got %d", t.Len())
	}
	coords := make([]float64, len(t.coords))
	copy(coords, t.coords)
	return geom.NewLineString(geom.NewSequence(coords, geom.DimXY)), nil
}

// Summary renders the track as WKT with its travelled distance. A track
// that never moved is a POINT with zero distance.
func (t *Track) Summary() core.Path {
	switch t.Len() {
	case 0:
		return core.Path{}
	case 1:
		return core.Path{WKT: PointFromVec(core.Vec2{X: t.coords[0], Y: t.coords[1]}).AsText()}
	}
	ls, err := t.LineString()
	if err != nil {
		return core.Path{}
	}
	return core.Path{WKT: ls.AsText(), Distance: ls.Length()}
}

// ParsePath reads a LINESTRING WKT back into arena positions.
func ParsePath(wkt string) ([]core.Vec2, error) {
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse path: %w", err)
	}
	if g.Type() != geom.TypeLineString {
		return nil, fmt.Errorf("%w: %s", ErrNotLineString, g.Type())
	}

	seq := g.MustAsLineString().Coordinates()
	path := make([]core.Vec2, seq.Length())
	for i := range path {
		xy := seq.GetXY(i)
		path[i] = core.Vec2{X: xy.X, Y: xy.Y}
	}
	return path, nil
}
