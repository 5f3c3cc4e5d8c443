// seehuhn.de/go/heatmap - density heatmaps for interactive maps
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package heatmap

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat, Lng float64
}

// Bounds is a visible map region, given by its south-west and north-east
// corners.
type Bounds struct {
	SouthWest LatLng
	NorthEast LatLng
}

// WorldPoint is a location in the planar world coordinate system of a
// projection.  For the Mercator projection both coordinates lie in
// [0,256], with y growing southwards.
//
// WorldPoints are only produced by a projection adapter or by the
// coordinate conversions of a ViewportFrame or DensityGrid, so that all
// code agrees on a single projection formula.
type WorldPoint struct {
	v vec.Vec2
}

// X returns the horizontal world coordinate.
func (p WorldPoint) X() float64 { return p.v.X }

// Y returns the vertical world coordinate.
func (p WorldPoint) Y() float64 { return p.v.Y }

// Vec returns the point as a vector.
func (p WorldPoint) Vec() vec.Vec2 { return p.v }

// Projection maps geographic coordinates to world coordinates.
// It is supplied by the host map.
type Projection interface {
	FromLatLngToWorldPoint(lat, lng float64) (x, y float64)
}

// InverseProjection is implemented by projections which can map world
// coordinates back to geographic coordinates.
type InverseProjection interface {
	Projection
	FromWorldPointToLatLng(x, y float64) (lat, lng float64)
}

// ProjectionFunc adapts an ordinary function to the Projection interface.
type ProjectionFunc func(lat, lng float64) (x, y float64)

// FromLatLngToWorldPoint calls f(lat, lng).
func (f ProjectionFunc) FromLatLngToWorldPoint(lat, lng float64) (x, y float64) {
	return f(lat, lng)
}

// Mercator is the spherical Mercator projection onto a 256×256 world tile.
type Mercator struct{}

const (
	tileSize = 256

	// mercatorSinLimit truncates sin(lat), limiting latitude to about
	// ±89.19 degrees.
	mercatorSinLimit = 0.9999
)

// FromLatLngToWorldPoint implements the Projection interface.
func (Mercator) FromLatLngToWorldPoint(lat, lng float64) (x, y float64) {
	x = tileSize/2 + lng*tileSize/360
	siny := math.Sin(lat * math.Pi / 180)
	siny = max(-mercatorSinLimit, min(mercatorSinLimit, siny))
	y = tileSize/2 - 0.5*math.Log((1+siny)/(1-siny))*tileSize/(2*math.Pi)
	return x, y
}

// FromWorldPointToLatLng implements the InverseProjection interface.
func (Mercator) FromWorldPointToLatLng(x, y float64) (lat, lng float64) {
	lng = (x - tileSize/2) * 360 / tileSize
	m := (tileSize/2 - y) * 2 * math.Pi / tileSize
	lat = 180 / math.Pi * math.Atan(math.Sinh(m))
	return lat, lng
}

// projector wraps a host projection.  It is the only place where
// WorldPoints are created from geographic coordinates.
type projector struct {
	p Projection
}

// Project converts a geographic coordinate to a world point.  The second
// return value is false if the projection produced a non-finite result.
func (pr projector) Project(lat, lng float64) (WorldPoint, bool) {
	x, y := pr.p.FromLatLngToWorldPoint(lat, lng)
	if !isFinite(x) || !isFinite(y) {
		return WorldPoint{}, false
	}
	return WorldPoint{v: vec.Vec2{X: x, Y: y}}, true
}

// Unproject converts a world point back to a geographic coordinate.
// The second return value is false if the projection has no inverse.
func (pr projector) Unproject(p WorldPoint) (LatLng, bool) {
	inv, ok := pr.p.(InverseProjection)
	if !ok {
		return LatLng{}, false
	}
	lat, lng := inv.FromWorldPointToLatLng(p.v.X, p.v.Y)
	return LatLng{Lat: lat, Lng: lng}, true
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
