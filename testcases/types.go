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

package testcases

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// TestCase defines a single heatmap scenario.
type TestCase struct {
	Name    string  // lowercase a-z and _ only
	Width   int     // canvas width in pixels
	Height  int     // canvas height in pixels
	Center  LatLng  // centre of the visible region
	Zoom    float64 // map zoom level
	Radius  float64 // kernel radius in pixels, 0 for the default
	MapType string  // "heatmap" or "contour"
	Points  []Point // the data
}

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat, Lng float64
}

// Point is a weighted geographic point.
type Point struct {
	Lat, Lng float64
	Weight   float64
}

// degPerPixel returns the longitude span of one pixel at the given zoom
// level, for 256-pixel Mercator tiles.
func degPerPixel(zoom float64) float64 {
	return 360 / (256 * math.Exp2(zoom))
}

// at returns the point d pixels (east, north) from c, with weight w.
// Near the equator this is exact to within a fraction of a pixel; further
// north the vertical spacing grows with the Mercator scale factor.
func at(c LatLng, zoom float64, d vec.Vec2, w float64) Point {
	s := degPerPixel(zoom)
	return Point{
		Lat:    c.Lat + d.Y*s*math.Cos(c.Lat*math.Pi/180),
		Lng:    c.Lng + d.X*s,
		Weight: w,
	}
}
