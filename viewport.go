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

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// ViewportFrame is the linear mapping between world coordinates and the
// pixel rows and columns of the canvas, for one set of map bounds and one
// canvas size.  A frame is immutable; when the host reports new bounds a
// new frame is computed.
//
// Row 0 is the top of the canvas.  Min is the world point of the
// south-west corner and Max that of the north-east corner, so for the
// Mercator projection YStep is negative.
type ViewportFrame struct {
	Min, Max      WorldPoint
	Width, Height int     // canvas size in pixels
	XStep, YStep  float64 // world units per pixel
}

// NewViewportFrame computes the frame for the given map bounds and canvas
// size.  The second return value is false if there is no usable viewport
// yet: an empty canvas, degenerate bounds, or a projection failure.
func NewViewportFrame(p Projection, b Bounds, width, height int) (*ViewportFrame, bool) {
	if width <= 0 || height <= 0 {
		return nil, false
	}
	pr := projector{p}
	minP, ok1 := pr.Project(b.SouthWest.Lat, b.SouthWest.Lng)
	maxP, ok2 := pr.Project(b.NorthEast.Lat, b.NorthEast.Lng)
	if !ok1 || !ok2 {
		Logger().Warn("projection failed for viewport bounds",
			"southWest", b.SouthWest, "northEast", b.NorthEast)
		return nil, false
	}

	xStep := (maxP.X() - minP.X()) / float64(width)
	yStep := (maxP.Y() - minP.Y()) / float64(height)
	if xStep == 0 || yStep == 0 {
		return nil, false
	}

	return &ViewportFrame{
		Min:    minP,
		Max:    maxP,
		Width:  width,
		Height: height,
		XStep:  xStep,
		YStep:  yStep,
	}, true
}

// WorldToCanvas returns the canvas pixel containing p.  The result may lie
// outside the canvas.
func (f *ViewportFrame) WorldToCanvas(p WorldPoint) (row, col int) {
	row = (f.Height - 1) - int(math.Floor((p.Y()-f.Min.Y())/f.YStep))
	col = int(math.Floor((p.X() - f.Min.X()) / f.XStep))
	return row, col
}

// CanvasToWorld returns the world point at the centre of the given canvas
// pixel.
func (f *ViewportFrame) CanvasToWorld(row, col int) WorldPoint {
	return WorldPoint{v: vec.Vec2{
		X: (float64(col)+0.5)*f.XStep + f.Min.X(),
		Y: (float64(f.Height-row-1)+0.5)*f.YStep + f.Min.Y(),
	}}
}

// WorldRect returns the world-space rectangle covered by the canvas.
func (f *ViewportFrame) WorldRect() rect.Rect {
	return normRect(f.Min.Vec(), f.Max.Vec())
}

// SameGeometry reports whether two frames describe the same mapping.
func (f *ViewportFrame) SameGeometry(other *ViewportFrame) bool {
	if f == nil || other == nil {
		return f == other
	}
	return *f == *other
}

// normRect returns the rectangle spanned by two corners.
func normRect(a, b vec.Vec2) rect.Rect {
	return rect.Rect{
		LLx: min(a.X, b.X),
		LLy: min(a.Y, b.Y),
		URx: max(a.X, b.X),
		URy: max(a.Y, b.Y),
	}
}
