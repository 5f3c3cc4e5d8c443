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
	"image"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// overProvision is the size of the density grid relative to the viewport,
// in each axis.  With 3 the viewport sits in the middle and the map can be
// panned by one full viewport in any direction before a rebuild is needed.
const overProvision = 3

// Cell addresses a density grid cell.  Row 0 is the northern edge of the
// grid's nominal region.
type Cell struct {
	Row, Col int
}

// Extent is the reach of a kernel in grid cells, beyond which its
// contribution is treated as zero.
type Extent struct {
	Rows, Cols int
}

// DensityGrid is an accumulation buffer of kernel density values over a
// world-aligned pixel grid.
//
// The nominal region has Width×Height cells and is centred on the
// viewport the grid was built for.  Around it lies a margin of PadRows
// rows and PadCols columns, so that points just outside the nominal
// region still accumulate without clipping.  Cell indices of the margin
// are negative or at least Width (Height).
//
// A grid is never resized: a change of viewport or zoom replaces it.
type DensityGrid struct {
	Width, Height    int // nominal region, in cells
	PadRows, PadCols int // margin on each edge, in cells

	// Origin is the world point of the south-west corner of the nominal
	// region.
	Origin WorldPoint

	XStep, YStep float64 // world units per cell, as in the viewport frame

	RowExtent, ColExtent int     // kernel extent, already scaled
	Scale                float64 // zoom scale factor, >= 1

	// MaxValue is the largest value written to any cell.
	MaxValue float64

	// Generation identifies the grid; it is assigned by the engine.
	Generation uint64

	viewWidth, viewHeight int // canvas size at construction

	values []float64
	stride int
}

// NewDensityGrid builds an empty grid for the given viewport frame.
// The kernel extent is multiplied by scale and rounded up; scale values
// below 1 are treated as 1.
func NewDensityGrid(f *ViewportFrame, extent Extent, scale float64) *DensityGrid {
	scale = max(1, scale)
	rowExt := max(1, int(math.Ceil(float64(extent.Rows)*scale)))
	colExt := max(1, int(math.Ceil(float64(extent.Cols)*scale)))

	w := f.Width * overProvision
	h := f.Height * overProvision
	shift := float64(overProvision-1) / 2
	origin := WorldPoint{v: vec.Vec2{
		X: f.Min.X() - shift*float64(f.Width)*f.XStep,
		Y: f.Min.Y() - shift*float64(f.Height)*f.YStep,
	}}

	stride := w + 2*colExt
	rows := h + 2*rowExt

	return &DensityGrid{
		Width:      w,
		Height:     h,
		PadRows:    rowExt,
		PadCols:    colExt,
		Origin:     origin,
		XStep:      f.XStep,
		YStep:      f.YStep,
		RowExtent:  rowExt,
		ColExtent:  colExt,
		Scale:      scale,
		viewWidth:  f.Width,
		viewHeight: f.Height,
		values:     make([]float64, stride*rows),
		stride:     stride,
	}
}

// WorldToCell returns the cell containing p.  The result may lie outside
// the grid.
func (g *DensityGrid) WorldToCell(p WorldPoint) (row, col int) {
	row = (g.Height - 1) - int(math.Floor((p.Y()-g.Origin.Y())/g.YStep))
	col = int(math.Floor((p.X() - g.Origin.X()) / g.XStep))
	return row, col
}

// CellToWorld returns the world point at the centre of a cell.
// WorldToCell(CellToWorld(row, col)) returns (row, col).
func (g *DensityGrid) CellToWorld(row, col int) WorldPoint {
	return WorldPoint{v: vec.Vec2{
		X: (float64(col)+0.5)*g.XStep + g.Origin.X(),
		Y: (float64(g.Height-row-1)+0.5)*g.YStep + g.Origin.Y(),
	}}
}

// Contains reports whether the cell lies in the grid buffer, margin
// included.
func (g *DensityGrid) Contains(row, col int) bool {
	return row >= -g.PadRows && row < g.Height+g.PadRows &&
		col >= -g.PadCols && col < g.Width+g.PadCols
}

// Covers reports whether the cell lies in the nominal region.
func (g *DensityGrid) Covers(row, col int) bool {
	return row >= 0 && row < g.Height && col >= 0 && col < g.Width
}

// CoversFrame reports whether every pixel of the viewport frame maps into
// the nominal region, and the frame has the canvas size the grid was
// built for.
func (g *DensityGrid) CoversFrame(f *ViewportFrame) bool {
	if f.Width != g.viewWidth || f.Height != g.viewHeight {
		return false
	}
	r0, c0 := g.WorldToCell(f.CanvasToWorld(0, 0))
	r1, c1 := g.WorldToCell(f.CanvasToWorld(f.Height-1, f.Width-1))
	return g.Covers(r0, c0) && g.Covers(r1, c1)
}

// Bounds returns the buffer region as a rectangle in (col, row)
// coordinates, margin included.
func (g *DensityGrid) Bounds() image.Rectangle {
	return image.Rect(-g.PadCols, -g.PadRows, g.Width+g.PadCols, g.Height+g.PadRows)
}

// WorldRect returns the world-space rectangle of the nominal region.
func (g *DensityGrid) WorldRect() rect.Rect {
	ne := vec.Vec2{
		X: g.Origin.X() + float64(g.Width)*g.XStep,
		Y: g.Origin.Y() + float64(g.Height)*g.YStep,
	}
	return normRect(g.Origin.Vec(), ne)
}

// At returns the value of a cell, or 0 outside the buffer.
func (g *DensityGrid) At(row, col int) float64 {
	if !g.Contains(row, col) {
		return 0
	}
	return g.values[g.index(row, col)]
}

func (g *DensityGrid) index(row, col int) int {
	return (row+g.PadRows)*g.stride + col + g.PadCols
}

// influence returns the cells a point at (row, col) may touch, clamped to
// the buffer, as a (col, row) rectangle.
func (g *DensityGrid) influence(row, col int) image.Rectangle {
	r := image.Rect(col-g.ColExtent, row-g.RowExtent, col+g.ColExtent+1, row+g.RowExtent+1)
	return r.Intersect(g.Bounds())
}

// NonZero returns the number of cells holding a positive value.
func (g *DensityGrid) NonZero() int {
	n := 0
	for _, v := range g.values {
		if v > 0 {
			n++
		}
	}
	return n
}
