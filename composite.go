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
	"image/color"
	"math"
)

// Compositor maps density values through a gradient into canvas-aligned
// pixel buffers.
type Compositor struct {
	Gradient *Gradient

	// Opacity is the alpha of every pixel with a density above Epsilon.
	Opacity uint8

	// Epsilon is the normalised density below which alpha scales down to
	// zero, so that the empty part of the grid stays transparent.
	Epsilon float64

	// Normalize divides densities by the grid's running maximum.  When
	// false, densities are taken to be normalised already.
	Normalize bool
}

// Render computes every canvas pixel of frame f from the grid.  The frame
// may differ from the one the grid was built with.
func (c *Compositor) Render(g *DensityGrid, f *ViewportFrame) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	c.RenderRegion(img, g, f, img.Rect)
	return img
}

// RenderRegion recomputes the pixels of dst inside r, which is given in
// canvas coordinates and clipped to dst.
func (c *Compositor) RenderRegion(dst *image.NRGBA, g *DensityGrid, f *ViewportFrame, r image.Rectangle) {
	r = r.Intersect(dst.Rect)
	norm := c.norm(g)
	for row := r.Min.Y; row < r.Max.Y; row++ {
		off := dst.PixOffset(r.Min.X, row)
		for col := r.Min.X; col < r.Max.X; col++ {
			gr, gc := g.WorldToCell(f.CanvasToWorld(row, col))
			px := c.pixel(g.At(gr, gc), norm)
			dst.Pix[off+0] = px.R
			dst.Pix[off+1] = px.G
			dst.Pix[off+2] = px.B
			dst.Pix[off+3] = px.A
			off += 4
		}
	}
}

// CanvasRegion returns the canvas pixels showing the given grid cells,
// a (col, row) rectangle, clipped to the canvas.  One pixel of slack is
// added on each side to absorb rounding.
func CanvasRegion(g *DensityGrid, f *ViewportFrame, cells image.Rectangle) image.Rectangle {
	if cells.Empty() {
		return image.Rectangle{}
	}
	r0, c0 := f.WorldToCanvas(g.CellToWorld(cells.Min.Y, cells.Min.X))
	r1, c1 := f.WorldToCanvas(g.CellToWorld(cells.Max.Y-1, cells.Max.X-1))
	r := image.Rect(c0, r0, c1, r1) // canonicalises the corners
	r.Max = r.Max.Add(image.Pt(1, 1))
	r = r.Inset(-1)
	return r.Intersect(image.Rect(0, 0, f.Width, f.Height))
}

func (c *Compositor) norm(g *DensityGrid) float64 {
	if !c.Normalize {
		return 1
	}
	return g.MaxValue
}

// pixel converts a raw density to a pixel colour.
func (c *Compositor) pixel(raw, norm float64) color.NRGBA {
	v := 0.0
	if norm > 0 {
		v = unit(raw / norm)
	}
	px := c.Gradient.at(v)
	if v > c.Epsilon {
		px.A = c.Opacity
	} else {
		px.A = uint8(v * float64(c.Opacity))
	}
	return px
}

// unit clamps x to [0, 1], mapping NaN to 0.
func unit(x float64) float64 {
	if x != x {
		return 0
	}
	return max(0, min(1, x))
}

// GrayImage returns the normalised density of every canvas pixel of f as
// a grey level from 0 (no density) to 255 (the maximum).
func GrayImage(g *DensityGrid, f *ViewportFrame, normalize bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	norm := 1.0
	if normalize {
		norm = g.MaxValue
	}
	if !(norm > 0) {
		return img
	}
	for row := range f.Height {
		line := img.Pix[row*img.Stride:]
		for col := range f.Width {
			gr, gc := g.WorldToCell(f.CanvasToWorld(row, col))
			v := unit(g.At(gr, gc) / norm)
			line[col] = uint8(math.Round(v * 255))
		}
	}
	return img
}
