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

	"seehuhn.de/go/geom/vec"
)

// Kernel returns the non-negative influence of a point on a cell at the
// given distance, measured in cells.
type Kernel func(dist float64) float64

// defaultKernelScale is the normalisation constant of the default
// Gaussian kernel, 2.5/sqrt(2π).
var defaultKernelScale = 2.5 / math.Sqrt(2*math.Pi)

// Gaussian returns the kernel c·exp(-d²/(2·radius²)).
func Gaussian(radius, c float64) Kernel {
	s := 2 * radius * radius
	return func(d float64) float64 {
		return c * math.Exp(-d*d/s)
	}
}

// DefaultKernel returns the Gaussian kernel used when only a radius is
// configured.
func DefaultKernel(radius float64) Kernel {
	return Gaussian(radius, defaultKernelScale)
}

// WeightedCell is the cell of a point together with its weight.
type WeightedCell struct {
	Cell
	Weight float64
}

// PixelPolicy computes the new value of a cell when a point is added.
// The scaled distance is the distance between the cell and the point's
// cell, in cells, divided by the zoom scale factor.
type PixelPolicy interface {
	PixelValue(old float64, cell Cell, p WeightedCell, scaledDist float64) float64
}

// PixelFunc adapts an ordinary function to the PixelPolicy interface.
// A custom PixelFunc is expected to produce values already normalised to
// [0,1]; densities drawn with it are not divided by the running maximum.
type PixelFunc func(old float64, cell Cell, p WeightedCell, scaledDist float64) float64

// PixelValue calls f.
func (f PixelFunc) PixelValue(old float64, cell Cell, p WeightedCell, scaledDist float64) float64 {
	return f(old, cell, p, scaledDist)
}

// kernelPolicy adds kernel(d)·weight to the cell, where d is the
// unscaled distance.
type kernelPolicy struct {
	kernel Kernel
}

// DefaultPolicy returns the policy which sums kernel contributions.
func DefaultPolicy(k Kernel) PixelPolicy {
	return kernelPolicy{kernel: k}
}

func (p kernelPolicy) PixelValue(old float64, cell Cell, wc WeightedCell, _ float64) float64 {
	return old + p.kernel(cellDistance(cell, wc.Cell))*wc.Weight
}

// contourPolicy keeps the largest weight of all points within radius.
type contourPolicy struct {
	radius float64
}

// ContourPolicy returns the policy producing flat regions: every cell
// within radius (scaled distance) of a point takes the maximum of its
// value and the point's weight.
func ContourPolicy(radius float64) PixelPolicy {
	return contourPolicy{radius: radius}
}

func (p contourPolicy) PixelValue(old float64, _ Cell, wc WeightedCell, scaledDist float64) float64 {
	if scaledDist < p.radius {
		return max(old, wc.Weight)
	}
	return old
}

func cellDistance(a, b Cell) float64 {
	return vec.Vec2{X: float64(a.Col - b.Col), Y: float64(a.Row - b.Row)}.Length()
}

// Accumulate applies one weighted point to the grid.  It returns the
// region of cells visited, in (col, row) coordinates, and false if the
// point lies outside the grid, in which case nothing changes.
//
// The cost is bounded by the kernel extent and does not depend on the
// grid size.
func (g *DensityGrid) Accumulate(p WorldPoint, weight float64, policy PixelPolicy) (image.Rectangle, bool) {
	row, col := g.WorldToCell(p)
	if !g.Contains(row, col) {
		return image.Rectangle{}, false
	}

	region := g.influence(row, col)
	wc := WeightedCell{Cell: Cell{Row: row, Col: col}, Weight: weight}
	for y := region.Min.Y; y < region.Max.Y; y++ {
		base := g.index(y, region.Min.X)
		for x := region.Min.X; x < region.Max.X; x++ {
			cell := Cell{Row: y, Col: x}
			i := base + x - region.Min.X
			scaled := cellDistance(cell, wc.Cell) / g.Scale
			v := policy.PixelValue(g.values[i], cell, wc, scaled)
			switch {
			case !(v >= 0): // negative or NaN
				v = 0
			case v > math.MaxFloat64:
				v = math.MaxFloat64
			}
			g.values[i] = v
			g.MaxValue = max(g.MaxValue, v)
		}
	}
	return region, true
}
