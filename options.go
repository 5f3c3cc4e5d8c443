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
	"fmt"
	"math"
)

// MapType selects the accumulation policy derived from the radius.
type MapType int

const (
	// MapHeatmap sums Gaussian kernel contributions.
	MapHeatmap MapType = iota

	// MapContour produces flat regions holding the largest nearby weight.
	MapContour
)

func (t MapType) String() string {
	switch t {
	case MapHeatmap:
		return "heatmap"
	case MapContour:
		return "contour"
	default:
		return fmt.Sprintf("MapType(%d)", int(t))
	}
}

// ParseMapType converts "heatmap" or "contour" to a MapType.
// The empty string selects MapHeatmap.
func ParseMapType(s string) (MapType, error) {
	switch s {
	case "", "heatmap":
		return MapHeatmap, nil
	case "contour":
		return MapContour, nil
	}
	return 0, fmt.Errorf("%w: unknown map type %q", ErrInvalidOptions, s)
}

// Options is the complete configuration of a heatmap.  SetOptions always
// replaces the whole configuration; zero fields select the defaults.
type Options struct {
	// Kernel overrides the Gaussian derived from Radius.
	Kernel Kernel

	// Radius of the default kernel and of contour regions, in pixels.
	Radius float64

	// KernelExtent overrides the extent derived from Radius, which is
	// ceil(Radius) in both directions.  The zero Extent means no override.
	KernelExtent Extent

	// CalculatePixelValue replaces the accumulation policy entirely.
	// Densities are then not normalised by the running maximum.
	CalculatePixelValue PixelPolicy

	// Gradient lists [r, g, b] or [r, g, b, a] colour stops.
	Gradient [][]int

	// Opacity of non-empty pixels.  Zero selects the default of 220;
	// there is no way to request fully transparent pixels.
	Opacity uint8

	// MapType selects between the heatmap and contour policies when no
	// CalculatePixelValue is given.
	MapType MapType

	// ChunkSize is the number of points accumulated per scheduling unit.
	// Smaller additions are accumulated synchronously.
	ChunkSize int

	// FlushEvery is the number of incremental updates after which the
	// full raster is repainted.
	FlushEvery int

	// Epsilon is the normalised density below which pixels fade out.
	Epsilon float64

	// DropOutside discards points which fall outside the current grid
	// when added, instead of keeping them for the next rebuild.
	DropOutside bool
}

// Default values for Options fields.
const (
	defaultRadius     = 10
	defaultOpacity    = 220
	defaultChunkSize  = 1000
	defaultFlushEvery = 20
	defaultEpsilon    = 1e-3
)

// settings is the resolved form of Options.
type settings struct {
	policy      PixelPolicy
	extent      Extent
	normalize   bool
	gradient    *Gradient
	opacity     uint8
	chunkSize   int
	flushEvery  int
	epsilon     float64
	dropOutside bool
}

// Validate checks the options for errors without applying them.
func (o *Options) Validate() error {
	_, err := o.resolve()
	return err
}

func (o *Options) resolve() (*settings, error) {
	if o.Radius < 0 || !isFinite(o.Radius) {
		return nil, fmt.Errorf("%w: radius %g", ErrInvalidOptions, o.Radius)
	}
	if o.KernelExtent.Rows < 0 || o.KernelExtent.Cols < 0 {
		return nil, fmt.Errorf("%w: kernel extent %v", ErrInvalidOptions, o.KernelExtent)
	}
	if o.ChunkSize < 0 || o.FlushEvery < 0 {
		return nil, fmt.Errorf("%w: chunk size %d, flush interval %d",
			ErrInvalidOptions, o.ChunkSize, o.FlushEvery)
	}
	if o.Epsilon < 0 || o.Epsilon >= 1 || math.IsNaN(o.Epsilon) {
		return nil, fmt.Errorf("%w: epsilon %g", ErrInvalidOptions, o.Epsilon)
	}
	if o.MapType != MapHeatmap && o.MapType != MapContour {
		return nil, fmt.Errorf("%w: map type %v", ErrInvalidOptions, o.MapType)
	}

	s := &settings{
		opacity:     o.Opacity,
		chunkSize:   o.ChunkSize,
		flushEvery:  o.FlushEvery,
		epsilon:     o.Epsilon,
		dropOutside: o.DropOutside,
		normalize:   true,
	}
	if s.opacity == 0 {
		s.opacity = defaultOpacity
	}
	if s.chunkSize == 0 {
		s.chunkSize = defaultChunkSize
	}
	if s.flushEvery == 0 {
		s.flushEvery = defaultFlushEvery
	}
	if s.epsilon == 0 {
		s.epsilon = defaultEpsilon
	}

	s.gradient = DefaultGradient()
	if o.Gradient != nil {
		g, err := NewGradient(o.Gradient)
		if err != nil {
			return nil, err
		}
		s.gradient = g
	}

	radius := o.Radius
	if radius == 0 {
		radius = defaultRadius
	}
	ext := int(math.Ceil(radius))
	s.extent = Extent{Rows: ext, Cols: ext}
	if o.KernelExtent != (Extent{}) {
		s.extent = o.KernelExtent
	}

	switch {
	case o.CalculatePixelValue != nil:
		s.policy = o.CalculatePixelValue
		s.normalize = false
	case o.MapType == MapContour:
		s.policy = ContourPolicy(radius)
	case o.Kernel != nil:
		s.policy = DefaultPolicy(o.Kernel)
	default:
		s.policy = DefaultPolicy(DefaultKernel(radius))
	}
	return s, nil
}
