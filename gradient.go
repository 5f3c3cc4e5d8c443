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
	"image/color"
	"math"
)

// Gradient is a colour ramp with equally spaced stops along [0,1].
// Channels are in [0,255].  The alpha value of a stop is kept, but not
// interpolated; the compositor derives alpha from the density instead.
type Gradient struct {
	stops []color.NRGBA
}

// DefaultGradient returns the ramp red → blue → green.
func DefaultGradient() *Gradient {
	return &Gradient{stops: []color.NRGBA{
		{R: 255, A: 255},
		{B: 255, A: 255},
		{G: 255, A: 255},
	}}
}

// NewGradient builds a gradient from [r, g, b] or [r, g, b, a] stops.
func NewGradient(colors [][]int) (*Gradient, error) {
	if len(colors) < 2 {
		return nil, ErrGradientStops
	}
	stops := make([]color.NRGBA, len(colors))
	for i, c := range colors {
		if len(c) != 3 && len(c) != 4 {
			return nil, &ColorError{Index: i, Channels: len(c)}
		}
		for _, v := range c {
			if v < 0 || v > 255 {
				return nil, &ColorError{Index: i, Channels: len(c)}
			}
		}
		stops[i] = color.NRGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 255}
		if len(c) == 4 {
			stops[i].A = uint8(c[3])
		}
	}
	return &Gradient{stops: stops}, nil
}

// Stops returns a copy of the gradient's colour stops.
func (g *Gradient) Stops() []color.NRGBA {
	return append([]color.NRGBA(nil), g.stops...)
}

// Interpolate returns the colour at position x along the ramp.
// Values of x outside [0,1] give an error; callers clamp first.
func (g *Gradient) Interpolate(x float64) (color.NRGBA, error) {
	if !(x >= 0 && x <= 1) {
		return color.NRGBA{}, &RangeError{Value: x}
	}
	return g.at(x), nil
}

// at is Interpolate without the range check.
func (g *Gradient) at(x float64) color.NRGBA {
	n := len(g.stops)
	spacing := 1 / float64(n-1)
	lo := int(math.Floor(x / spacing))
	lo = min(lo, n-2)
	t := x/spacing - float64(lo)

	a, b := g.stops[lo], g.stops[lo+1]
	c := color.NRGBA{
		R: lerp8(a.R, b.R, t),
		G: lerp8(a.G, b.G, t),
		B: lerp8(a.B, b.B, t),
		A: a.A,
	}
	if t >= 0.5 {
		c.A = b.A
	}
	return c
}

func lerp8(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	return uint8(math.Round(max(0, min(255, v))))
}
