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
	"errors"
	"fmt"
)

// Sentinel errors for the heatmap package.
var (
	// ErrInvalidWeight is returned for negative or non-finite point weights.
	ErrInvalidWeight = errors.New("heatmap: weight must be finite and >= 0")

	// ErrInvalidCoordinate is returned for non-finite latitudes or longitudes.
	ErrInvalidCoordinate = errors.New("heatmap: coordinate must be finite")

	// ErrInvalidColor is returned for gradient colours with a channel count
	// other than 3 or 4, or with channels outside [0,255].
	ErrInvalidColor = errors.New("heatmap: invalid gradient color")

	// ErrGradientStops is returned when a gradient has fewer than 2 stops.
	ErrGradientStops = errors.New("heatmap: gradient needs at least 2 stops")

	// ErrOutOfRange is returned by Gradient.Interpolate for arguments
	// outside [0,1].
	ErrOutOfRange = errors.New("heatmap: value outside [0,1]")

	// ErrInvalidOptions is returned when Options fail validation.
	ErrInvalidOptions = errors.New("heatmap: invalid options")

	// ErrNoViewport is returned by operations which need a density grid
	// and a viewport before either exists.
	ErrNoViewport = errors.New("heatmap: no viewport yet")
)

// WeightError reports an invalid weight at a position in an input batch.
type WeightError struct {
	Index  int
	Weight float64
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("heatmap: point %d: weight %g must be finite and >= 0", e.Index, e.Weight)
}

func (e *WeightError) Unwrap() error {
	return ErrInvalidWeight
}

// ColorError reports a malformed gradient stop.
type ColorError struct {
	Index    int // position of the stop in the gradient
	Channels int // number of channels supplied
}

func (e *ColorError) Error() string {
	return fmt.Sprintf("heatmap: gradient stop %d: need 3 or 4 channels in [0,255], got %d channels",
		e.Index, e.Channels)
}

func (e *ColorError) Unwrap() error {
	return ErrInvalidColor
}

// RangeError reports a gradient argument outside [0,1].
type RangeError struct {
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("heatmap: x (%g) must be between 0 and 1", e.Value)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
