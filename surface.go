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

	"golang.org/x/image/draw"
)

// Surface is the drawing target supplied by the host.
type Surface interface {
	// Clear makes the given canvas rectangle transparent.
	Clear(r image.Rectangle)

	// Draw composites src onto the canvas with the top-left corner of
	// src's bounds placed at dp.
	Draw(src image.Image, dp image.Point)
}

// ImageSurface is a Surface backed by an in-memory image.
type ImageSurface struct {
	Dst draw.Image
}

// NewImageSurface returns a surface drawing onto a new transparent RGBA
// image of the given size.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{Dst: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Clear implements the Surface interface.
func (s *ImageSurface) Clear(r image.Rectangle) {
	draw.Draw(s.Dst, r, image.Transparent, image.Point{}, draw.Src)
}

// Draw implements the Surface interface.
func (s *ImageSurface) Draw(src image.Image, dp image.Point) {
	sb := src.Bounds()
	r := image.Rectangle{Min: dp, Max: dp.Add(sb.Size())}
	draw.Draw(s.Dst, r, src, sb.Min, draw.Over)
}
