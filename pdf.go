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

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics/color"
)

// WritePDF writes the visible part of the density grid as a single-page
// PDF.  Each canvas pixel becomes a 1×1 point square whose grey level is
// the normalised density, on a black background.
func (h *Heatmap) WritePDF(path string) error {
	if h.grid == nil || h.frame == nil {
		return ErrNoViewport
	}
	return WritePDF(path, GrayImage(h.grid, h.frame, h.comp.Normalize))
}

// WritePDF writes a grey density image as a single-page PDF, one point
// per pixel.  Rasterising the page at 72 dpi reproduces img.
func WritePDF(path string, img *image.Gray) error {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	paper := &pdf.Rectangle{
		URx: float64(w),
		URy: float64(h),
	}
	page, err := document.CreateSinglePage(path, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	page.SetFillColor(color.DeviceGray(0))
	page.Rectangle(0, 0, float64(w), float64(h))
	page.Fill()

	// PDF origin is bottom-left; image rows count from the top.
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0, float64(h)})

	// Group pixels by grey level, so that each level needs one fill.
	var levels [256][]image.Point
	for y := range h {
		for x := range w {
			if v := img.GrayAt(img.Rect.Min.X+x, img.Rect.Min.Y+y).Y; v > 0 {
				levels[v] = append(levels[v], image.Pt(x, y))
			}
		}
	}
	for v, pixels := range levels {
		if len(pixels) == 0 {
			continue
		}
		page.SetFillColor(color.DeviceGray(float64(v) / 255))
		for _, p := range pixels {
			page.Rectangle(float64(p.X), float64(p.Y), 1, 1)
		}
		page.Fill()
	}

	return page.Close()
}
