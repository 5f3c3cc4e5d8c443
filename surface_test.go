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
	"testing"
)

func TestImageSurface(t *testing.T) {
	s := NewImageSurface(4, 4)

	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range 4 {
		src.SetNRGBA(i%2, i/2, color.NRGBA{R: 255, A: 255})
	}
	s.Draw(src, image.Pt(1, 2))

	dst := s.Dst.(*image.RGBA)
	if got := dst.RGBAAt(1, 2); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("drawn pixel = %v", got)
	}
	if got := dst.RGBAAt(0, 0); got.A != 0 {
		t.Errorf("untouched pixel = %v", got)
	}

	// Drawing a sub-image places its origin at dp.
	s.Draw(src.SubImage(image.Rect(1, 1, 2, 2)), image.Pt(0, 0))
	if got := dst.RGBAAt(0, 0); got.A != 255 {
		t.Errorf("sub-image pixel = %v", got)
	}

	s.Clear(image.Rect(0, 0, 4, 3))
	if got := dst.RGBAAt(1, 2); got.A != 0 {
		t.Errorf("cleared pixel = %v", got)
	}
	if got := dst.RGBAAt(1, 3); got.A != 255 {
		t.Errorf("pixel outside cleared area = %v", got)
	}
}
