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

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"seehuhn.de/go/heatmap"
)

// readPoints parses CSV rows of the form lat,lng[,weight].  Lines starting
// with '#' are comments.  A first row which does not start with a number
// is taken to be a header and skipped.
func readPoints(r io.Reader) ([]heatmap.GeoPoint, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var res []heatmap.GeoPoint
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		if first && len(rec) > 0 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64); err != nil {
				continue
			}
		}

		vals := make([]float64, len(rec))
		for i, field := range rec {
			vals[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		p, err := heatmap.ParsePoint(vals)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		res = append(res, p)
	}
	return res, nil
}

// fitView returns the centre and the largest integer zoom level at which
// all points fit onto a width×height canvas.  It returns false if there
// are no points.
func fitView(pts []heatmap.GeoPoint, width, height int) (heatmap.LatLng, float64, bool) {
	if len(pts) == 0 {
		return heatmap.LatLng{}, 0, false
	}

	var proj heatmap.Mercator
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		x, y := proj.FromLatLngToWorldPoint(p.Lat, p.Lng)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}

	lat, lng := proj.FromWorldPointToLatLng((minX+maxX)/2, (minY+maxY)/2)
	centre := heatmap.LatLng{Lat: lat, Lng: lng}

	// One world unit is 2^zoom pixels.
	zoom := float64(maxZoom)
	if dx := maxX - minX; dx > 0 {
		zoom = min(zoom, math.Log2(float64(width)/dx))
	}
	if dy := maxY - minY; dy > 0 {
		zoom = min(zoom, math.Log2(float64(height)/dy))
	}
	zoom = max(0, math.Floor(zoom))
	return centre, zoom, true
}
