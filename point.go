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

import "fmt"

// GeoPoint is a weighted geographic point.
//
// A GeoPoint literal has the weight given in the Weight field, so
// omitting it gives weight 0.  Use [NewGeoPoint] or [ParsePoint] to get
// the default weight of 1.
type GeoPoint struct {
	Lat, Lng float64
	Weight   float64

	unweighted bool
}

// NewGeoPoint returns a point with the given weight.  If weight is
// omitted, it defaults to 1.
func NewGeoPoint(lat, lng float64, weight ...float64) (GeoPoint, error) {
	p := GeoPoint{Lat: lat, Lng: lng, Weight: 1, unweighted: true}
	switch len(weight) {
	case 0:
	case 1:
		p.Weight = weight[0]
		p.unweighted = false
	default:
		return GeoPoint{}, fmt.Errorf("heatmap: at most one weight, got %d", len(weight))
	}
	if err := p.validate(0); err != nil {
		return GeoPoint{}, err
	}
	return p, nil
}

// ParsePoint converts a [lat, lng] or [lat, lng, weight] tuple.
func ParsePoint(t []float64) (GeoPoint, error) {
	if len(t) != 2 && len(t) != 3 {
		return GeoPoint{}, fmt.Errorf("heatmap: point needs 2 or 3 values, got %d", len(t))
	}
	return NewGeoPoint(t[0], t[1], t[2:]...)
}

func (p GeoPoint) validate(idx int) error {
	if !isFinite(p.Lat) || !isFinite(p.Lng) {
		return fmt.Errorf("%w (point %d: %g, %g)", ErrInvalidCoordinate, idx, p.Lat, p.Lng)
	}
	if p.Weight < 0 || !isFinite(p.Weight) {
		return &WeightError{Index: idx, Weight: p.Weight}
	}
	return nil
}
