package heatmap

//go:generate go run ./testcases/export
//go:generate go run ./testcases/genpdf

import (
	"context"
	"fmt"

	"seehuhn.de/go/heatmap/testcases"
)

// RenderExample builds the heatmap of a test case on a headless map and
// runs all queued work.  Half of the points are added before the map has
// a viewport, the rest one at a time afterwards, so that both the replay
// and the incremental path contribute to the result.
func RenderExample(ctx context.Context, tc testcases.TestCase) (*Heatmap, error) {
	mt, err := ParseMapType(tc.MapType)
	if err != nil {
		return nil, err
	}
	opts := Options{Radius: tc.Radius, MapType: mt}

	pts := make([]GeoPoint, len(tc.Points))
	for i, p := range tc.Points {
		pts[i], err = NewGeoPoint(p.Lat, p.Lng, p.Weight)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tc.Name, err)
		}
	}

	m := NewStaticMap(tc.Width, tc.Height)
	h, err := New(m, nil, opts)
	if err != nil {
		return nil, err
	}
	half := len(pts) / 2
	if err := h.AddPoints(pts[:half]); err != nil {
		return nil, err
	}

	centre := LatLng{Lat: tc.Center.Lat, Lng: tc.Center.Lng}
	m.SetZoom(tc.Zoom, BoundsAround(centre, tc.Zoom, tc.Width, tc.Height))
	if err := h.Flush(ctx); err != nil {
		return nil, err
	}
	for _, p := range pts[half:] {
		if err := h.AddPoint(p); err != nil {
			return nil, err
		}
	}
	if err := h.Flush(ctx); err != nil {
		return nil, err
	}
	return h, nil
}
