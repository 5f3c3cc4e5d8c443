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
	"context"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const (
	testZoom = 3
	testSize = 16
)

// newTestMap returns a testSize×testSize map centred on (0, 0).
func newTestMap() *StaticMap {
	m := NewStaticMap(testSize, testSize)
	m.SetZoom(testZoom, BoundsAround(LatLng{}, testZoom, testSize, testSize))
	return m
}

// newReady returns a heatmap over m which has finished its first build.
func newReady(t *testing.T, m Map, s Surface, opts Options) *Heatmap {
	t.Helper()
	h, err := New(m, s, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.State() != StateReady {
		t.Fatalf("state %v after flush", h.State())
	}
	return h
}

// pixelLatLng returns the geographic coordinate of a canvas pixel centre.
func pixelLatLng(f *ViewportFrame, row, col int) LatLng {
	ll, _ := projector{Mercator{}}.Unproject(f.CanvasToWorld(row, col))
	return ll
}

// pointsNear returns n weighted points around the centre of f.
func pointsNear(f *ViewportFrame, n int) []GeoPoint {
	res := make([]GeoPoint, n)
	for i := range res {
		row := f.Height/2 + i%5 - 2
		col := f.Width/2 + (i/5)%5 - 2
		ll := pixelLatLng(f, row, col)
		res[i] = GeoPoint{Lat: ll.Lat, Lng: ll.Lng, Weight: float64(1 + i%3)}
	}
	return res
}

func assertSameGrid(t *testing.T, got, want *DensityGrid) {
	t.Helper()
	if got.Bounds() != want.Bounds() || got.Origin != want.Origin || got.Scale != want.Scale {
		t.Fatalf("grid geometry differs: %v %v %g, want %v %v %g",
			got.Bounds(), got.Origin, got.Scale, want.Bounds(), want.Origin, want.Scale)
	}
	for i := range want.values {
		if math.Abs(got.values[i]-want.values[i]) > 1e-9 {
			t.Fatalf("cell %d: %g, want %g", i, got.values[i], want.values[i])
		}
	}
	if math.Abs(got.MaxValue-want.MaxValue) > 1e-9 {
		t.Errorf("MaxValue %g, want %g", got.MaxValue, want.MaxValue)
	}
}

// reference builds a fresh grid for m holding pts.
func reference(t *testing.T, m Map, opts Options, pts []GeoPoint) *DensityGrid {
	t.Helper()
	h, err := New(m, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.AddPoints(pts); err != nil {
		t.Fatal(err)
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	return h.Grid()
}

func TestNewErrors(t *testing.T) {
	if _, err := New(nil, nil, Options{}); err == nil {
		t.Error("nil map accepted")
	}
	_, err := New(newTestMap(), nil, Options{Radius: -3})
	if !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("invalid options: err = %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	m := NewStaticMap(testSize, testSize)
	h, err := New(m, nil, Options{Radius: 1})
	if err != nil {
		t.Fatal(err)
	}
	if h.State() != StateEmpty || h.Busy() || h.Frame() != nil {
		t.Fatalf("new heatmap without viewport: state %v, busy %t", h.State(), h.Busy())
	}

	// Points added before the map has a viewport are kept.
	if err := h.AddPoint(GeoPoint{Lat: 0.1, Lng: 0.1, Weight: 1}); err != nil {
		t.Fatal(err)
	}
	if h.State() != StateEmpty || h.Busy() || h.Tick() {
		t.Fatal("work scheduled without a viewport")
	}

	m.SetZoom(testZoom, BoundsAround(LatLng{}, testZoom, testSize, testSize))
	if !h.Busy() {
		t.Fatal("no rebuild scheduled after the viewport appeared")
	}
	h.Tick()
	if h.State() != StateBuilding {
		t.Fatalf("state %v after first tick", h.State())
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.State() != StateReady || h.Generation() != 1 {
		t.Fatalf("state %v, generation %d", h.State(), h.Generation())
	}
	if h.Grid().NonZero() == 0 {
		t.Error("early point missing from the grid")
	}
	if r := h.Raster(); r == nil || r.Rect != image.Rect(0, 0, testSize, testSize) {
		t.Error("no raster after build")
	}
}

func TestStateTransitions(t *testing.T) {
	h := &Heatmap{state: StateReady}
	h.setState(StateBuilding)
	if h.state != StateReady {
		t.Errorf("ready -> building allowed")
	}
	h.setState(StateStale)
	h.setState(StateEmpty)
	if h.state != StateStale {
		t.Errorf("state %v, want stale", h.state)
	}
	h.setState(StateBuilding)
	h.setState(StateReady)
	if h.state != StateReady {
		t.Errorf("state %v, want ready", h.state)
	}
	if s := State(9).String(); s != "State(9)" {
		t.Errorf("String = %q", s)
	}
}

func TestAddPointSync(t *testing.T) {
	m := newTestMap()
	s := NewImageSurface(testSize, testSize)
	h := newReady(t, m, s, Options{Radius: 2})

	ll := pixelLatLng(h.Frame(), 5, 9)
	if err := h.AddPoint(GeoPoint{Lat: ll.Lat, Lng: ll.Lng, Weight: 2}); err != nil {
		t.Fatal(err)
	}
	if h.Busy() {
		t.Error("single point was queued")
	}

	if a := h.Raster().NRGBAAt(9, 5).A; a != defaultOpacity {
		t.Errorf("raster alpha at point %d, want %d", a, defaultOpacity)
	}
	if a := s.Dst.(*image.RGBA).RGBAAt(9, 5).A; a == 0 {
		t.Error("point not drawn onto the surface")
	}
	if a := h.Raster().NRGBAAt(0, 15).A; a != 0 {
		t.Errorf("far pixel has alpha %d", a)
	}

	// The incremental update equals a complete render.
	full := h.comp.Render(h.Grid(), h.Frame())
	for y := range testSize {
		for x := range testSize {
			if h.Raster().NRGBAAt(x, y) != full.NRGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) differs from full render", x, y)
			}
		}
	}
}

func TestRepaintInterval(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	m := newTestMap()
	h, err := New(m, nil, Options{Radius: 1, FlushEvery: 3})
	if err != nil {
		t.Fatal(err)
	}
	h.SetMetrics(metrics)
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, p := range pointsNear(h.Frame(), 4) {
		if err := h.AddPoint(p); err != nil {
			t.Fatal(err)
		}
	}
	full := testutil.ToFloat64(metrics.RasterPasses.WithLabelValues("full"))
	incr := testutil.ToFloat64(metrics.RasterPasses.WithLabelValues("incremental"))
	if full != 2 || incr != 3 {
		t.Errorf("%g full and %g incremental passes, want 2 and 3", full, incr)
	}
}

func TestChunking(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	m := newTestMap()
	h := newReady(t, m, nil, Options{Radius: 1, ChunkSize: 10})
	h.SetMetrics(metrics)

	if err := h.AddPoints(pointsNear(h.Frame(), 35)); err != nil {
		t.Fatal(err)
	}
	if !h.Busy() {
		t.Fatal("large batch applied synchronously")
	}
	if n := testutil.ToFloat64(metrics.QueueDepth); n != 1 {
		t.Errorf("queue depth %g, want 1", n)
	}

	for i, want := range []float64{10, 20, 30, 35} {
		more := h.Tick()
		got := testutil.ToFloat64(metrics.PointsAccumulated)
		if got != want {
			t.Errorf("tick %d: %g points accumulated, want %g", i, got, want)
		}
		if more != (i < 3) {
			t.Errorf("tick %d reported more work: %t", i, more)
		}
	}
	if h.State() != StateReady || h.Generation() != 1 {
		t.Errorf("state %v, generation %d", h.State(), h.Generation())
	}
	assertSameGrid(t, h.Grid(), reference(t, m, Options{Radius: 1}, h.Points()))
}

func TestPointsDuringRebuild(t *testing.T) {
	m := newTestMap()
	opts := Options{Radius: 2, ChunkSize: 5}
	h := newReady(t, m, nil, opts)
	if err := h.AddPoints(pointsNear(h.Frame(), 12)); err != nil {
		t.Fatal(err)
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	m.Pan(20, 0)
	if h.State() != StateStale {
		t.Fatalf("state %v after leaving the grid", h.State())
	}
	h.Tick() // new grid
	h.Tick() // first chunk
	if h.State() != StateBuilding {
		t.Fatalf("state %v during rebuild", h.State())
	}

	extra := pointsNear(h.Frame(), 3)
	if err := h.AddPoints(extra); err != nil {
		t.Fatal(err)
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	if h.Generation() != 2 || len(h.Points()) != 15 {
		t.Fatalf("generation %d with %d points", h.Generation(), len(h.Points()))
	}
	assertSameGrid(t, h.Grid(), reference(t, m, opts, h.Points()))
}

func TestStaleBatchAborted(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	m := newTestMap()
	opts := Options{Radius: 2, ChunkSize: 5}
	h := newReady(t, m, nil, opts)
	h.SetMetrics(metrics)
	if err := h.AddPoints(pointsNear(h.Frame(), 8)); err != nil {
		t.Fatal(err)
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	m.Pan(20, 0)
	h.Tick() // generation 2 starts
	m.Pan(20, 0)
	if h.State() != StateBuilding {
		t.Fatalf("state %v, want building", h.State())
	}

	// This batch targets generation 2, which the queued rebuild replaces.
	if err := h.AddPoints(pointsNear(h.Frame(), 7)); err != nil {
		t.Fatal(err)
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	if n := testutil.ToFloat64(metrics.BatchesAborted); n != 1 {
		t.Errorf("%g batches aborted, want 1", n)
	}
	if h.Generation() != 3 || h.State() != StateReady {
		t.Errorf("generation %d, state %v", h.Generation(), h.State())
	}
	assertSameGrid(t, h.Grid(), reference(t, m, opts, h.Points()))
}

func TestDeferredRebuild(t *testing.T) {
	m := newTestMap()
	h := newReady(t, m, nil, Options{Radius: 1})
	if err := h.AddPoints(pointsNear(h.Frame(), 4)); err != nil {
		t.Fatal(err)
	}

	b, _ := m.Bounds()
	m.SetZoom(testZoom+1, b)
	h.Tick()
	if h.State() != StateBuilding {
		t.Fatalf("state %v, want building", h.State())
	}

	// Several requests while building collapse into one queued rebuild.
	h.ZoomChanged()
	h.ZoomChanged()
	h.BoundsChanged()
	if h.State() != StateBuilding {
		t.Errorf("state %v, want building", h.State())
	}
	if n := h.queue.len(); n != 2 {
		t.Errorf("%d jobs queued, want 2", n)
	}

	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.Generation() != 3 || h.State() != StateReady {
		t.Errorf("generation %d, state %v", h.Generation(), h.State())
	}
}

func TestZoomScale(t *testing.T) {
	m := newTestMap()
	opts := Options{Radius: 1}
	h := newReady(t, m, nil, opts)
	centre := pixelLatLng(h.Frame(), 8, 8)
	if err := h.AddPoint(GeoPoint{Lat: centre.Lat, Lng: centre.Lng, Weight: 1}); err != nil {
		t.Fatal(err)
	}
	if n := h.Grid().NonZero(); n != 9 {
		t.Errorf("%d cells at initial zoom, want 9", n)
	}

	m.SetZoom(testZoom+1, BoundsAround(centre, testZoom+1, testSize, testSize))
	if h.State() != StateStale {
		t.Errorf("state %v after zoom, want stale", h.State())
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if g := h.Grid(); g.Scale != 2 || g.NonZero() != 25 {
		t.Errorf("scale %g with %d cells, want 2 with 25", g.Scale, g.NonZero())
	}

	// Zooming out never shrinks the kernel below its configured extent.
	m.SetZoom(testZoom-1, BoundsAround(centre, testZoom-1, testSize, testSize))
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if g := h.Grid(); g.Scale != 1 || g.NonZero() != 9 {
		t.Errorf("scale %g with %d cells, want 1 with 9", g.Scale, g.NonZero())
	}

	// New options make the current zoom the reference.
	m.SetZoom(testZoom+2, BoundsAround(centre, testZoom+2, testSize, testSize))
	if err := h.SetOptions(opts); err != nil {
		t.Fatal(err)
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if g := h.Grid(); g.Scale != 1 {
		t.Errorf("scale %g after SetOptions, want 1", g.Scale)
	}
}

func TestPanWithinGrid(t *testing.T) {
	m := newTestMap()
	h := newReady(t, m, nil, Options{Radius: 1})
	ll := pixelLatLng(h.Frame(), 8, 8)
	if err := h.AddPoint(GeoPoint{Lat: ll.Lat, Lng: ll.Lng, Weight: 1}); err != nil {
		t.Fatal(err)
	}

	m.Pan(2, -3)
	if h.Busy() || h.Generation() != 1 || h.State() != StateReady {
		t.Fatalf("pan inside the grid caused a rebuild")
	}
	if a := h.Raster().NRGBAAt(6, 11).A; a != defaultOpacity {
		t.Errorf("alpha at moved point %d, want %d", a, defaultOpacity)
	}
	if a := h.Raster().NRGBAAt(8, 8).A; a != 0 {
		t.Errorf("alpha at old position %d", a)
	}
}

func TestResize(t *testing.T) {
	m := newTestMap()
	h := newReady(t, m, nil, Options{})
	m.Resize(20, 12)
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r := h.Raster().Rect; r.Dx() != 20 || r.Dy() != 12 {
		t.Errorf("raster %v after resize", r)
	}
	if g := h.Grid(); g.Width != 60 || g.Height != 36 {
		t.Errorf("grid %dx%d after resize", g.Width, g.Height)
	}
}

func TestInvalidPointsRejected(t *testing.T) {
	m := newTestMap()
	h := newReady(t, m, nil, Options{Radius: 1})
	if err := h.AddPoints(pointsNear(h.Frame(), 3)); err != nil {
		t.Fatal(err)
	}
	cells := h.Grid().NonZero()
	maxValue := h.Grid().MaxValue

	batch := pointsNear(h.Frame(), 3)
	batch[1].Weight = -1
	err := h.AddPoints(batch)
	if !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("err = %v, want ErrInvalidWeight", err)
	}
	var we *WeightError
	if !errors.As(err, &we) || we.Index != 1 {
		t.Errorf("error %v does not name point 1", err)
	}

	batch[1] = GeoPoint{Lat: math.NaN(), Lng: 0, Weight: 1}
	if err := h.AddPoints(batch); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("err = %v, want ErrInvalidCoordinate", err)
	}

	if n := len(h.Points()); n != 3 {
		t.Errorf("%d points retained, want 3", n)
	}
	if h.Grid().NonZero() != cells || h.Grid().MaxValue != maxValue || h.Busy() {
		t.Error("rejected batch changed the grid")
	}
}

func TestUnweightedCount(t *testing.T) {
	m := newTestMap()
	h := newReady(t, m, nil, Options{})
	a, _ := NewGeoPoint(0.1, 0.2)
	b, _ := NewGeoPoint(0.3, 0.4, 0)
	c, _ := NewGeoPoint(0.5, 0.6)
	if err := h.AddPoints([]GeoPoint{a, b, c}); err != nil {
		t.Fatal(err)
	}
	if n := h.UnweightedCount(); n != 2 {
		t.Errorf("UnweightedCount = %d, want 2", n)
	}
}

func TestOutsidePoints(t *testing.T) {
	far := LatLng{Lat: 45, Lng: 90}

	for _, drop := range []bool{false, true} {
		m := newTestMap()
		h := newReady(t, m, nil, Options{Radius: 1, DropOutside: drop})
		if err := h.AddPoint(GeoPoint{Lat: far.Lat, Lng: far.Lng, Weight: 1}); err != nil {
			t.Fatal(err)
		}
		if h.Grid().MaxValue != 0 {
			t.Errorf("drop=%t: outside point changed the grid", drop)
		}
		if n := len(h.Points()); n != 1-b2i(drop) {
			t.Errorf("drop=%t: %d points retained", drop, n)
		}

		m.SetBounds(BoundsAround(far, testZoom, testSize, testSize))
		if err := h.Flush(context.Background()); err != nil {
			t.Fatal(err)
		}
		if got := h.Grid().NonZero() > 0; got == drop {
			t.Errorf("drop=%t: point present after moving there: %t", drop, got)
		}
	}
}

func TestDropOutsideKeepsReplayed(t *testing.T) {
	m := newTestMap()
	h := newReady(t, m, nil, Options{Radius: 1, DropOutside: true})
	if err := h.AddPoints(pointsNear(h.Frame(), 4)); err != nil {
		t.Fatal(err)
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	home, _ := m.Bounds()

	// Moving away rebuilds without the points, but keeps them.
	m.SetBounds(BoundsAround(LatLng{Lat: 45, Lng: 90}, testZoom, testSize, testSize))
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := h.Grid().NonZero(); n != 0 {
		t.Errorf("%d non-zero cells away from the points", n)
	}

	m.SetBounds(home)
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(h.Points()); n != 4 {
		t.Errorf("%d points retained, want 4", n)
	}
	if h.Grid().NonZero() == 0 {
		t.Error("points missing after moving back")
	}
}

func TestRebuildAfterViewportReturns(t *testing.T) {
	m := newTestMap()
	h := newReady(t, m, nil, Options{Radius: 1})

	m.Resize(0, 0)
	if err := h.SetOptions(Options{Radius: 3}); err != nil {
		t.Fatal(err)
	}
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.State() != StateStale {
		t.Fatalf("state %v without viewport, want stale", h.State())
	}

	m.Resize(testSize, testSize)
	if err := h.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.State() != StateReady {
		t.Errorf("state %v, want ready", h.State())
	}
	if g := h.Grid(); g.RowExtent != 3 || g.ColExtent != 3 {
		t.Errorf("extent %dx%d, want 3x3", g.RowExtent, g.ColExtent)
	}
}

func TestHugeWeights(t *testing.T) {
	m := newTestMap()
	h := newReady(t, m, nil, Options{Radius: 1})
	ll := pixelLatLng(h.Frame(), 8, 8)
	for range 2 {
		if err := h.AddPoint(GeoPoint{Lat: ll.Lat, Lng: ll.Lng, Weight: 1e308}); err != nil {
			t.Fatal(err)
		}
	}

	if v := h.Grid().MaxValue; v != math.MaxFloat64 {
		t.Errorf("maximum %g, want MaxFloat64", v)
	}
	if px := h.Raster().NRGBAAt(8, 8); px.A != defaultOpacity {
		t.Errorf("pixel %v, want opacity %d", px, defaultOpacity)
	}
	if gr := GrayImage(h.Grid(), h.Frame(), true).GrayAt(8, 8).Y; gr != 255 {
		t.Errorf("grey level %d, want 255", gr)
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestCustomPolicy(t *testing.T) {
	m := newTestMap()
	half := PixelFunc(func(old float64, cell Cell, p WeightedCell, _ float64) float64 {
		if cell != p.Cell {
			return old
		}
		return min(1, old+0.5*p.Weight)
	})
	h := newReady(t, m, nil, Options{CalculatePixelValue: half})
	ll := pixelLatLng(h.Frame(), 4, 4)
	if err := h.AddPoint(GeoPoint{Lat: ll.Lat, Lng: ll.Lng, Weight: 1}); err != nil {
		t.Fatal(err)
	}

	// Without normalisation 0.5 is mid-gradient, not the maximum.
	px := h.Raster().NRGBAAt(4, 4)
	if px.R != 0 || px.G != 0 || px.B != 255 || px.A != defaultOpacity {
		t.Errorf("pixel %v, want opaque blue", px)
	}
}

func TestFlushCancelled(t *testing.T) {
	m := newTestMap()
	h, err := New(m, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Flush(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Flush = %v, want context.Canceled", err)
	}
	if !h.Busy() {
		t.Error("cancelled flush dropped the queued rebuild")
	}
}

func TestWritePDFNotReady(t *testing.T) {
	h, err := New(NewStaticMap(4, 4), nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.WritePDF(t.TempDir() + "/out.pdf"); !errors.Is(err, ErrNoViewport) {
		t.Errorf("WritePDF = %v, want ErrNoViewport", err)
	}
}
