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

// Package heatmap renders a density surface over weighted geographic
// points shown on a pannable, zoomable map.
//
// Points are accumulated into a density grid three times the size of the
// viewport, so that panning needs no recomputation until the view leaves
// the grid.  A single new point costs time proportional to the kernel
// footprint only.  Large point sets are applied in chunks, one chunk per
// call to [Heatmap.Tick], so the host's event loop stays responsive.
//
// A Heatmap is not safe for concurrent use.  All methods, including the
// host's event callbacks and Tick, must be called from one goroutine.
package heatmap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
)

// State is the condition of a heatmap's density grid.
type State int

const (
	// StateEmpty means no grid has been built yet.
	StateEmpty State = iota

	// StateBuilding means a grid exists and the retained points are being
	// replayed into it.
	StateBuilding

	// StateReady means the grid holds all points and matches the map.
	StateReady

	// StateStale means the grid no longer matches the map's zoom, viewport
	// or options, and a rebuild is queued or waits for a viewport.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// transitions lists the allowed state changes.
var transitions = map[State][]State{
	StateEmpty:    {StateBuilding},
	StateBuilding: {StateReady},
	StateReady:    {StateStale},
	StateStale:    {StateBuilding},
}

// Heatmap keeps a density grid for a host map and draws it onto a
// surface.
type Heatmap struct {
	host    Map
	proj    projector
	surface Surface
	metrics *Metrics

	cfg  *settings
	comp Compositor

	state       State
	frame       *ViewportFrame
	grid        *DensityGrid
	generation  uint64
	gridZoom    float64
	initialZoom float64 // zoom level at which the kernel has scale 1
	haveZoomRef bool

	points     []GeoPoint
	dropped    []bool // parallel to points; set for discarded points
	unweighted int

	queue         jobQueue
	rebuildQueued bool // a rebuild job is queued and has not started

	raster      *image.NRGBA
	rasterFrame *ViewportFrame
	rasterGen   uint64
	ticks       int // incremental updates since the last full pass
}

// New creates a heatmap drawn over m onto s.  The kernel extent applies
// at the map's current zoom level, or at the zoom level of the first
// viewport if m has none yet.  The surface may be nil,
// in which case the raster is only available through Raster.  If m
// implements Notifier, the heatmap subscribes to its events; otherwise
// the host calls ZoomChanged and BoundsChanged itself.
func New(m Map, s Surface, opts Options) (*Heatmap, error) {
	if m == nil {
		return nil, errors.New("heatmap: nil map")
	}
	cfg, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	h := &Heatmap{
		host:    m,
		proj:    projector{m.Projection()},
		surface: s,
	}
	h.configure(cfg)

	if n, ok := m.(Notifier); ok {
		n.OnZoomChanged(h.ZoomChanged)
		n.OnBoundsChanged(h.BoundsChanged)
	}

	if h.refreshFrame() {
		h.initialZoom = m.Zoom()
		h.haveZoomRef = true
		h.scheduleRebuild("viewport")
	}
	return h, nil
}

// SetMetrics installs a metrics collector.  Nil disables metrics.
func (h *Heatmap) SetMetrics(m *Metrics) {
	h.metrics = m
}

// SetOptions replaces the complete configuration.  On error the previous
// configuration stays in effect.  The zoom scale is reset so that the
// current zoom level becomes the reference, and the grid is rebuilt.
func (h *Heatmap) SetOptions(opts Options) error {
	cfg, err := opts.resolve()
	if err != nil {
		return err
	}
	h.configure(cfg)
	h.initialZoom = h.host.Zoom()
	h.haveZoomRef = true
	h.invalidate("options")
	return nil
}

func (h *Heatmap) configure(cfg *settings) {
	h.cfg = cfg
	h.comp = Compositor{
		Gradient:  cfg.gradient,
		Opacity:   cfg.opacity,
		Epsilon:   cfg.epsilon,
		Normalize: cfg.normalize,
	}
	h.raster = nil
}

// AddPoint adds a single point.
func (h *Heatmap) AddPoint(p GeoPoint) error {
	return h.AddPoints([]GeoPoint{p})
}

// AddPoints adds a set of points.  If any point is invalid, an error is
// returned and none of the points is added.
//
// When the grid is ready and nothing else is queued, fewer than
// Options.ChunkSize points are applied immediately and the affected part
// of the raster is redrawn.  Otherwise the points are queued behind the
// work already in progress and applied by Tick.
func (h *Heatmap) AddPoints(ps []GeoPoint) error {
	for i, p := range ps {
		if err := p.validate(i); err != nil {
			return err
		}
	}
	if len(ps) == 0 {
		return nil
	}

	start := len(h.points)
	for _, p := range ps {
		if p.unweighted {
			h.unweighted++
		}
	}
	h.points = append(h.points, ps...)
	h.dropped = append(h.dropped, make([]bool, len(ps))...)
	end := len(h.points)

	switch h.state {
	case StateReady:
		if h.queue.len() == 0 && len(ps) < h.cfg.chunkSize {
			h.addSync(start, end)
			return nil
		}
		h.pushBatch(start, end)
	case StateBuilding:
		h.pushBatch(start, end)
	default:
		// The queued or future rebuild replays all retained points.
		if h.frame != nil || h.refreshFrame() {
			h.scheduleRebuild("points")
		}
	}
	return nil
}

// ZoomChanged is called by the host after the zoom level changed.
// The grid is marked stale and a rebuild is queued.
func (h *Heatmap) ZoomChanged() {
	h.refreshFrame()
	h.invalidate("zoom")
}

// BoundsChanged is called by the host after the visible region or the
// canvas size changed.  If the grid still covers the viewport the raster
// is redrawn from it, otherwise a rebuild is queued.  A rebuild which was
// deferred for lack of a viewport is queued again.
func (h *Heatmap) BoundsChanged() {
	if !h.refreshFrame() {
		return
	}
	switch {
	case h.grid == nil:
		h.scheduleRebuild("viewport")
		return
	case h.state == StateStale:
		// A rebuild deferred while the map had no viewport.
		h.scheduleRebuild("viewport")
	case h.gridZoom != h.host.Zoom() || !h.grid.CoversFrame(h.frame):
		h.invalidate("viewport")
	}
	if h.state != StateBuilding {
		h.redraw()
	}
}

// Flush runs Tick until no work is left or ctx is done.
func (h *Heatmap) Flush(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !h.Tick() {
			return nil
		}
	}
}

// State returns the current state of the density grid.
func (h *Heatmap) State() State { return h.state }

// Busy reports whether work is queued.
func (h *Heatmap) Busy() bool { return h.queue.len() > 0 }

// Generation returns the number of grids built so far.
func (h *Heatmap) Generation() uint64 { return h.generation }

// Grid returns the current density grid, or nil.
func (h *Heatmap) Grid() *DensityGrid { return h.grid }

// Frame returns the current viewport frame, or nil if the map has no
// viewport.
func (h *Heatmap) Frame() *ViewportFrame { return h.frame }

// Raster returns the last rendered canvas raster, or nil.
func (h *Heatmap) Raster() *image.NRGBA { return h.raster }

// UnweightedCount returns the number of points added without a weight.
func (h *Heatmap) UnweightedCount() int { return h.unweighted }

// Points returns the retained points.
func (h *Heatmap) Points() []GeoPoint {
	res := make([]GeoPoint, 0, len(h.points))
	for i, p := range h.points {
		if !h.dropped[i] {
			res = append(res, p)
		}
	}
	return res
}

func (h *Heatmap) setState(s State) {
	for _, next := range transitions[h.state] {
		if next == s {
			Logger().Debug("heatmap state", "from", h.state, "to", s)
			h.state = s
			return
		}
	}
	Logger().Warn("ignoring invalid heatmap state transition", "from", h.state, "to", s)
}

// refreshFrame recomputes the viewport frame from the host and reports
// whether the map has a viewport.
func (h *Heatmap) refreshFrame() bool {
	b, ok := h.host.Bounds()
	if !ok {
		h.frame = nil
		return false
	}
	w, ht := h.host.CanvasSize()
	f, ok := NewViewportFrame(h.proj.p, b, w, ht)
	if !ok {
		h.frame = nil
		return false
	}
	h.frame = f
	return true
}

// invalidate marks the grid stale and queues a rebuild.  While a rebuild
// is in progress, the new one waits for it to finish.
func (h *Heatmap) invalidate(reason string) {
	if h.state == StateReady {
		h.setState(StateStale)
	}
	h.scheduleRebuild(reason)
}

func (h *Heatmap) scheduleRebuild(reason string) {
	if h.rebuildQueued {
		return
	}
	h.rebuildQueued = true
	h.queue.push(&job{rebuild: true})
	h.metrics.queueDepth(h.queue.len())
	Logger().Debug("rebuild scheduled", "reason", reason, "queued", h.queue.len())
}

func (h *Heatmap) pushBatch(start, end int) {
	h.queue.push(&job{gen: h.generation, next: start, end: end})
	h.metrics.queueDepth(h.queue.len())
}

// beginRebuild replaces the grid by an empty one for the current viewport
// and zoom.  It returns false if the map has no viewport yet.
func (h *Heatmap) beginRebuild() bool {
	if !h.refreshFrame() {
		Logger().Debug("rebuild deferred: no viewport")
		return false
	}
	zoom := h.host.Zoom()
	if !h.haveZoomRef {
		h.initialZoom = zoom
		h.haveZoomRef = true
	}
	scale := max(1, pow2(zoom-h.initialZoom))
	g := NewDensityGrid(h.frame, h.cfg.extent, scale)
	h.generation++
	g.Generation = h.generation
	h.grid = g
	h.gridZoom = zoom
	h.raster = nil
	h.setState(StateBuilding)
	h.metrics.rebuilt()
	Logger().Info("rebuilding density grid",
		"generation", g.Generation,
		"width", g.Width, "height", g.Height,
		"scale", scale, "points", len(h.points))
	return true
}

// accumulate applies point i to the grid and returns the cells visited.
// With DropOutside set, a point outside the grid is discarded if added
// is true; replays during a rebuild never discard points.
func (h *Heatmap) accumulate(i int, added bool) (image.Rectangle, bool) {
	p := h.points[i]
	wp, ok := h.proj.Project(p.Lat, p.Lng)
	if ok {
		var cells image.Rectangle
		cells, ok = h.grid.Accumulate(wp, p.Weight, h.cfg.policy)
		if ok {
			return cells, true
		}
	}
	if added && h.cfg.dropOutside {
		h.dropped[i] = true
	}
	return image.Rectangle{}, false
}

func (h *Heatmap) accumulateRange(start, end int, added bool) {
	in, out := 0, 0
	for i := start; i < end; i++ {
		if h.dropped[i] {
			continue
		}
		if _, ok := h.accumulate(i, added); ok {
			in++
		} else {
			out++
		}
	}
	h.metrics.accumulated(in)
	h.metrics.excluded(out)
}

// addSync applies points immediately and redraws the touched pixels.
// Every FlushEvery calls the whole raster is repainted, since a new
// maximum changes the colour of every pixel.
func (h *Heatmap) addSync(start, end int) {
	in, out := 0, 0
	var touched image.Rectangle
	for i := start; i < end; i++ {
		cells, ok := h.accumulate(i, true)
		if !ok {
			out++
			continue
		}
		in++
		if h.frame != nil {
			touched = touched.Union(CanvasRegion(h.grid, h.frame, cells))
		}
	}
	h.metrics.accumulated(in)
	h.metrics.excluded(out)
	if h.frame == nil {
		return
	}

	h.ticks++
	if h.ticks > h.cfg.flushEvery || !h.rasterValid() {
		h.redraw()
		return
	}
	h.redrawRegion(touched)
}

func (h *Heatmap) rasterValid() bool {
	return h.raster != nil && h.grid != nil && h.frame != nil &&
		h.rasterGen == h.grid.Generation &&
		h.rasterFrame.SameGeometry(h.frame)
}

// redraw renders the whole canvas and draws it onto the surface.
func (h *Heatmap) redraw() {
	if h.grid == nil || h.frame == nil {
		return
	}
	if h.raster != nil && h.raster.Rect.Dx() == h.frame.Width && h.raster.Rect.Dy() == h.frame.Height {
		h.comp.RenderRegion(h.raster, h.grid, h.frame, h.raster.Rect)
	} else {
		h.raster = h.comp.Render(h.grid, h.frame)
	}
	h.rasterFrame = h.frame
	h.rasterGen = h.grid.Generation
	h.ticks = 0
	h.metrics.rasterPass("full")
	Logger().Debug("full raster pass", "generation", h.rasterGen,
		"width", h.frame.Width, "height", h.frame.Height)

	if h.surface != nil {
		h.surface.Clear(h.raster.Rect)
		h.surface.Draw(h.raster, image.Point{})
	}
}

// redrawRegion re-renders the canvas pixels in r only.
func (h *Heatmap) redrawRegion(r image.Rectangle) {
	if r.Empty() {
		return
	}
	h.comp.RenderRegion(h.raster, h.grid, h.frame, r)
	h.metrics.rasterPass("incremental")
	if h.surface != nil {
		h.surface.Clear(r)
		h.surface.Draw(h.raster.SubImage(r), r.Min)
	}
}

func pow2(x float64) float64 {
	return math.Exp2(x)
}
