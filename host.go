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

// Map is the host map widget a heatmap is drawn over.
type Map interface {
	// Bounds returns the visible region.  The second return value is
	// false while the map has no viewport yet.
	Bounds() (Bounds, bool)

	// Zoom returns the current zoom level.  Each level doubles the scale.
	Zoom() float64

	// CanvasSize returns the size of the drawing canvas in pixels.
	CanvasSize() (width, height int)

	// Projection returns the map's geographic-to-world projection.
	Projection() Projection
}

// Notifier is implemented by maps which deliver change events.  A heatmap
// subscribes to these when it is created.
type Notifier interface {
	OnZoomChanged(func())
	OnBoundsChanged(func())
}

// StaticMap is an in-memory Map using the Mercator projection.
// Changing its state notifies subscribers synchronously.
type StaticMap struct {
	bounds    Bounds
	hasBounds bool
	zoom      float64
	width     int
	height    int

	zoomHandlers   []func()
	boundsHandlers []func()
}

// NewStaticMap returns a map with the given canvas size and no viewport.
func NewStaticMap(width, height int) *StaticMap {
	return &StaticMap{width: width, height: height}
}

// Bounds implements the Map interface.
func (m *StaticMap) Bounds() (Bounds, bool) { return m.bounds, m.hasBounds }

// Zoom implements the Map interface.
func (m *StaticMap) Zoom() float64 { return m.zoom }

// CanvasSize implements the Map interface.
func (m *StaticMap) CanvasSize() (width, height int) { return m.width, m.height }

// Projection implements the Map interface.
func (m *StaticMap) Projection() Projection { return Mercator{} }

// OnZoomChanged implements the Notifier interface.
func (m *StaticMap) OnZoomChanged(fn func()) {
	m.zoomHandlers = append(m.zoomHandlers, fn)
}

// OnBoundsChanged implements the Notifier interface.
func (m *StaticMap) OnBoundsChanged(fn func()) {
	m.boundsHandlers = append(m.boundsHandlers, fn)
}

// SetBounds changes the visible region.
func (m *StaticMap) SetBounds(b Bounds) {
	m.bounds = b
	m.hasBounds = true
	notify(m.boundsHandlers)
}

// SetZoom changes the zoom level and the visible region together, as a
// map widget does when zooming.
func (m *StaticMap) SetZoom(zoom float64, b Bounds) {
	m.zoom = zoom
	m.bounds = b
	m.hasBounds = true
	notify(m.zoomHandlers)
	notify(m.boundsHandlers)
}

// Resize changes the canvas size.
func (m *StaticMap) Resize(width, height int) {
	m.width = width
	m.height = height
	notify(m.boundsHandlers)
}

// Pan shifts the visible region by the given number of canvas pixels;
// positive dx moves east and positive dy moves south.
func (m *StaticMap) Pan(dx, dy int) {
	if !m.hasBounds || m.width <= 0 || m.height <= 0 {
		return
	}
	pr := projector{Mercator{}}
	sw, _ := pr.Project(m.bounds.SouthWest.Lat, m.bounds.SouthWest.Lng)
	ne, _ := pr.Project(m.bounds.NorthEast.Lat, m.bounds.NorthEast.Lng)
	xStep := (ne.X() - sw.X()) / float64(m.width)
	yStep := (sw.Y() - ne.Y()) / float64(m.height)
	shift := func(p WorldPoint) LatLng {
		q := WorldPoint{v: p.v}
		q.v.X += float64(dx) * xStep
		q.v.Y += float64(dy) * yStep
		ll, _ := pr.Unproject(q)
		return ll
	}
	m.bounds = Bounds{SouthWest: shift(sw), NorthEast: shift(ne)}
	notify(m.boundsHandlers)
}

// BoundsAround returns the region of a width×height canvas centred on c
// at the given zoom level, for the Mercator projection with 256-pixel
// tiles.
func BoundsAround(c LatLng, zoom float64, width, height int) Bounds {
	pr := projector{Mercator{}}
	center, _ := pr.Project(c.Lat, c.Lng)
	perPixel := 1 / pow2(zoom) // world units per screen pixel
	halfW := float64(width) / 2 * perPixel
	halfH := float64(height) / 2 * perPixel
	sw := WorldPoint{v: center.v}
	sw.v.X -= halfW
	sw.v.Y += halfH
	ne := WorldPoint{v: center.v}
	ne.v.X += halfW
	ne.v.Y -= halfH
	swLL, _ := pr.Unproject(sw)
	neLL, _ := pr.Unproject(ne)
	return Bounds{SouthWest: swLL, NorthEast: neLL}
}

func notify(handlers []func()) {
	for _, fn := range handlers {
		fn()
	}
}
