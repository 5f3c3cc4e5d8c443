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
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus metrics for heatmap engines.  A nil *Metrics
// records nothing.
type Metrics struct {
	PointsAccumulated prometheus.Counter
	PointsExcluded    prometheus.Counter
	GridRebuilds      prometheus.Counter
	BatchesAborted    prometheus.Counter
	RasterPasses      *prometheus.CounterVec
	QueueDepth        prometheus.Gauge
	RebuildDuration   prometheus.Histogram
}

// NewMetrics registers heatmap metrics against reg.  If reg is nil, the
// default registerer is used.  Registering twice against the same
// registerer returns the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{}
	var err error

	m.PointsAccumulated, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_points_accumulated_total",
		Help: "Points applied to a density grid.",
	}))
	if err != nil {
		return nil, err
	}
	m.PointsExcluded, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_points_excluded_total",
		Help: "Points which fell outside the density grid they were applied to.",
	}))
	if err != nil {
		return nil, err
	}
	m.GridRebuilds, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_grid_rebuilds_total",
		Help: "Density grids built.",
	}))
	if err != nil {
		return nil, err
	}
	m.BatchesAborted, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_batches_aborted_total",
		Help: "Point batches abandoned because their grid was replaced.",
	}))
	if err != nil {
		return nil, err
	}

	passes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_raster_passes_total",
		Help: "Raster passes by mode (full or incremental).",
	}, []string{"mode"})
	if err := reg.Register(passes); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("collector heatmap_raster_passes_total already registered with incompatible type")
		}
		passes = existing
	}
	m.RasterPasses = passes

	depth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "heatmap_queue_depth",
		Help: "Scheduling jobs waiting or in progress.",
	})
	if err := reg.Register(depth); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(prometheus.Gauge)
		if !ok {
			return nil, fmt.Errorf("collector heatmap_queue_depth already registered with incompatible type")
		}
		depth = existing
	}
	m.QueueDepth = depth

	hist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "heatmap_rebuild_duration_seconds",
		Help:    "Time from the start of a grid rebuild until its raster is ready.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	if err := reg.Register(hist); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(prometheus.Histogram)
		if !ok {
			return nil, fmt.Errorf("collector heatmap_rebuild_duration_seconds already registered with incompatible type")
		}
		hist = existing
	}
	m.RebuildDuration = hist

	return m, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", c.Desc())
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) accumulated(n int) {
	if m != nil && n > 0 {
		m.PointsAccumulated.Add(float64(n))
	}
}

func (m *Metrics) excluded(n int) {
	if m != nil && n > 0 {
		m.PointsExcluded.Add(float64(n))
	}
}

func (m *Metrics) rebuilt() {
	if m != nil {
		m.GridRebuilds.Inc()
	}
}

func (m *Metrics) aborted() {
	if m != nil {
		m.BatchesAborted.Inc()
	}
}

func (m *Metrics) rasterPass(mode string) {
	if m != nil {
		m.RasterPasses.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) queueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}

func (m *Metrics) rebuildTime(d time.Duration) {
	if m != nil {
		m.RebuildDuration.Observe(d.Seconds())
	}
}
