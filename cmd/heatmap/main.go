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

// Command heatmap renders a density heatmap of geographic points.
//
// Points are read from a CSV file with rows lat,lng[,weight].  Settings
// come from an optional YAML file, HEATMAP_* environment variables and
// command-line flags, in increasing order of precedence.
package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"seehuhn.de/go/heatmap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"width":     "canvas.width",
	"height":    "canvas.height",
	"lat":       "view.lat",
	"lng":       "view.lng",
	"zoom":      "view.zoom",
	"fit":       "view.fit",
	"radius":    "heatmap.radius",
	"map-type":  "heatmap.map_type",
	"log-level": "log.level",
}

func newRootCmd() *cobra.Command {
	var configPath, outPath, pdfPath string
	v := newViper()

	cmd := &cobra.Command{
		Use:          "heatmap [flags] points.csv",
		Short:        "Render a density heatmap of geographic points",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Load(v, configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, cfg, args[0], outPath, pdfPath, cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&outPath, "out", "o", "heatmap.png", "output PNG file")
	flags.StringVar(&pdfPath, "pdf", "", "also write the density as a PDF file")
	flags.Int("width", 512, "canvas width in pixels")
	flags.Int("height", 512, "canvas height in pixels")
	flags.Float64("lat", 0, "latitude of the canvas centre")
	flags.Float64("lng", 0, "longitude of the canvas centre")
	flags.Float64("zoom", 2, "map zoom level")
	flags.Bool("fit", false, "choose centre and zoom to show all points")
	flags.Float64("radius", 0, "kernel radius in pixels (0 for the default)")
	flags.String("map-type", "heatmap", `"heatmap" or "contour"`)
	flags.String("log-level", "info", "log level: debug, info, warn or error")

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	return cmd
}

func run(ctx context.Context, cfg *Config, pointsPath, outPath, pdfPath string, logOut io.Writer) error {
	logger, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return err
	}
	heatmap.SetLogger(logger)

	f, err := os.Open(pointsPath)
	if err != nil {
		return err
	}
	pts, err := readPoints(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", pointsPath, err)
	}

	w, h := cfg.Canvas.Width, cfg.Canvas.Height
	centre := heatmap.LatLng{Lat: cfg.View.Lat, Lng: cfg.View.Lng}
	zoom := cfg.View.Zoom
	if cfg.View.Fit {
		if c, z, ok := fitView(pts, w, h); ok {
			centre, zoom = c, z
			logger.Info("fitted view", "lat", c.Lat, "lng", c.Lng, "zoom", z)
		}
	}

	opts, err := cfg.Heatmap.Options()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := heatmap.NewMetrics(reg)
	if err != nil {
		return err
	}

	m := heatmap.NewStaticMap(w, h)
	m.SetZoom(zoom, heatmap.BoundsAround(centre, zoom, w, h))
	surface := heatmap.NewImageSurface(w, h)
	hm, err := heatmap.New(m, surface, opts)
	if err != nil {
		return err
	}
	hm.SetMetrics(metrics)
	if err := hm.AddPoints(pts); err != nil {
		return err
	}
	if err := hm.Flush(ctx); err != nil {
		return err
	}

	if err := writePNG(outPath, surface); err != nil {
		return err
	}
	if pdfPath != "" {
		if err := hm.WritePDF(pdfPath); err != nil {
			return err
		}
	}

	logger.Info("heatmap written",
		"out", outPath, "points", len(pts), "unweighted", hm.UnweightedCount(),
		"generation", hm.Generation())
	logMetrics(logger, reg)
	return nil
}

func writePNG(path string, s *heatmap.ImageSurface) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, s.Dst); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch cfg.Format {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), nil
}

// logMetrics writes the engine's counters at debug level.
func logMetrics(logger *slog.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn("gathering metrics failed", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = m.GetHistogram().GetSampleSum()
			default:
				continue
			}
			attrs := []any{"name", mf.GetName(), "value", value}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			logger.Debug("metric", attrs...)
		}
	}
}
