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
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"seehuhn.de/go/heatmap"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "HEATMAP"

// Config is the complete configuration of the heatmap command.
type Config struct {
	Canvas  CanvasConfig  `mapstructure:"canvas"`
	View    ViewConfig    `mapstructure:"view"`
	Heatmap HeatmapConfig `mapstructure:"heatmap"`
	Log     LogConfig     `mapstructure:"log"`
}

// CanvasConfig is the size of the output image.
type CanvasConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// ViewConfig selects the visible map region.  With Fit set, the centre
// and zoom level are chosen so that all points are visible.
type ViewConfig struct {
	Lat  float64 `mapstructure:"lat"`
	Lng  float64 `mapstructure:"lng"`
	Zoom float64 `mapstructure:"zoom"`
	Fit  bool    `mapstructure:"fit"`
}

// HeatmapConfig mirrors heatmap.Options.  Zero values select the library
// defaults.
type HeatmapConfig struct {
	Radius      float64 `mapstructure:"radius"`
	Gradient    [][]int `mapstructure:"gradient"`
	Opacity     int     `mapstructure:"opacity"`
	MapType     string  `mapstructure:"map_type"`
	ChunkSize   int     `mapstructure:"chunk_size"`
	FlushEvery  int     `mapstructure:"flush_every"`
	Epsilon     float64 `mapstructure:"epsilon"`
	DropOutside bool    `mapstructure:"drop_outside"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	maxCanvasSize = 1 << 14
	maxZoom       = 30
	maxLatitude   = 85
)

// newViper builds a Viper instance with YAML input, HEATMAP_ environment
// overrides and all keys registered, so that a nested key like
// "canvas.width" resolves to HEATMAP_CANVAS_WIDTH.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("canvas.width", 512)
	v.SetDefault("canvas.height", 512)
	v.SetDefault("view.lat", 0.0)
	v.SetDefault("view.lng", 0.0)
	v.SetDefault("view.zoom", 2.0)
	v.SetDefault("view.fit", false)
	v.SetDefault("heatmap.radius", 0.0)
	v.SetDefault("heatmap.opacity", 0)
	v.SetDefault("heatmap.map_type", "heatmap")
	v.SetDefault("heatmap.chunk_size", 0)
	v.SetDefault("heatmap.flush_every", 0)
	v.SetDefault("heatmap.epsilon", 0.0)
	v.SetDefault("heatmap.drop_outside", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the YAML file at configPath, if not empty, merges HEATMAP_*
// environment variables and any flags bound to v, and validates the
// result.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Width > maxCanvasSize ||
		c.Canvas.Height <= 0 || c.Canvas.Height > maxCanvasSize {
		return fmt.Errorf("canvas size %dx%d outside 1..%d",
			c.Canvas.Width, c.Canvas.Height, maxCanvasSize)
	}
	if c.View.Zoom < 0 || c.View.Zoom > maxZoom {
		return fmt.Errorf("zoom %g outside 0..%d", c.View.Zoom, maxZoom)
	}
	if c.View.Lat < -maxLatitude || c.View.Lat > maxLatitude {
		return fmt.Errorf("latitude %g outside ±%d", c.View.Lat, maxLatitude)
	}
	if c.View.Lng < -180 || c.View.Lng > 180 {
		return fmt.Errorf("longitude %g outside ±180", c.View.Lng)
	}
	if c.Heatmap.Opacity < 0 || c.Heatmap.Opacity > 255 {
		return fmt.Errorf("opacity %d outside 0..255", c.Heatmap.Opacity)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	opts, err := c.Heatmap.Options()
	if err != nil {
		return err
	}
	return opts.Validate()
}

// Options converts the configuration to heatmap options.
func (c *HeatmapConfig) Options() (heatmap.Options, error) {
	mt, err := heatmap.ParseMapType(c.MapType)
	if err != nil {
		return heatmap.Options{}, err
	}
	return heatmap.Options{
		Radius:      c.Radius,
		Gradient:    c.Gradient,
		Opacity:     uint8(c.Opacity),
		MapType:     mt,
		ChunkSize:   c.ChunkSize,
		FlushEvery:  c.FlushEvery,
		Epsilon:     c.Epsilon,
		DropOutside: c.DropOutside,
	}, nil
}

func (c *LogConfig) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}
