package testcases

import "seehuhn.de/go/geom/vec"

var contourCases = []TestCase{
	{
		Name:    "overlap",
		Width:   64,
		Height:  64,
		Center:  equator,
		Zoom:    5,
		Radius:  10,
		MapType: "contour",
		Points: []Point{
			at(equator, 5, vec.Vec2{X: -6}, 0.3),
			at(equator, 5, vec.Vec2{X: 6}, 0.8),
			at(equator, 5, vec.Vec2{Y: 12}, 0.5),
		},
	},
	{
		Name:    "levels",
		Width:   96,
		Height:  48,
		Center:  london,
		Zoom:    12,
		Radius:  6,
		MapType: "contour",
		Points:  ramp(london, 12, 6, 14),
	},
}
