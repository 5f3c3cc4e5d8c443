package testcases

import "seehuhn.de/go/geom/vec"

// edgeCases place points near and beyond the canvas border.  Points
// within one viewport of the border are part of the density grid and
// still influence visible pixels; points further away are not.
var edgeCases = []TestCase{
	{
		Name:   "corners",
		Width:  48,
		Height: 48,
		Center: equator,
		Zoom:   6,
		Radius: 5,
		Points: []Point{
			at(equator, 6, vec.Vec2{X: -24, Y: 24}, 1),
			at(equator, 6, vec.Vec2{X: 23, Y: 24}, 1),
			at(equator, 6, vec.Vec2{X: -24, Y: -23}, 1),
			at(equator, 6, vec.Vec2{X: 23, Y: -23}, 1),
		},
	},
	{
		Name:   "just_outside",
		Width:  48,
		Height: 48,
		Center: london,
		Zoom:   10,
		Radius: 6,
		Points: []Point{
			at(london, 10, vec.Vec2{X: -27}, 1),
			at(london, 10, vec.Vec2{Y: 28}, 2),
			at(london, 10, vec.Vec2{X: 10, Y: 10}, 1),
		},
	},
	{
		Name:   "far_outside",
		Width:  48,
		Height: 48,
		Center: equator,
		Zoom:   6,
		Radius: 5,
		Points: []Point{
			at(equator, 6, vec.Vec2{X: 200}, 100),
			at(equator, 6, vec.Vec2{Y: -150}, 100),
			at(equator, 6, vec.Vec2{X: 4, Y: 4}, 1),
		},
	},
}
