package testcases

import "seehuhn.de/go/geom/vec"

var (
	equator = LatLng{}
	london  = LatLng{Lat: 51.5074, Lng: -0.1278}
	sydney  = LatLng{Lat: -33.8688, Lng: 151.2093}
)

var singleCases = []TestCase{
	{
		Name:   "centre_small",
		Width:  32,
		Height: 32,
		Center: equator,
		Zoom:   4,
		Radius: 3,
		Points: []Point{at(equator, 4, vec.Vec2{}, 1)},
	},
	{
		Name:   "centre_default_radius",
		Width:  64,
		Height: 48,
		Center: london,
		Zoom:   12,
		Points: []Point{at(london, 12, vec.Vec2{}, 1)},
	},
	{
		Name:   "off_centre",
		Width:  64,
		Height: 64,
		Center: sydney,
		Zoom:   9,
		Radius: 6,
		Points: []Point{at(sydney, 9, vec.Vec2{X: 17, Y: -9}, 3)},
	},
	{
		Name:   "zero_weight",
		Width:  32,
		Height: 32,
		Center: equator,
		Zoom:   4,
		Radius: 3,
		Points: []Point{
			at(equator, 4, vec.Vec2{X: -5}, 0),
			at(equator, 4, vec.Vec2{X: 5}, 1),
		},
	},
}
