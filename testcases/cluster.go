package testcases

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

var clusterCases = []TestCase{
	{
		Name:   "sunflower_small",
		Width:  64,
		Height: 64,
		Center: london,
		Zoom:   11,
		Radius: 4,
		Points: sunflower(london, 11, 50, 3),
	},
	{
		Name:   "sunflower_dense",
		Width:  128,
		Height: 96,
		Center: equator,
		Zoom:   6,
		Radius: 5,
		Points: sunflower(equator, 6, 400, 2),
	},
	{
		Name:   "two_clusters",
		Width:  96,
		Height: 64,
		Center: sydney,
		Zoom:   10,
		Radius: 4,
		Points: append(
			sunflower(at(sydney, 10, vec.Vec2{X: -20}, 0).latLng(), 10, 60, 1.5),
			sunflower(at(sydney, 10, vec.Vec2{X: 25, Y: 10}, 0).latLng(), 10, 30, 2.5)...,
		),
	},
}

// goldenAngle spaces successive points of a sunflower spiral.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// sunflower returns n points in a disc around c, spread evenly by the
// golden angle.  Point i lies spacing·sqrt(i) pixels from the centre.
func sunflower(c LatLng, zoom float64, n int, spacing float64) []Point {
	res := make([]Point, n)
	for i := range res {
		r := spacing * math.Sqrt(float64(i))
		theta := float64(i) * goldenAngle
		d := vec.Vec2{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
		res[i] = at(c, zoom, d, 1)
	}
	return res
}

func (p Point) latLng() LatLng {
	return LatLng{Lat: p.Lat, Lng: p.Lng}
}
