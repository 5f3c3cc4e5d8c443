package testcases

import "seehuhn.de/go/geom/vec"

var lineCases = []TestCase{
	{
		Name:   "horizontal",
		Width:  64,
		Height: 32,
		Center: equator,
		Zoom:   5,
		Radius: 3,
		Points: line(equator, 5, vec.Vec2{X: -25}, vec.Vec2{X: 25}, 26),
	},
	{
		Name:   "diagonal",
		Width:  64,
		Height: 64,
		Center: london,
		Zoom:   13,
		Radius: 4,
		Points: line(london, 13, vec.Vec2{X: -28, Y: -28}, vec.Vec2{X: 28, Y: 28}, 40),
	},
	{
		Name:   "sparse",
		Width:  64,
		Height: 64,
		Center: equator,
		Zoom:   3,
		Radius: 2,
		Points: line(equator, 3, vec.Vec2{X: -30, Y: 20}, vec.Vec2{X: 30, Y: -20}, 7),
	},
}

// line returns n unit-weight points evenly spaced from a to b, in pixels
// relative to c.
func line(c LatLng, zoom float64, a, b vec.Vec2, n int) []Point {
	res := make([]Point, n)
	for i := range res {
		t := float64(i) / float64(n-1)
		res[i] = at(c, zoom, a.Add(b.Sub(a).Mul(t)), 1)
	}
	return res
}
