package testcases

import "seehuhn.de/go/geom/vec"

var weightCases = []TestCase{
	{
		Name:   "ramp",
		Width:  96,
		Height: 32,
		Center: equator,
		Zoom:   5,
		Radius: 4,
		Points: ramp(equator, 5, 8, 10),
	},
	{
		Name:   "dominant",
		Width:  64,
		Height: 64,
		Center: sydney,
		Zoom:   12,
		Radius: 5,
		Points: append(
			sunflower(sydney, 12, 40, 3),
			at(sydney, 12, vec.Vec2{X: 15, Y: 15}, 50),
		),
	},
}

// ramp returns n points on a horizontal line, spacing pixels apart, with
// weights 1, 2, ..., n.
func ramp(c LatLng, zoom float64, n int, spacing float64) []Point {
	res := make([]Point, n)
	x0 := -spacing * float64(n-1) / 2
	for i := range res {
		d := vec.Vec2{X: x0 + spacing*float64(i)}
		res[i] = at(c, zoom, d, float64(i+1))
	}
	return res
}
