// Command export writes test case definitions to JSON, for plotting the
// scenarios with other map tools.
// Run from the heatmap module root directory.
package main

import (
	"encoding/json"
	"maps"
	"os"
	"slices"

	"seehuhn.de/go/heatmap/testcases"
)

func main() {
	var out struct {
		TestCases []jsonTestCase `json:"testcases"`
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			out.TestCases = append(out.TestCases, toJSON(category, tc))
		}
	}

	if err := os.MkdirAll("testdata", 0755); err != nil {
		panic(err)
	}
	f, err := os.Create("testdata/testcases.json")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

type jsonTestCase struct {
	Name    string      `json:"name"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Center  []float64   `json:"center"`
	Zoom    float64     `json:"zoom"`
	Radius  float64     `json:"radius,omitempty"`
	MapType string      `json:"map_type,omitempty"`
	Points  [][]float64 `json:"points"`
}

func toJSON(category string, tc testcases.TestCase) jsonTestCase {
	jtc := jsonTestCase{
		Name:    category + "_" + tc.Name,
		Width:   tc.Width,
		Height:  tc.Height,
		Center:  []float64{tc.Center.Lat, tc.Center.Lng},
		Zoom:    tc.Zoom,
		Radius:  tc.Radius,
		MapType: tc.MapType,
		Points:  make([][]float64, len(tc.Points)),
	}
	for i, p := range tc.Points {
		jtc.Points[i] = []float64{p.Lat, p.Lng, p.Weight}
	}
	return jtc
}
