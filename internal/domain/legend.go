package domain

import "math"

// LegendClass is one magnitude band of the colour legend.
type LegendClass struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Range Range  `json:"range"`
}

// LegendClasses lists the magnitude bands from weakest to strongest. Every
// band is half-open; the first has no lower bound and the last no upper bound.
var LegendClasses = []LegendClass{
	{Name: "< 3", Color: "blue", Range: HalfOpen(math.NaN(), 3)},
	{Name: "3 - 4", Color: "green", Range: HalfOpen(3, 4)},
	{Name: "4 - 4.5", Color: "yellow", Range: HalfOpen(4, 4.5)},
	{Name: "4.5 - 5", Color: "gold", Range: HalfOpen(4.5, 5)},
	{Name: "5 - 5.5", Color: "orange", Range: HalfOpen(5, 5.5)},
	{Name: ">= 5.5", Color: "red", Range: HalfOpen(5.5, math.NaN())},
}

// ClassFor returns the legend band a magnitude falls in.
func ClassFor(mag float64) LegendClass {
	// NaN passes every open bound; show it with the weakest band.
	if math.IsNaN(mag) {
		return LegendClasses[0]
	}
	for _, c := range LegendClasses {
		if c.Range.Contains(mag) {
			return c
		}
	}
	return LegendClasses[0]
}
