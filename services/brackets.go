package services

import (
	"math"

	"market-dashboard/models"
)

// Bracket is a half-open [Min, Max) interval with its display label.
type Bracket struct {
	Label string
	Min   float64
	Max   float64
}

// ValueBrackets partition unit prices over [0, +Inf).
var ValueBrackets = []Bracket{
	{Label: "Até R$ 349.999", Min: 0, Max: 350_000},
	{Label: "R$ 350.000 a 499.999", Min: 350_000, Max: 500_000},
	{Label: "R$ 500.000 a 699.999", Min: 500_000, Max: 700_000},
	{Label: "R$ 700.000 a 999.999", Min: 700_000, Max: 1_000_000},
	{Label: "R$ 1.000.000 a 1.999.999", Min: 1_000_000, Max: 2_000_000},
	{Label: "A partir de R$ 2.000.000", Min: 2_000_000, Max: math.Inf(1)},
}

// AreaBrackets partition unit areas over (0, +Inf). Upper bounds are
// inclusive: 40 m² is "Até 40m²", 40.5 m² is "41 a 60m²".
var AreaBrackets = []Bracket{
	{Label: "Até 40m²", Min: 0, Max: 40},
	{Label: "41 a 60m²", Min: 40, Max: 60},
	{Label: "61 a 80m²", Min: 60, Max: 80},
	{Label: "81 a 100m²", Min: 80, Max: 100},
	{Label: "101 a 125m²", Min: 100, Max: 125},
	{Label: "126 a 150m²", Min: 125, Max: 150},
	{Label: "151 a 175m²", Min: 150, Max: 175},
	{Label: "176 a 200m²", Min: 175, Max: 200},
	{Label: "Mais de 200m²", Min: 200, Max: math.Inf(1)},
}

// ValueBracket labels a unit price. Negative and NaN values are N/A.
func ValueBracket(v float64) string {
	if math.IsNaN(v) || v < 0 {
		return models.NotAvailable
	}
	for _, b := range ValueBrackets {
		if v >= b.Min && v < b.Max {
			return b.Label
		}
	}
	return models.NotAvailable
}

// AreaBracket labels a unit area. Zero, negative and NaN areas are N/A.
func AreaBracket(a float64) string {
	if math.IsNaN(a) || a <= 0 {
		return models.NotAvailable
	}
	for _, b := range AreaBrackets {
		if a > b.Min && a <= b.Max {
			return b.Label
		}
	}
	return models.NotAvailable
}
