package types

import (
	"math"
	"strconv"
)

// Placeholder is shown for a target the payload did not include
const Placeholder = "-"

// FormatNumber prints v the way a JSON number prints: 2000, 67, 150.5.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatTarget is FormatNumber for an optional value
func FormatTarget(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return FormatNumber(*v)
}

// RoundCalories rounds to the nearest integer with halves going up,
// so 99.5 becomes 100 and -0.5 becomes 0.
func RoundCalories(v float64) float64 {
	return math.Floor(v + 0.5)
}

// CaloriesBadge is the "<n> kcal" label on a recommendation
func CaloriesBadge(v float64) string {
	return strconv.FormatFloat(RoundCalories(v), 'f', -1, 64) + " kcal"
}

// SummaryLine is one row of the targets summary
type SummaryLine struct {
	Label string
	Value string
	Unit  string
}

// Summary returns the calories, protein, carbs and fat lines in display order
func (t NutrientTargets) Summary() []SummaryLine {
	return []SummaryLine{
		{Label: "Calories", Value: FormatTarget(t.Calories), Unit: "kcal"},
		{Label: "Protein", Value: FormatTarget(t.ProteinG), Unit: "g"},
		{Label: "Carbs", Value: FormatTarget(t.CarbsG), Unit: "g"},
		{Label: "Fat", Value: FormatTarget(t.FatG), Unit: "g"},
	}
}
