package pipeline

import (
	"math"

	"github.com/pageza/smartplate/internal/types"
)

var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

const minDailyCalories = 1200.0

// PredictDailyTargets estimates calories with the Mifflin-St Jeor equation
// and splits them into macros by body weight.
func PredictDailyTargets(p *types.UserProfile) types.NutrientTargets {
	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	multiplier, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		multiplier = 1.2
	}
	calories := bmr * multiplier

	switch p.Goal {
	case "weight_loss":
		calories -= 400
	case "muscle_gain":
		calories += 300
	}
	calories = math.Max(minDailyCalories, calories)

	protein := round(1.8*p.WeightKg, 1)
	fat := round(0.9*p.WeightKg, 1)
	remaining := math.Max(0, calories-protein*4-fat*9)
	carbs := round(remaining/4, 1)

	return types.NewNutrientTargets(round(calories, 0), protein, carbs, fat)
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
