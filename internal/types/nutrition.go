package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// NutrientTargets are the daily calorie and macro goals for a profile.
// Fields are pointers because a cached payload may omit any of them.
type NutrientTargets struct {
	Calories *float64 `json:"calories,omitempty"`
	ProteinG *float64 `json:"protein_g,omitempty"`
	CarbsG   *float64 `json:"carbs_g,omitempty"`
	FatG     *float64 `json:"fat_g,omitempty"`
}

// NewNutrientTargets builds a fully populated set of targets
func NewNutrientTargets(calories, protein, carbs, fat float64) NutrientTargets {
	return NutrientTargets{
		Calories: &calories,
		ProteinG: &protein,
		CarbsG:   &carbs,
		FatG:     &fat,
	}
}

// ValueOrZero dereferences v, treating nil as zero
func ValueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// ClusterID identifies a food cluster. The backend sends integers but any
// JSON scalar is accepted and rendered verbatim.
type ClusterID string

// UnmarshalJSON accepts numbers and strings
func (c *ClusterID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ClusterID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = ClusterID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers
func (c ClusterID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseFloat(string(c), 64); err == nil && json.Valid([]byte(c)) {
		return []byte(c), nil
	}
	return json.Marshal(string(c))
}

// RecommendationItem is one suggested food
type RecommendationItem struct {
	FoodID     int       `json:"food_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Calories   float64   `json:"calories"`
	ProteinG   float64   `json:"protein_g"`
	CarbsG     float64   `json:"carbs_g"`
	FatG       float64   `json:"fat_g"`
	Cluster    ClusterID `json:"cluster"`
	Similarity float64   `json:"similarity"`
}

// RecommendResponse is the body returned by /api/recommend
type RecommendResponse struct {
	Targets         NutrientTargets      `json:"targets"`
	Recommendations []RecommendationItem `json:"recommendations"`
}
