package types

// UserProfile is a validated profile payload
type UserProfile struct {
	Name          string  `json:"name"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	ActivityLevel string  `json:"activity_level"`
	Allergies     string  `json:"allergies"`
	Goal          string  `json:"goal"`
}

// CreateFeedbackRequest is a validated feedback payload
type CreateFeedbackRequest struct {
	UserID  int    `json:"user_id"`
	FoodID  int    `json:"food_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
