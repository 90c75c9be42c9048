// Package validation turns loosely typed JSON or form payloads into the typed
// requests the services accept.
package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pageza/smartplate/internal/types"
)

// Error is a user-facing validation failure
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func invalid(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

var (
	requiredUserFields = []string{
		"name",
		"age",
		"gender",
		"height_cm",
		"weight_kg",
		"activity_level",
		"goal",
	}
	genders        = map[string]bool{"male": true, "female": true, "other": true}
	activityLevels = map[string]bool{"sedentary": true, "light": true, "moderate": true, "active": true, "very_active": true}
	goals          = map[string]bool{"weight_loss": true, "maintenance": true, "muscle_gain": true}
)

// ParseUserPayload validates a profile payload and converts it
func ParseUserPayload(payload map[string]interface{}) (*types.UserProfile, error) {
	for _, field := range requiredUserFields {
		if _, ok := payload[field]; !ok {
			return nil, invalid("Missing field: %s", field)
		}
	}

	age, errAge := ToInt(payload["age"])
	height, errHeight := ToFloat(payload["height_cm"])
	weight, errWeight := ToFloat(payload["weight_kg"])
	if errAge != nil || errHeight != nil || errWeight != nil {
		return nil, invalid("age, height_cm, weight_kg must be numeric")
	}

	if !(age > 0 && age < 120) {
		return nil, invalid("age must be between 1 and 119")
	}
	if !(height > 50 && height < 250) {
		return nil, invalid("height_cm must be between 50 and 250")
	}
	if !(weight > 10 && weight < 400) {
		return nil, invalid("weight_kg must be between 10 and 400")
	}

	gender, _ := payload["gender"].(string)
	if !genders[gender] {
		return nil, invalid("gender must be one of: male, female, other")
	}
	activity, _ := payload["activity_level"].(string)
	if !activityLevels[activity] {
		return nil, invalid("invalid activity_level")
	}
	goal, _ := payload["goal"].(string)
	if !goals[goal] {
		return nil, invalid("invalid goal")
	}

	name := fmt.Sprint(payload["name"])
	allergies, _ := payload["allergies"].(string)

	return &types.UserProfile{
		Name:          name,
		Age:           age,
		Gender:        gender,
		HeightCm:      height,
		WeightKg:      weight,
		ActivityLevel: activity,
		Allergies:     allergies,
		Goal:          goal,
	}, nil
}

// ParseFeedbackPayload validates a feedback payload and converts it
func ParseFeedbackPayload(payload map[string]interface{}) (*types.CreateFeedbackRequest, error) {
	userID, errUser := ToInt(payload["user_id"])
	foodID, errFood := ToInt(payload["food_id"])
	rating, errRating := ToInt(payload["rating"])
	if errUser != nil || errFood != nil || errRating != nil {
		return nil, invalid("user_id, food_id, rating are required integers")
	}

	comment, _ := payload["comment"].(string)

	return &types.CreateFeedbackRequest{
		UserID:  userID,
		FoodID:  foodID,
		Rating:  rating,
		Comment: comment,
	}, nil
}

// ToInt converts a JSON number or a decimal integer string. Fractional
// numbers are truncated; fractional strings are rejected.
func ToInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("not a finite number")
		}
		return int(val), nil
	case int:
		return val, nil
	case string:
		return strconv.Atoi(strings.TrimSpace(val))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// ToFloat converts a JSON number or a numeric string
func ToFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(val), 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
