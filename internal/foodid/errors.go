package foodid

import "errors"

var (
	ErrClassification  = errors.New("failed to identify food")
	ErrNoFoodDetected  = errors.New("no food items detected")
	ErrNutritionLookup = errors.New("failed to get nutritional information")
	ErrNoNutritionData = errors.New("no nutritional information found")
)

// UserMessage maps a pipeline error onto the message shown to the caller.
// Unknown errors get a generic message.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrClassification):
		return "Failed to identify food"
	case errors.Is(err, ErrNoFoodDetected):
		return "No food items detected"
	case errors.Is(err, ErrNutritionLookup):
		return "Failed to get nutritional information"
	case errors.Is(err, ErrNoNutritionData):
		return "No nutritional information found"
	default:
		return "Failed to analyze food"
	}
}
