package foodid

import "context"

// Candidate is one label proposed by the image classifier.
type Candidate struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Nutrient is a named nutrient value as reported by the lookup service.
type Nutrient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FoodRecord is one match from the nutrition lookup. ServingSize and
// ServingSizeUnit are zero when the upstream record does not carry them.
type FoodRecord struct {
	Description     string     `json:"description"`
	Nutrients       []Nutrient `json:"nutrients"`
	ServingSize     float64    `json:"servingSize,omitempty"`
	ServingSizeUnit string     `json:"servingSizeUnit,omitempty"`
}

type NutritionResult struct {
	Name            string   `json:"name"`
	Calories        int      `json:"calories"`
	Protein         int      `json:"protein"`
	Carbs           int      `json:"carbs"`
	Fat             int      `json:"fat"`
	Ingredients     []string `json:"ingredients"`
	Confidence      int      `json:"confidence"`
	ServingSize     float64  `json:"servingSize"`
	ServingSizeUnit string   `json:"servingSizeUnit"`
}

// Classifier turns raw image bytes into label candidates, in the provider's
// own ranking order.
type Classifier interface {
	Classify(ctx context.Context, image []byte) ([]Candidate, error)
}

// NutritionLookup finds food records matching a free-text term.
type NutritionLookup interface {
	Lookup(ctx context.Context, term string) ([]FoodRecord, error)
}
