// Package foodid identifies a dish from a photo and attaches its nutrition
// facts. It runs two dependent upstream stages: classification, then a
// nutrition lookup for the best label.
package foodid

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/healthbite/backend/internal/upstream"
	"github.com/sirupsen/logrus"
)

const (
	DefaultConfidenceThreshold = 0.9
	defaultServingSize         = 100
	defaultServingSizeUnit     = "g"

	nutrientEnergy  = "Energy"
	nutrientProtein = "Protein"
	nutrientCarbs   = "Carbohydrate"
	nutrientFat     = "Total lipid (fat)"
)

type Config struct {
	// ConfidenceThreshold is exclusive: a candidate must score strictly above it.
	ConfidenceThreshold float64
	// Stage applies to each upstream call independently.
	Stage upstream.RetryConfig
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Stage:               upstream.DefaultRetryConfig(),
	}
}

type Pipeline struct {
	classifier Classifier
	lookup     NutritionLookup
	config     Config
	logger     *logrus.Logger
}

func NewPipeline(classifier Classifier, lookup NutritionLookup, config Config, logger *logrus.Logger) *Pipeline {
	if config.Stage.MaxRetries > 1 {
		config.Stage.MaxRetries = 1
	}
	if config.Stage.MaxRetries < 0 {
		config.Stage.MaxRetries = 0
	}
	return &Pipeline{
		classifier: classifier,
		lookup:     lookup,
		config:     config,
		logger:     logger,
	}
}

// Identify runs both stages for one image. The result is all-or-nothing:
// any failure yields one of the package's sentinel errors and no result.
func (p *Pipeline) Identify(ctx context.Context, image []byte) (*NutritionResult, error) {
	start := time.Now()

	var candidates []Candidate
	err := upstream.Do(ctx, p.config.Stage, p.logger, "classification", func(ctx context.Context) error {
		var err error
		candidates, err = p.classifier.Classify(ctx, image)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}

	detected := p.filterCandidates(candidates)
	if len(detected) == 0 {
		p.logger.WithField("candidates", len(candidates)).Info("No candidate above confidence threshold")
		return nil, ErrNoFoodDetected
	}

	top := detected[0]
	p.logger.WithFields(logrus.Fields{
		"label":      top.Label,
		"confidence": top.Confidence,
		"qualifying": len(detected),
	}).Debug("Food identified")

	var records []FoodRecord
	err = upstream.Do(ctx, p.config.Stage, p.logger, "nutrition_lookup", func(ctx context.Context) error {
		var err error
		records, err = p.lookup.Lookup(ctx, top.Label)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNutritionLookup, err)
	}
	if len(records) == 0 {
		return nil, ErrNoNutritionData
	}

	result := buildResult(records[0], detected)

	p.logger.WithFields(logrus.Fields{
		"label":      top.Label,
		"name":       result.Name,
		"calories":   result.Calories,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("Food analysis completed")

	return result, nil
}

// filterCandidates keeps upstream order; the first survivor wins.
func (p *Pipeline) filterCandidates(candidates []Candidate) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if c.Confidence > p.config.ConfidenceThreshold {
			out = append(out, c)
		}
	}
	return out
}

func buildResult(record FoodRecord, detected []Candidate) *NutritionResult {
	ingredients := make([]string, 0, len(detected))
	for _, c := range detected {
		ingredients = append(ingredients, c.Label)
	}

	servingSize := record.ServingSize
	if servingSize == 0 {
		servingSize = defaultServingSize
	}
	servingSizeUnit := record.ServingSizeUnit
	if servingSizeUnit == "" {
		servingSizeUnit = defaultServingSizeUnit
	}

	return &NutritionResult{
		Name:            record.Description,
		Calories:        findNutrient(record.Nutrients, nutrientEnergy),
		Protein:         findNutrient(record.Nutrients, nutrientProtein),
		Carbs:           findNutrient(record.Nutrients, nutrientCarbs),
		Fat:             findNutrient(record.Nutrients, nutrientFat),
		Ingredients:     ingredients,
		Confidence:      roundInt(detected[0].Confidence * 100),
		ServingSize:     servingSize,
		ServingSizeUnit: servingSizeUnit,
	}
}

// findNutrient returns the first nutrient whose name contains the given
// fragment, rounded; 0 when absent.
func findNutrient(nutrients []Nutrient, name string) int {
	for _, n := range nutrients {
		if strings.Contains(n.Name, name) {
			return roundInt(n.Value)
		}
	}
	return 0
}

// roundInt rounds halves toward positive infinity (12.5 -> 13, -2.5 -> -2).
func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}
