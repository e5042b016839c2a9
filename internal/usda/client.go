// Package usda looks up nutrition facts in USDA FoodData Central.
package usda

import (
	"context"
	"net/url"

	"github.com/healthbite/backend/internal/foodid"
	"github.com/healthbite/backend/internal/upstream"
	"github.com/sirupsen/logrus"
)

type Client struct {
	api    *upstream.Client
	apiKey string
	logger *logrus.Logger
}

func NewClient(baseURL, apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		api:    upstream.NewClient("usda", baseURL, nil, logger),
		apiKey: apiKey,
		logger: logger,
	}
}

func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)

	var resp SearchResponse
	if err := c.api.Get(ctx, "/fdc/v1/foods/search", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Lookup implements foodid.NutritionLookup.
func (c *Client) Lookup(ctx context.Context, term string) ([]foodid.FoodRecord, error) {
	resp, err := c.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"term":  term,
		"foods": len(resp.Foods),
	}).Debug("USDA search completed")

	records := make([]foodid.FoodRecord, 0, len(resp.Foods))
	for _, food := range resp.Foods {
		nutrients := make([]foodid.Nutrient, 0, len(food.FoodNutrients))
		for _, n := range food.FoodNutrients {
			nutrients = append(nutrients, foodid.Nutrient{Name: n.NutrientName, Value: n.Value})
		}
		records = append(records, foodid.FoodRecord{
			Description:     food.Description,
			Nutrients:       nutrients,
			ServingSize:     food.ServingSize,
			ServingSizeUnit: food.ServingSizeUnit,
		})
	}
	return records, nil
}

func (c *Client) BaseURL() string { return c.api.BaseURL() }
