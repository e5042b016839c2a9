// Package clarifai classifies food photos with a Clarifai prediction model.
package clarifai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/healthbite/backend/internal/foodid"
	"github.com/healthbite/backend/internal/upstream"
	"github.com/sirupsen/logrus"
)

const DefaultModel = "food-item-recognition"

type Client struct {
	api    *upstream.Client
	model  string
	logger *logrus.Logger
}

func NewClient(baseURL, apiKey, model string, logger *logrus.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	api := upstream.NewClient("clarifai", baseURL, func(req *http.Request) {
		req.Header.Set("Authorization", "Key "+apiKey)
	}, logger)
	return &Client{api: api, model: model, logger: logger}
}

// Classify implements foodid.Classifier. Concepts are returned in the order
// Clarifai ranked them.
func (c *Client) Classify(ctx context.Context, image []byte) ([]foodid.Candidate, error) {
	req := PredictRequest{
		Inputs: []Input{{
			Data: InputData{Image: Image{Base64: base64.StdEncoding.EncodeToString(image)}},
		}},
	}

	var resp PredictResponse
	if err := c.api.Post(ctx, fmt.Sprintf("/v2/models/%s/outputs", c.model), req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Outputs) == 0 {
		return nil, fmt.Errorf("clarifai response has no outputs: %w", upstream.ErrMalformedResponse)
	}

	data := resp.Outputs[0].Data
	if data == nil || data.Concepts == nil {
		return nil, fmt.Errorf("clarifai output has no concepts: %w", upstream.ErrMalformedResponse)
	}

	concepts := *data.Concepts
	candidates := make([]foodid.Candidate, 0, len(concepts))
	for _, concept := range concepts {
		candidates = append(candidates, foodid.Candidate{Label: concept.Name, Confidence: concept.Value})
	}

	c.logger.WithFields(logrus.Fields{
		"model":    c.model,
		"concepts": len(candidates),
	}).Debug("Clarifai prediction received")

	return candidates, nil
}

// BaseURL is used by the health checker.
func (c *Client) BaseURL() string { return c.api.BaseURL() }
