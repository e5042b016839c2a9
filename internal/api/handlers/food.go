package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthbite/backend/internal/foodid"
	"github.com/healthbite/backend/internal/models"
	"github.com/healthbite/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// FoodIdentifier is satisfied by *foodid.Pipeline.
type FoodIdentifier interface {
	Identify(ctx context.Context, image []byte) (*foodid.NutritionResult, error)
}

type FoodHandler struct {
	identifier FoodIdentifier
	logger     *logrus.Logger
}

func NewFoodHandler(identifier FoodIdentifier, logger *logrus.Logger) *FoodHandler {
	return &FoodHandler{identifier: identifier, logger: logger}
}

// HandleAnalyzeFood identifies the food in an uploaded photo and returns its
// nutrition facts.
func (h *FoodHandler) HandleAnalyzeFood(c *gin.Context) {
	var req models.AnalyzeFoodRequest
	if !bindJSON(c, &req, "Image is required") {
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Image must be base64 encoded")
		return
	}

	start := time.Now()
	result, err := h.identifier.Identify(c.Request.Context(), image)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"image_size": len(image),
		}).Error("Food analysis failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, foodid.UserMessage(err))
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id":    c.GetString("request_id"),
		"food":          result.Name,
		"confidence":    result.Confidence,
		"response_time": time.Since(start).Milliseconds(),
	}).Info("Food analysis completed")

	c.JSON(http.StatusOK, result)
}

// decodeImage accepts raw base64 or a data URI.
func decodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		comma := strings.Index(encoded, ",")
		if comma < 0 || !strings.Contains(encoded[:comma], ";base64") {
			return nil, errors.New("unsupported data URI")
		}
		encoded = encoded[comma+1:]
	}
	if encoded == "" {
		return nil, errors.New("empty image")
	}

	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		image, err = base64.RawStdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}
	return image, nil
}
