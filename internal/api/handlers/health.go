package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthbite/backend/internal/health"
	"github.com/healthbite/backend/internal/models"
	"github.com/healthbite/backend/internal/recommender"
)

type HealthHandler struct {
	checker         *health.HealthChecker
	recommendations *recommender.Provider
}

func NewHealthHandler(checker *health.HealthChecker, recommendations *recommender.Provider) *HealthHandler {
	return &HealthHandler{checker: checker, recommendations: recommendations}
}

// HandleHealth runs live probes unless ?cached=true and a snapshot exists.
// Only an unhealthy result answers 503.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	var overall *health.OverallHealth
	if c.Query("cached") == "true" {
		if cached, err := h.checker.CheckCached(c.Request.Context()); err == nil {
			overall = cached
		}
	}
	if overall == nil {
		live := h.checker.CheckAll(c.Request.Context())
		overall = &live
	}

	services := make(map[string]string, len(overall.Services)+1)
	for _, s := range overall.Services {
		services[s.Name] = s.Status
	}
	services["recommendations"] = h.recommendations.Current().State().Status().String()

	code := http.StatusOK
	if overall.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    overall.Status,
		Service:   "healthbite-backend",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	})
}
