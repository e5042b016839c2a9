package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/healthbite/backend/internal/analytics"
	"github.com/healthbite/backend/internal/middleware"
	"github.com/healthbite/backend/internal/models"
	"github.com/healthbite/backend/internal/repository"
	"github.com/healthbite/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type CheckInHandler struct {
	checkIns models.CheckInRepository
	logger   *logrus.Logger
}

func NewCheckInHandler(checkIns models.CheckInRepository, logger *logrus.Logger) *CheckInHandler {
	return &CheckInHandler{checkIns: checkIns, logger: logger}
}

type checkInCreated struct {
	CheckIn *models.CheckIn `json:"checkIn"`
	Message string          `json:"message"`
}

// HandleCreate stores a journal entry for the signed-in user.
func (h *CheckInHandler) HandleCreate(c *gin.Context) {
	var req models.CheckInRequest
	if !bindJSON(c, &req, "Invalid check-in format") {
		return
	}

	checkIn := &models.CheckIn{
		UserID:    middleware.UserID(c),
		Date:      req.Date,
		Breakfast: withDefaultMood(req.Breakfast),
		Lunch:     withDefaultMood(req.Lunch),
		Dinner:    withDefaultMood(req.Dinner),
		Symptoms:  cleanSymptoms(req.Symptoms),
		Progress:  req.Progress,
	}
	if err := checkIn.Validate(); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.checkIns.Create(checkIn); err != nil {
		h.logger.WithError(err).WithField("user_id", checkIn.UserID).Error("Failed to save check-in")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save check-in")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  checkIn.UserID,
		"date":     checkIn.Date,
		"progress": checkIn.Progress,
	}).Info("Check-in recorded")

	utils.SuccessResponse(c, http.StatusCreated, "Check-in recorded", checkInCreated{
		CheckIn: checkIn,
		Message: analytics.MotivationalMessage(checkIn.Progress),
	})
}

// HandleList returns the user's check-ins, optionally bounded by the from
// and to query parameters (YYYY-MM-DD).
func (h *CheckInHandler) HandleList(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	checkIns, err := h.checkIns.ListByUser(middleware.UserID(c), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list check-ins")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load check-ins")
		return
	}
	if checkIns == nil {
		checkIns = []models.CheckIn{}
	}

	utils.SuccessResponse(c, http.StatusOK, "", checkIns)
}

func (h *CheckInHandler) HandleGet(c *gin.Context) {
	checkIn, err := h.checkIns.GetByID(middleware.UserID(c), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		utils.ErrorResponse(c, http.StatusNotFound, "Check-in not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load check-in")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load check-in")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", checkIn)
}

// HandleSummary returns chart data derived from the user's check-ins.
func (h *CheckInHandler) HandleSummary(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	checkIns, err := h.checkIns.ListByUser(middleware.UserID(c), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load check-ins for analytics")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load analytics")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", analytics.Summarize(checkIns))
}

func withDefaultMood(entry models.MealEntry) models.MealEntry {
	if entry.Mood == "" {
		entry.Mood = models.MoodNeutral
	}
	return entry
}

func cleanSymptoms(symptoms []string) models.StringArray {
	out := models.StringArray{}
	seen := map[string]bool{}
	for _, s := range symptoms {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func dateRange(c *gin.Context) (string, string, bool) {
	from, to := c.Query("from"), c.Query("to")
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		probe := models.CheckIn{UserID: "-", Date: d}
		if err := probe.Validate(); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Dates must use YYYY-MM-DD")
			return "", "", false
		}
	}
	return from, to, true
}
