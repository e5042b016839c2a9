package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/healthbite/backend/internal/middleware"
	"github.com/healthbite/backend/internal/models"
	"github.com/healthbite/backend/internal/repository"
	"github.com/healthbite/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type ProfileHandler struct {
	profiles models.ProfileRepository
	logger   *logrus.Logger
}

func NewProfileHandler(profiles models.ProfileRepository, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGet returns the stored profile, or an empty one for new users.
func (h *ProfileHandler) HandleGet(c *gin.Context) {
	userID := middleware.UserID(c)

	profile, err := h.profiles.GetByUserID(userID)
	if errors.Is(err, repository.ErrNotFound) {
		profile = &models.Profile{UserID: userID}
	} else if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to load profile")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", profile)
}

// HandlePut creates or replaces the user's profile.
func (h *ProfileHandler) HandlePut(c *gin.Context) {
	var req models.ProfileRequest
	if !bindJSON(c, &req, "Invalid profile format") {
		return
	}

	profile := &models.Profile{
		UserID:    middleware.UserID(c),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		Flags:     req.Flags,
	}
	if err := profile.Validate(); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.profiles.Upsert(profile); err != nil {
		h.logger.WithError(err).WithField("user_id", profile.UserID).Error("Failed to save profile")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	h.logger.WithField("user_id", profile.UserID).Info("Profile saved")
	utils.SuccessResponse(c, http.StatusOK, "Profile saved", profile)
}
