package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthbite/backend/internal/models"
	"github.com/healthbite/backend/internal/recommender"
	"github.com/healthbite/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	provider *recommender.Provider
	logger   *logrus.Logger
}

func NewChatHandler(provider *recommender.Provider, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{provider: provider, logger: logger}
}

// HandleChat answers a free-text message with food recommendations. Every
// well-formed request gets a 200 reply, including the loading and
// clarification replies.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if !bindJSON(c, &req, "Message is required") {
		return
	}

	r := h.provider.Current()
	tags := r.DetectSymptoms(req.Message)
	reply := r.BuildResponse(tags)

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"tags":       tags,
		"kind":       reply.Kind,
	}).Info("Chat reply built")

	c.JSON(http.StatusOK, reply)
}

// HandleStatus reports whether the recommendation table is available.
func (h *ChatHandler) HandleStatus(c *gin.Context) {
	state := h.provider.Current().State()

	resp := models.RecommendationStatusResponse{State: state.Status().String()}
	if state.Status() == recommender.StatusFailed {
		resp.Error = recommender.LoadFailureNotice
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}
