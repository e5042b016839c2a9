package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthbite/backend/internal/assistant"
	"github.com/healthbite/backend/internal/models"
	"github.com/healthbite/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Assistant is satisfied by *assistant.Service.
type Assistant interface {
	Reply(ctx context.Context, messages []assistant.Message) (string, error)
}

type AssistantHandler struct {
	assistant Assistant
	logger    *logrus.Logger
}

// NewAssistantHandler accepts a nil assistant; requests then fail with 500.
func NewAssistantHandler(a Assistant, logger *logrus.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: a, logger: logger}
}

func (h *AssistantHandler) HandleAssistant(c *gin.Context) {
	if h.assistant == nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Assistant not configured")
		return
	}

	var req models.AssistantRequest
	if !bindJSON(c, &req, "Messages are required") {
		return
	}

	messages := make([]assistant.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = assistant.Message{Role: m.Role, Content: m.Content}
	}

	reply, err := h.assistant.Reply(c.Request.Context(), messages)
	switch {
	case errors.Is(err, assistant.ErrNoMessages),
		errors.Is(err, assistant.ErrLastNotUser),
		errors.Is(err, assistant.ErrInvalidRole):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("Assistant request failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to generate a response")
		return
	}

	c.JSON(http.StatusOK, models.AssistantResponse{Response: reply})
}
