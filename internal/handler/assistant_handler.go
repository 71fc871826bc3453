package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/response"
)

type assistantService interface {
	Context(ctx context.Context, query string) models.AssistantContext
}

// AssistantHandler hands the schedule digest to the assistant client.
type AssistantHandler struct {
	assistant assistantService
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(assistant assistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Context godoc
// @Summary Assistant schedule context
// @Tags Assistant
// @Produce json
// @Param q query string false "The question being asked"
// @Success 200 {object} response.Envelope
// @Router /assistant/context [get]
func (h *AssistantHandler) Context(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.assistant.Context(c.Request.Context(), c.Query("q")), nil)
}
