package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
	"github.com/noah-isme/dept-calendar-api/pkg/response"
)

// defaultReminderWindow is used when the request names no end.
const defaultReminderWindow = 24 * time.Hour

type reminderService interface {
	Upcoming(ctx context.Context, from, to time.Time) ([]models.Reminder, error)
}

// ReminderHandler lists reminders due in a window.
type ReminderHandler struct {
	reminders reminderService
	now       func() time.Time
}

// NewReminderHandler constructs the handler.
func NewReminderHandler(reminders reminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, now: time.Now}
}

// Upcoming godoc
// @Summary Upcoming reminders
// @Description Reminders whose fire time falls in [from, to)
// @Tags Reminders
// @Produce json
// @Param from query string false "RFC3339 window start, defaults to now"
// @Param to query string false "RFC3339 window end, defaults to from + 24h"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reminders [get]
func (h *ReminderHandler) Upcoming(c *gin.Context) {
	from := h.now()
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "from must be RFC3339"))
			return
		}
		from = parsed
	}
	to := from.Add(defaultReminderWindow)
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "to must be RFC3339"))
			return
		}
		to = parsed
	}

	reminders, err := h.reminders.Upcoming(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reminders, nil, map[string]interface{}{"from": from, "to": to})
}
