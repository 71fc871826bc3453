package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-calendar-api/internal/dto"
	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/internal/service"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
	"github.com/noah-isme/dept-calendar-api/pkg/response"
)

// maxImportBytes caps the body accepted by Import.
const maxImportBytes = 10 << 20

type eventService interface {
	Query(ctx context.Context, filter models.EventFilter) []models.Event
	Get(ctx context.Context, id string) (*models.Event, error)
	Add(ctx context.Context, req dto.CreateEventRequest) (*models.MutationResult, error)
	Update(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.MutationResult, error)
	Delete(ctx context.Context, id string) bool
	Conflicts(ctx context.Context) [][]models.Event
	Counts(ctx context.Context) models.EventCounts
	Undo(ctx context.Context) (models.HistoryState, error)
	Redo(ctx context.Context) (models.HistoryState, error)
	HistoryState() models.HistoryState
}

type transferService interface {
	Export(ctx context.Context, format service.ExportFormat, filter models.EventFilter) (*service.ExportFile, error)
	Import(ctx context.Context, contentType string, body []byte) models.ImportResult
}

// EventHandler exposes the event store over HTTP.
type EventHandler struct {
	events   eventService
	transfer transferService
}

// NewEventHandler constructs the handler.
func NewEventHandler(events eventService, transfer transferService) *EventHandler {
	return &EventHandler{events: events, transfer: transfer}
}

// List godoc
// @Summary List events
// @Description Expanded events, recurrence instances included
// @Tags Events
// @Produce json
// @Param q query string false "Search title, description, location and room"
// @Param type query string false "Event type"
// @Param types query []string false "Any of these event types"
// @Param start query string false "First date (YYYY-MM-DD)"
// @Param end query string false "Last date (YYYY-MM-DD)"
// @Param page query int false "Page number, starting at 1"
// @Param pageSize query int false "Events per page; all events when omitted"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := pageFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	events := h.events.Query(c.Request.Context(), filter)
	total := len(events)
	if page == nil {
		response.JSON(c, http.StatusOK, events, nil, map[string]interface{}{"total": total})
		return
	}
	page.TotalCount = total
	start := (page.Page - 1) * page.PageSize
	if start < 0 || start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	response.JSON(c, http.StatusOK, events[start:end], page, map[string]interface{}{"total": total})
}

// Get godoc
// @Summary Get event
// @Description Accepts a base id or an instance id (<base>@<index>)
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Add event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	result, err := h.events.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Success {
		h.respondConflict(c, result)
		return
	}
	response.Created(c, result.Event)
}

// Update godoc
// @Summary Update event
// @Description Updates the whole series the id belongs to
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	result, err := h.events.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Success {
		h.respondConflict(c, result)
		return
	}
	response.JSON(c, http.StatusOK, result.Event, nil)
}

// Delete godoc
// @Summary Delete event series
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !h.events.Delete(c.Request.Context(), id) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "event not found"))
		return
	}
	response.NoContent(c)
}

// Conflicts godoc
// @Summary List overlapping events
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events/conflicts [get]
func (h *EventHandler) Conflicts(c *gin.Context) {
	groups := h.events.Conflicts(c.Request.Context())
	response.JSON(c, http.StatusOK, groups, nil, map[string]interface{}{"groups": len(groups)})
}

// Counts godoc
// @Summary Event counts
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events/counts [get]
func (h *EventHandler) Counts(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.events.Counts(c.Request.Context()), nil)
}

// History godoc
// @Summary Undo/redo availability
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events/history [get]
func (h *EventHandler) History(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.events.HistoryState(), nil)
}

// Undo godoc
// @Summary Undo the last change
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /events/undo [post]
func (h *EventHandler) Undo(c *gin.Context) {
	state, err := h.events.Undo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Redo godoc
// @Summary Redo the last undone change
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /events/redo [post]
func (h *EventHandler) Redo(c *gin.Context) {
	state, err := h.events.Redo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Import godoc
// @Summary Import events
// @Description JSON array, YAML sequence or iCalendar body
// @Tags Events
// @Accept json
// @Accept text/calendar
// @Accept application/yaml
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /events/import [post]
func (h *EventHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read import body"))
		return
	}
	if len(body) > maxImportBytes {
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, http.StatusRequestEntityTooLarge, "import body too large"))
		return
	}
	result := h.transfer.Import(c.Request.Context(), c.ContentType(), body)
	if !result.Success {
		response.ErrorWithData(c, appErrors.Clone(appErrors.ErrImport, result.Error), result)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export events
// @Description json and yaml carry the canonical collection, csv and pdf the filtered expanded events, ics one VEVENT per series
// @Tags Events
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Produce text/calendar
// @Param format query string false "json, csv, pdf, ics or yaml"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /events/export [get]
func (h *EventHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.transfer.Export(c.Request.Context(), format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

func (h *EventHandler) respondConflict(c *gin.Context, result *models.MutationResult) {
	msg := "event overlaps an existing event"
	if result.Conflict != nil {
		msg = fmt.Sprintf("event overlaps %q on %s at %s", result.Conflict.Title, result.Conflict.Date, result.Conflict.Time)
	}
	response.ErrorWithData(c, appErrors.Clone(appErrors.ErrConflict, msg), result)
}
