package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
	"github.com/noah-isme/dept-calendar-api/pkg/response"
)

type calendarViewService interface {
	Today() dateutil.Date
	Month(ctx context.Context, anchor dateutil.Date, filter models.EventFilter) models.MonthView
	Week(ctx context.Context, anchor dateutil.Date, filter models.EventFilter) models.WeekView
	Day(ctx context.Context, anchor dateutil.Date, filter models.EventFilter) models.DayView
}

// CalendarHandler serves the month, week and day view models.
type CalendarHandler struct {
	views calendarViewService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(views calendarViewService) *CalendarHandler {
	return &CalendarHandler{views: views}
}

// Month godoc
// @Summary Month view
// @Description Six-week grid around the month of date
// @Tags Calendar
// @Produce json
// @Param date query string false "Anchor date (YYYY-MM-DD), defaults to today"
// @Param q query string false "Search"
// @Param type query string false "Event type"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/month [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	anchor, filter, ok := h.viewParams(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.views.Month(c.Request.Context(), anchor, filter), nil)
}

// Week godoc
// @Summary Week view
// @Tags Calendar
// @Produce json
// @Param date query string false "Anchor date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/week [get]
func (h *CalendarHandler) Week(c *gin.Context) {
	anchor, filter, ok := h.viewParams(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.views.Week(c.Request.Context(), anchor, filter), nil)
}

// Day godoc
// @Summary Day view
// @Tags Calendar
// @Produce json
// @Param date query string false "Anchor date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/day [get]
func (h *CalendarHandler) Day(c *gin.Context) {
	anchor, filter, ok := h.viewParams(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.views.Day(c.Request.Context(), anchor, filter), nil)
}

func (h *CalendarHandler) viewParams(c *gin.Context) (dateutil.Date, models.EventFilter, bool) {
	date, err := optionalDate(c.Query("date"), "date")
	if err != nil {
		response.Error(c, err)
		return dateutil.Date{}, models.EventFilter{}, false
	}
	filter, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return dateutil.Date{}, models.EventFilter{}, false
	}
	if date == nil {
		today := h.views.Today()
		date = &today
	}
	return *date, filter, true
}
