package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-calendar-api/internal/middleware"
	"github.com/noah-isme/dept-calendar-api/internal/models"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
)

type fakeTokenValidator map[string]models.UserRole

func (f fakeTokenValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	role, ok := f[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "user-" + token, Role: role}, nil
}

type fakeAuthService struct{}

func (fakeAuthService) Login(context.Context, models.LoginRequest) (*models.LoginResponse, error) {
	return &models.LoginResponse{AccessToken: "token"}, nil
}

type fakeViews struct{ anchor dateutil.Date }

func (f *fakeViews) Today() dateutil.Date { return dateutil.MustParseDate("2024-01-10") }

func (f *fakeViews) Month(_ context.Context, anchor dateutil.Date, _ models.EventFilter) models.MonthView {
	f.anchor = anchor
	return models.MonthView{Month: "2024-01"}
}

func (f *fakeViews) Week(_ context.Context, anchor dateutil.Date, _ models.EventFilter) models.WeekView {
	f.anchor = anchor
	return models.WeekView{}
}

func (f *fakeViews) Day(_ context.Context, anchor dateutil.Date, _ models.EventFilter) models.DayView {
	f.anchor = anchor
	return models.DayView{}
}

type fakeReminders struct{ from, to time.Time }

func (f *fakeReminders) Upcoming(_ context.Context, from, to time.Time) ([]models.Reminder, error) {
	f.from, f.to = from, to
	return []models.Reminder{}, nil
}

type fakeAssistant struct{ query string }

func (f *fakeAssistant) Context(_ context.Context, query string) models.AssistantContext {
	f.query = query
	return models.AssistantContext{Query: query}
}

type testRouter struct {
	engine    *gin.Engine
	events    *fakeEventService
	views     *fakeViews
	reminders *fakeReminders
	assistant *fakeAssistant
}

func newTestRouter() testRouter {
	gin.SetMode(gin.TestMode)
	tr := testRouter{
		engine: gin.New(),
		events: &fakeEventService{
			addResult: &models.MutationResult{Success: true, Event: &models.Event{ID: "evt-1"}},
			deleted:   map[string]bool{"evt-1": true},
		},
		views:     &fakeViews{},
		reminders: &fakeReminders{},
		assistant: &fakeAssistant{},
	}
	validator := fakeTokenValidator{"editor": models.RoleEditor, "viewer": models.RoleViewer, "admin": models.RoleAdmin}
	jwt := middleware.JWT(validator)

	reminders := NewReminderHandler(tr.reminders)
	reminders.now = func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) }

	RegisterRoutes(tr.engine.Group("/api/v1"), Handlers{
		Events:    NewEventHandler(tr.events, &fakeTransferService{}),
		Calendar:  NewCalendarHandler(tr.views),
		Reminders: reminders,
		Assistant: NewAssistantHandler(tr.assistant),
		Auth:      NewAuthHandler(fakeAuthService{}),
	}, nil, Guards{
		Authenticated: []gin.HandlerFunc{jwt},
		Editor:        []gin.HandlerFunc{jwt, middleware.RequireRoles(models.RoleEditor, models.RoleAdmin)},
		Admin:         []gin.HandlerFunc{jwt, middleware.RequireRoles(models.RoleAdmin)},
	})
	return tr
}

func (tr testRouter) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	tr.engine.ServeHTTP(rec, req)
	return rec
}

func TestRoutesMutationsRequireEditor(t *testing.T) {
	tr := newTestRouter()
	payload := `{"title":"Compilers","date":"2024-01-10","time":"09:00","type":"Lecture"}`

	assert.Equal(t, http.StatusUnauthorized, tr.do(http.MethodPost, "/api/v1/events", "", payload).Code)
	assert.Equal(t, http.StatusUnauthorized, tr.do(http.MethodPost, "/api/v1/events", "forged", payload).Code)
	assert.Equal(t, http.StatusForbidden, tr.do(http.MethodPost, "/api/v1/events", "viewer", payload).Code)
	assert.Equal(t, http.StatusCreated, tr.do(http.MethodPost, "/api/v1/events", "editor", payload).Code)
	assert.Equal(t, http.StatusNoContent, tr.do(http.MethodDelete, "/api/v1/events/evt-1", "admin", "").Code)
	assert.Equal(t, http.StatusForbidden, tr.do(http.MethodPost, "/api/v1/events/undo", "viewer", "").Code)
}

func TestRoutesReadsArePublic(t *testing.T) {
	tr := newTestRouter()

	assert.Equal(t, http.StatusOK, tr.do(http.MethodGet, "/api/v1/events", "", "").Code)
	assert.Equal(t, http.StatusOK, tr.do(http.MethodGet, "/api/v1/events/counts", "", "").Code)
	assert.Equal(t, http.StatusOK, tr.do(http.MethodGet, "/api/v1/events/conflicts", "", "").Code)
	assert.Equal(t, http.StatusOK, tr.do(http.MethodGet, "/api/v1/events/history", "", "").Code)

	rec := tr.do(http.MethodGet, "/api/v1/events/evt-1@2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"evt-1@2"`)
}

func TestRoutesBackupsAbsentWhenDisabled(t *testing.T) {
	tr := newTestRouter()
	assert.Equal(t, http.StatusNotFound, tr.do(http.MethodPost, "/api/v1/backups", "admin", "").Code)
}

func TestRoutesAuth(t *testing.T) {
	tr := newTestRouter()

	rec := tr.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"clerk@dept.edu","password":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"token"`)

	assert.Equal(t, http.StatusUnauthorized, tr.do(http.MethodGet, "/api/v1/auth/me", "", "").Code)
	rec = tr.do(http.MethodGet, "/api/v1/auth/me", "viewer", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"user-viewer"`)
}

func TestRoutesCalendarViews(t *testing.T) {
	tr := newTestRouter()

	rec := tr.do(http.MethodGet, "/api/v1/calendar/month", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-10", tr.views.anchor.String())

	assert.Equal(t, http.StatusOK, tr.do(http.MethodGet, "/api/v1/calendar/week?date=2024-03-05", "", "").Code)
	assert.Equal(t, "2024-03-05", tr.views.anchor.String())

	assert.Equal(t, http.StatusOK, tr.do(http.MethodGet, "/api/v1/calendar/day?date=2024-02-29", "", "").Code)
	assert.Equal(t, "2024-02-29", tr.views.anchor.String())

	assert.Equal(t, http.StatusBadRequest, tr.do(http.MethodGet, "/api/v1/calendar/day?date=2023-02-29", "", "").Code)
}

func TestRoutesReminders(t *testing.T) {
	tr := newTestRouter()

	require.Equal(t, http.StatusOK, tr.do(http.MethodGet, "/api/v1/reminders", "", "").Code)
	assert.Equal(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), tr.reminders.from)
	assert.Equal(t, 24*time.Hour, tr.reminders.to.Sub(tr.reminders.from))

	require.Equal(t, http.StatusOK, tr.do(http.MethodGet, "/api/v1/reminders?from=2024-02-01T08:00:00Z&to=2024-02-01T12:00:00Z", "", "").Code)
	assert.Equal(t, 4*time.Hour, tr.reminders.to.Sub(tr.reminders.from))

	assert.Equal(t, http.StatusBadRequest, tr.do(http.MethodGet, "/api/v1/reminders?from=tomorrow", "", "").Code)
}

func TestRoutesAssistant(t *testing.T) {
	tr := newTestRouter()
	rec := tr.do(http.MethodGet, "/api/v1/assistant/context?q=when+is+the+exam", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "when is the exam", tr.assistant.query)
}
