package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
)

type stubValidator struct{ role models.UserRole }

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return &models.JWTClaims{UserID: "u1", Role: s.role}, nil
}

type observation struct {
	method, path string
	status       int
}

type stubObserver struct{ seen []observation }

func (s *stubObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	s.seen = append(s.seen, observation{method, path, status})
}

func serve(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAndRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/editor", JWT(stubValidator{role: models.RoleEditor}), RequireRoles(models.RoleEditor), func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).UserID)
	})
	r.GET("/admin", JWT(stubValidator{role: models.RoleEditor}), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := serve(r, http.MethodGet, "/editor", "Bearer good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/editor", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/editor", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/editor", "Bearer bad").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin", "bearer good").Code)
}

func TestRequireRolesWithoutJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/x", "").Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &stubObserver{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	serve(r, http.MethodGet, "/events/evt-1@3", "")
	serve(r, http.MethodGet, "/nowhere", "")

	require.Len(t, observer.seen, 2)
	assert.Equal(t, observation{http.MethodGet, "/events/:id", http.StatusTeapot}, observer.seen[0])
	assert.Equal(t, "unmatched", observer.seen[1].path)
	assert.Equal(t, http.StatusNotFound, observer.seen[1].status)
}

func TestAuditLogsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.DELETE("/events/:id", JWT(stubValidator{role: models.RoleEditor}), Audit(zap.New(core), "event.delete"), func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	})

	serve(r, http.MethodDelete, "/events/evt-1", "Bearer good")
	serve(r, http.MethodDelete, "/events/missing", "Bearer good")

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "event.delete", fields["action"])
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "u1", fields["user_id"])
}
