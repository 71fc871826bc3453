package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/dept-calendar-api/internal/models"
)

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"redis": func(context.Context) error { return nil },
	})
	c, rec := newTestContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})
	c, rec = newTestContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/metrics", "")
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	source := &stubMetricsSource{}
	h := NewMetricsHandler(source, nil)
	c, rec = newTestContext(http.MethodGet, "/metrics", "")
	h.Prometheus(c)
	assert.True(t, source.served)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/metrics/summary", "")
	h.Summary(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"conflicts_rejected":4`)
}

type stubMetricsSource struct{ served bool }

func (s *stubMetricsSource) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.served = true
		w.WriteHeader(http.StatusOK)
	})
}

func (s *stubMetricsSource) Snapshot() models.SystemMetrics {
	return models.SystemMetrics{ConflictsRejected: 4}
}
