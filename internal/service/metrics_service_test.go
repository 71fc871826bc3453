package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceRecordsStoreActivity(t *testing.T) {
	m := NewMetricsService()

	m.RecordMutation("add", outcomeSuccess)
	m.RecordMutation("add", outcomeConflict)
	m.RecordMutation("update", outcomeConflict)
	m.SetEventCounts(3, 12)
	m.ObservePersist("file", 2*time.Millisecond, nil)
	m.ObservePersist("file", time.Millisecond, assert.AnError)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/events", 200, 4*time.Millisecond)
	m.RecordBackup()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[family.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[family.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, float64(3), values["calendar_store_mutations_total"])
	assert.Equal(t, float64(2), values["calendar_conflicts_rejected_total"])
	assert.Equal(t, float64(3), values["calendar_base_events"])
	assert.Equal(t, float64(12), values["calendar_expanded_events"])
	assert.Equal(t, float64(1), values["calendar_persist_failures_total"])
	assert.Equal(t, float64(1), values["calendar_backups_total"])

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 4.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(3), snap.Mutations)
	assert.Equal(t, uint64(2), snap.ConflictsRejected)
	assert.Equal(t, uint64(2), snap.PersistWrites)
	assert.Equal(t, uint64(1), snap.PersistFailures)
	assert.Positive(t, snap.Goroutines)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordMutation("delete", outcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `calendar_store_mutations_total{operation="delete",outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), "goroutines_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordMutation("add", outcomeSuccess)
	m.SetEventCounts(1, 1)
	m.ObservePersist("file", time.Millisecond, nil)
	m.ObserveDBQuery("snapshot_read", time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)
	m.RecordBackup()
	assert.Nil(t, m.Registry())
	assert.Zero(t, m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
