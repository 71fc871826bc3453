package models

import "time"

// SystemMetrics represents system level counters captured from instrumentation.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	Mutations                uint64    `json:"mutations"`
	ConflictsRejected        uint64    `json:"conflicts_rejected"`
	PersistWrites            uint64    `json:"persist_writes"`
	PersistFailures          uint64    `json:"persist_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
