package repository

import (
	"context"
	"sync"

	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
)

// MemorySnapshotRepository keeps snapshots in process memory. It backs the
// "memory" storage backend and tests.
type MemorySnapshotRepository struct {
	mu     sync.RWMutex
	data   map[string][]byte
	writes int
}

// NewMemorySnapshotRepository constructs an empty in-memory repository.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{data: make(map[string][]byte)}
}

// Read returns a copy of the stored payload.
func (r *MemorySnapshotRepository) Read(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payload, ok := r.data[key]
	if !ok {
		return nil, appErrors.ErrSnapshotMissing
	}
	return append([]byte(nil), payload...), nil
}

// Write stores a copy of payload under key.
func (r *MemorySnapshotRepository) Write(_ context.Context, key string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]byte(nil), payload...)
	r.writes++
	return nil
}

// Writes reports how many writes have been accepted.
func (r *MemorySnapshotRepository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}
