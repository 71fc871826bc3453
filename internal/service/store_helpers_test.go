package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/dept-calendar-api/internal/dto"
	"github.com/noah-isme/dept-calendar-api/internal/models"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
)

var fixedNow = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

type persisterStub struct {
	mu       sync.Mutex
	payload  []byte
	loadErr  error
	saves    int
	revision uint64
}

func (p *persisterStub) Load(context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	if p.payload == nil {
		return nil, appErrors.ErrSnapshotMissing
	}
	return p.payload, nil
}

func (p *persisterStub) Save(_ context.Context, revision uint64, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payload = payload
	p.revision = revision
	p.saves++
}

type metricsStub struct {
	mu        sync.Mutex
	mutations map[string]int
	base      int
	expanded  int
}

func (m *metricsStub) RecordMutation(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mutations == nil {
		m.mutations = make(map[string]int)
	}
	m.mutations[operation+":"+outcome]++
}

func (m *metricsStub) SetEventCounts(base, expanded int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.base, m.expanded = base, expanded
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("evt-%03d", n)
	}
}

func newTestStore(persister eventPersister, metrics storeMetrics) *EventStore {
	return NewEventStore(persister, nil, nil, metrics, nil, EventStoreConfig{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
		NewID:    sequentialIDs(),
	})
}

func lecture(title, date, clock string, duration int) dto.CreateEventRequest {
	return dto.CreateEventRequest{Title: title, Date: date, Time: clock, DurationMinutes: duration, Type: string(models.EventTypeLecture)}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
