package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
	"github.com/noah-isme/dept-calendar-api/pkg/sanitize"
)

// DefaultAssistantEvents bounds the digest handed to the assistant.
const DefaultAssistantEvents = 500

type assistantStore interface {
	Expanded(ctx context.Context) []models.Event
	Today() dateutil.Date
}

// AssistantService prepares the schedule context an external assistant
// answers questions from.
type AssistantService struct {
	store     assistantStore
	maxEvents int
	logger    *zap.Logger
}

// NewAssistantService constructs an AssistantService. maxEvents <= 0 selects
// DefaultAssistantEvents.
func NewAssistantService(store assistantStore, maxEvents int, logger *zap.Logger) *AssistantService {
	if maxEvents <= 0 {
		maxEvents = DefaultAssistantEvents
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{store: store, maxEvents: maxEvents, logger: logger}
}

// Context returns the chronological schedule and its one-line-per-event
// digest. When the schedule exceeds the bound, past events are dropped first.
func (s *AssistantService) Context(ctx context.Context, query string) models.AssistantContext {
	today := s.store.Today()
	events := sortedByStart(s.store.Expanded(ctx))
	if over := len(events) - s.maxEvents; over > 0 {
		firstUpcoming := len(events)
		for i, event := range events {
			if !event.Date.Before(today) {
				firstUpcoming = i
				break
			}
		}
		drop := over
		if drop > firstUpcoming {
			drop = firstUpcoming
		}
		events = events[drop:]
		if len(events) > s.maxEvents {
			events = events[:s.maxEvents]
		}
		s.logger.Debug("assistant context truncated", zap.Int("dropped", over))
	}

	lines := make([]string, 0, len(events))
	for _, event := range events {
		lines = append(lines, digestLine(event))
	}
	return models.AssistantContext{
		Today:  today,
		Query:  strings.TrimSpace(sanitize.Text(query)),
		Events: events,
		Digest: strings.Join(lines, "\n"),
	}
}

func digestLine(event models.Event) string {
	return fmt.Sprintf("- %s (%s) on %s at %s. Location: %s, %s. Details: %s",
		event.Title, event.Type, event.Date, event.Time,
		orNA(event.Room), orNA(event.Location), event.Description)
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}
