package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
)

type reminderStore interface {
	Expanded(ctx context.Context) []models.Event
	Location() *time.Location
}

// ReminderService derives pending reminders from events carrying
// reminderMinutes. Delivery belongs to the client.
type ReminderService struct {
	store reminderStore
}

// NewReminderService constructs a ReminderService.
func NewReminderService(store reminderStore) *ReminderService {
	return &ReminderService{store: store}
}

// Upcoming lists reminders whose fire time falls in [from, to), ordered by
// fire time.
func (s *ReminderService) Upcoming(ctx context.Context, from, to time.Time) ([]models.Reminder, error) {
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reminder window end must be after its start")
	}
	loc := s.store.Location()
	reminders := make([]models.Reminder, 0)
	for _, event := range s.store.Expanded(ctx) {
		if event.ReminderMinutes == nil || *event.ReminderMinutes <= 0 {
			continue
		}
		startsAt := event.Date.At(event.Time, loc)
		fireAt := startsAt.Add(-time.Duration(*event.ReminderMinutes) * time.Minute)
		if fireAt.Before(from) || !fireAt.Before(to) {
			continue
		}
		reminders = append(reminders, models.Reminder{
			EventID:         event.ID,
			Title:           event.Title,
			Type:            event.Type,
			Location:        event.Location,
			Room:            event.Room,
			StartsAt:        startsAt,
			FireAt:          fireAt,
			ReminderMinutes: *event.ReminderMinutes,
			Message:         reminderMessage(event),
		})
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].FireAt.Before(reminders[j].FireAt)
	})
	return reminders, nil
}

func reminderMessage(event models.Event) string {
	msg := fmt.Sprintf("%s at %s", event.Type, event.Time)
	if event.Room != "" {
		msg += " in " + event.Room
	}
	return msg
}
