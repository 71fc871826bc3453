package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
)

type viewStore interface {
	EventsInRange(ctx context.Context, from, to dateutil.Date, filter models.EventFilter) []models.Event
	Today() dateutil.Date
}

// CalendarViewConfig sets the day view grid.
type CalendarViewConfig struct {
	DayStartHour int
	DayEndHour   int
	SlotMinutes  int
}

// CalendarViewService builds month, week and day view models.
type CalendarViewService struct {
	store viewStore
	cfg   CalendarViewConfig
}

// NewCalendarViewService constructs a CalendarViewService.
func NewCalendarViewService(store viewStore, cfg CalendarViewConfig) *CalendarViewService {
	if cfg.SlotMinutes <= 0 {
		cfg.SlotMinutes = 60
	}
	if cfg.DayEndHour <= cfg.DayStartHour || cfg.DayEndHour > 24 || cfg.DayStartHour < 0 {
		cfg.DayStartHour, cfg.DayEndHour = 0, 24
	}
	return &CalendarViewService{store: store, cfg: cfg}
}

// Today is the current date in the calendar's zone.
func (s *CalendarViewService) Today() dateutil.Date {
	return s.store.Today()
}

// Month returns the 42-cell grid around anchor's month.
func (s *CalendarViewService) Month(ctx context.Context, anchor dateutil.Date, filter models.EventFilter) models.MonthView {
	grid := dateutil.CalendarGrid(anchor)
	byDate := s.eventsByDate(ctx, grid[0], grid[len(grid)-1], filter)
	today := s.store.Today()

	days := make([]models.DayCell, 0, len(grid))
	for _, d := range grid {
		days = append(days, models.DayCell{
			Date:    d,
			InMonth: d.SameMonth(anchor),
			IsToday: d == today,
			Events:  eventsOrEmpty(byDate[d]),
		})
	}
	return models.MonthView{
		Month:    fmt.Sprintf("%04d-%02d", anchor.Year, int(anchor.Month)),
		Previous: dateutil.Navigate(anchor, dateutil.Prev, dateutil.ViewMonth),
		Next:     dateutil.Navigate(anchor, dateutil.Next, dateutil.ViewMonth),
		Days:     days,
	}
}

// Week returns the Sunday-first week containing anchor.
func (s *CalendarViewService) Week(ctx context.Context, anchor dateutil.Date, filter models.EventFilter) models.WeekView {
	week := dateutil.WeekDays(anchor)
	byDate := s.eventsByDate(ctx, week[0], week[len(week)-1], filter)
	today := s.store.Today()

	days := make([]models.DayCell, 0, len(week))
	for _, d := range week {
		days = append(days, models.DayCell{
			Date:    d,
			InMonth: d.SameMonth(anchor),
			IsToday: d == today,
			Events:  eventsOrEmpty(byDate[d]),
		})
	}
	return models.WeekView{
		Start:    week[0],
		End:      week[len(week)-1],
		Previous: dateutil.Navigate(anchor, dateutil.Prev, dateutil.ViewWeek),
		Next:     dateutil.Navigate(anchor, dateutil.Next, dateutil.ViewWeek),
		Days:     days,
	}
}

// Day returns anchor split into time slots. An event lands in the slot its
// start falls in; events outside the configured hours appear only in Events.
func (s *CalendarViewService) Day(ctx context.Context, anchor dateutil.Date, filter models.EventFilter) models.DayView {
	events := sortedByStart(s.store.EventsInRange(ctx, anchor, anchor, filter))
	clocks := dateutil.TimeSlots(s.cfg.DayStartHour, s.cfg.DayEndHour, s.cfg.SlotMinutes)

	slots := make([]models.TimeSlot, len(clocks))
	for i, clock := range clocks {
		slots[i] = models.TimeSlot{Start: clock, Events: make([]models.Event, 0)}
	}
	for _, event := range events {
		start := event.Time.Minutes()
		for i, clock := range clocks {
			if start >= clock.Minutes() && start < clock.Minutes()+s.cfg.SlotMinutes {
				slots[i].Events = append(slots[i].Events, event)
				break
			}
		}
	}
	return models.DayView{
		Date:     anchor,
		IsToday:  anchor == s.store.Today(),
		Previous: dateutil.Navigate(anchor, dateutil.Prev, dateutil.ViewDay),
		Next:     dateutil.Navigate(anchor, dateutil.Next, dateutil.ViewDay),
		Slots:    slots,
		Events:   eventsOrEmpty(events),
	}
}

func (s *CalendarViewService) eventsByDate(ctx context.Context, from, to dateutil.Date, filter models.EventFilter) map[dateutil.Date][]models.Event {
	byDate := make(map[dateutil.Date][]models.Event)
	for _, event := range sortedByStart(s.store.EventsInRange(ctx, from, to, filter)) {
		byDate[event.Date] = append(byDate[event.Date], event)
	}
	return byDate
}

func sortedByStart(events []models.Event) []models.Event {
	sort.SliceStable(events, func(i, j int) bool {
		if c := events[i].Date.Compare(events[j].Date); c != 0 {
			return c < 0
		}
		return events[i].Time.Minutes() < events[j].Time.Minutes()
	})
	return events
}

func eventsOrEmpty(events []models.Event) []models.Event {
	if events == nil {
		return make([]models.Event, 0)
	}
	return events
}
