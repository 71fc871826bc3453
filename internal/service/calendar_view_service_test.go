package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-calendar-api/internal/dto"
	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
)

func seededViewStore(t *testing.T) *EventStore {
	t.Helper()
	store := newTestStore(nil, nil)
	ctx := context.Background()
	for _, req := range []dto.CreateEventRequest{
		lecture("Late lecture", "2024-01-10", "14:00", 60),
		lecture("Early lecture", "2024-01-10", "08:30", 60),
		lecture("Night lab", "2024-01-10", "22:00", 60),
		{Title: "New year", Date: "2024-01-01", Time: "00:00", Type: "Holiday", DurationMinutes: 1440},
		{Title: "Prev month", Date: "2023-12-31", Time: "10:00", Type: "Other"},
		{Title: "Next month", Date: "2024-02-03", Time: "10:00", Type: "Workshop"},
	} {
		result, err := store.Add(ctx, req)
		require.NoError(t, err)
		require.True(t, result.Success, req.Title)
	}
	return store
}

func TestCalendarMonthView(t *testing.T) {
	svc := NewCalendarViewService(seededViewStore(t), CalendarViewConfig{})
	view := svc.Month(context.Background(), dateutil.MustParseDate("2024-01-20"), models.EventFilter{})

	assert.Equal(t, "2024-01", view.Month)
	assert.Equal(t, "2023-12-20", view.Previous.String())
	assert.Equal(t, "2024-02-20", view.Next.String())
	require.Len(t, view.Days, dateutil.GridSize)

	first := view.Days[0]
	assert.Equal(t, "2023-12-31", first.Date.String())
	assert.False(t, first.InMonth)
	require.Len(t, first.Events, 1)
	assert.Equal(t, "Prev month", first.Events[0].Title)

	tenth := view.Days[10]
	assert.Equal(t, "2024-01-10", tenth.Date.String())
	assert.True(t, tenth.IsToday)
	assert.True(t, tenth.InMonth)
	require.Len(t, tenth.Events, 3)
	assert.Equal(t, "Early lecture", tenth.Events[0].Title)
	assert.Equal(t, "Night lab", tenth.Events[2].Title)

	last := view.Days[41]
	assert.Equal(t, "2024-02-10", last.Date.String())
	assert.NotNil(t, last.Events)

	holidays := svc.Month(context.Background(), dateutil.MustParseDate("2024-01-20"), models.EventFilter{Type: models.EventTypeHoliday})
	total := 0
	for _, day := range holidays.Days {
		total += len(day.Events)
	}
	assert.Equal(t, 1, total)
}

func TestCalendarWeekView(t *testing.T) {
	svc := NewCalendarViewService(seededViewStore(t), CalendarViewConfig{})
	view := svc.Week(context.Background(), dateutil.MustParseDate("2024-01-10"), models.EventFilter{Search: "lecture"})

	assert.Equal(t, "2024-01-07", view.Start.String())
	assert.Equal(t, "2024-01-13", view.End.String())
	assert.Equal(t, "2024-01-03", view.Previous.String())
	assert.Equal(t, "2024-01-17", view.Next.String())
	require.Len(t, view.Days, 7)
	assert.Len(t, view.Days[3].Events, 2)
	assert.Empty(t, view.Days[0].Events)
}

func TestCalendarDayView(t *testing.T) {
	svc := NewCalendarViewService(seededViewStore(t), CalendarViewConfig{DayStartHour: 8, DayEndHour: 18, SlotMinutes: 60})
	view := svc.Day(context.Background(), dateutil.MustParseDate("2024-01-10"), models.EventFilter{})

	assert.True(t, view.IsToday)
	assert.Equal(t, "2024-01-09", view.Previous.String())
	assert.Equal(t, "2024-01-11", view.Next.String())
	require.Len(t, view.Slots, 10)
	assert.Equal(t, "08:00", view.Slots[0].Start.String())
	require.Len(t, view.Slots[0].Events, 1)
	assert.Equal(t, "Early lecture", view.Slots[0].Events[0].Title)
	require.Len(t, view.Slots[6].Events, 1)
	assert.Equal(t, "Late lecture", view.Slots[6].Events[0].Title)
	assert.Len(t, view.Events, 3)

	other := svc.Day(context.Background(), dateutil.MustParseDate("2024-01-11"), models.EventFilter{})
	assert.False(t, other.IsToday)
	assert.Empty(t, other.Events)
}

func TestCalendarViewConfigDefaults(t *testing.T) {
	svc := NewCalendarViewService(newTestStore(nil, nil), CalendarViewConfig{DayStartHour: 20, DayEndHour: 8})
	view := svc.Day(context.Background(), dateutil.MustParseDate("2024-01-10"), models.EventFilter{})
	assert.Len(t, view.Slots, 24)
}
