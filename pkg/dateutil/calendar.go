package dateutil

import "fmt"

// GridSize is the number of cells in a six-row month grid.
const GridSize = 42

// View identifies a calendar view granularity.
type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// Direction is used by Navigate.
type Direction string

const (
	Prev Direction = "prev"
	Next Direction = "next"
)

// ParseView validates a view name.
func ParseView(raw string) (View, error) {
	switch View(raw) {
	case ViewDay, ViewWeek, ViewMonth:
		return View(raw), nil
	default:
		return "", fmt.Errorf("unknown view %q", raw)
	}
}

// CalendarGrid returns the 42 dates of a Sunday-first, six-row grid for the
// month containing monthDate, including leading and trailing days.
func CalendarGrid(monthDate Date) []Date {
	first := monthDate.FirstOfMonth()
	start := first.AddDays(-int(first.Weekday()))
	days := make([]Date, GridSize)
	for i := range days {
		days[i] = start.AddDays(i)
	}
	return days
}

// WeekDays returns the seven dates of the Sunday-first week containing d.
func WeekDays(d Date) []Date {
	start := d.AddDays(-int(d.Weekday()))
	days := make([]Date, 7)
	for i := range days {
		days[i] = start.AddDays(i)
	}
	return days
}

// MonthDays returns every date of the month containing d.
func MonthDays(d Date) []Date {
	first := d.FirstOfMonth()
	next := first.AddMonths(1)
	days := make([]Date, 0, 31)
	for cur := first; cur.Before(next); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

// Navigate moves d one view-sized step in the given direction.
func Navigate(d Date, dir Direction, view View) Date {
	step := 1
	if dir == Prev {
		step = -1
	}
	switch view {
	case ViewWeek:
		return d.AddDays(7 * step)
	case ViewMonth:
		return d.AddMonths(step)
	default:
		return d.AddDays(step)
	}
}

// TimeSlots lists slot start times from startHour (inclusive) to endHour
// (exclusive) every intervalMinutes.
func TimeSlots(startHour, endHour, intervalMinutes int) []Clock {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	if startHour < 0 {
		startHour = 0
	}
	if endHour > 24 {
		endHour = 24
	}
	slots := make([]Clock, 0)
	for hour := startHour; hour < endHour; hour++ {
		for minute := 0; minute < 60; minute += intervalMinutes {
			slots = append(slots, Clock{Hour: hour, Minute: minute})
		}
	}
	return slots
}

// Overlaps reports whether [time1, time1+duration1) on date1 intersects
// [time2, time2+duration2) on date2. Intervals on different dates never
// overlap, even when one of them runs past midnight.
func Overlaps(date1 Date, time1 Clock, duration1 int, date2 Date, time2 Clock, duration2 int) bool {
	if date1 != date2 {
		return false
	}
	start1 := time1.Minutes()
	end1 := start1 + duration1
	start2 := time2.Minutes()
	end2 := start2 + duration2
	return start1 < end2 && start2 < end1
}
