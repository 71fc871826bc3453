package models

import (
	"strconv"
	"strings"

	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
)

// EventType is the closed set of departmental event categories.
type EventType string

const (
	EventTypeLecture  EventType = "Lecture"
	EventTypeWorkshop EventType = "Workshop"
	EventTypeExam     EventType = "Exam"
	EventTypeHoliday  EventType = "Holiday"
	EventTypeOther    EventType = "Other"
)

// EventTypes lists every EventType in display order.
var EventTypes = []EventType{EventTypeLecture, EventTypeWorkshop, EventTypeExam, EventTypeHoliday, EventTypeOther}

// Valid reports whether t belongs to the closed set.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Frequency is the stepping unit of a recurrence rule.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Recurrence describes how a base event repeats.
type Recurrence struct {
	Frequency Frequency      `json:"frequency" yaml:"frequency"`
	Interval  int            `json:"interval" yaml:"interval"`
	EndDate   *dateutil.Date `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Count     *int           `json:"count,omitempty" yaml:"count,omitempty"`
}

// Event is a departmental calendar entry. Base events are stored; instances
// of recurring events are derived and carry ParentEventID and Occurrence.
type Event struct {
	ID              string         `json:"id" yaml:"id"`
	Title           string         `json:"title" yaml:"title"`
	Description     string         `json:"description" yaml:"description"`
	Date            dateutil.Date  `json:"date" yaml:"date"`
	Time            dateutil.Clock `json:"time" yaml:"time"`
	DurationMinutes int            `json:"durationMinutes" yaml:"durationMinutes"`
	Location        string         `json:"location,omitempty" yaml:"location,omitempty"`
	Room            string         `json:"room,omitempty" yaml:"room,omitempty"`
	ResourcesURL    string         `json:"resourcesUrl,omitempty" yaml:"resourcesUrl,omitempty"`
	ImageURL        string         `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Type            EventType      `json:"type" yaml:"type"`
	ReminderMinutes *int           `json:"reminderMinutes,omitempty" yaml:"reminderMinutes,omitempty"`
	Color           string         `json:"color,omitempty" yaml:"color,omitempty"`
	Recurrence      *Recurrence    `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`
	ParentEventID   string         `json:"parentEventId,omitempty" yaml:"-"`
	Occurrence      *int           `json:"occurrenceIndex,omitempty" yaml:"-"`
}

// Ref returns the structured identity of the event.
func (e Event) Ref() EventRef {
	if e.ParentEventID != "" && e.Occurrence != nil {
		return EventRef{BaseID: e.ParentEventID, Index: *e.Occurrence, Instance: true}
	}
	return EventRef{BaseID: e.ID}
}

// IsInstance reports whether e is a derived recurrence instance.
func (e Event) IsInstance() bool {
	return e.ParentEventID != "" && e.Occurrence != nil
}

// Clone returns a copy of e that shares no pointers with it.
func (e Event) Clone() Event {
	out := e
	if e.ReminderMinutes != nil {
		v := *e.ReminderMinutes
		out.ReminderMinutes = &v
	}
	if e.Occurrence != nil {
		v := *e.Occurrence
		out.Occurrence = &v
	}
	if e.Recurrence != nil {
		r := *e.Recurrence
		if r.EndDate != nil {
			d := *r.EndDate
			r.EndDate = &d
		}
		if r.Count != nil {
			c := *r.Count
			r.Count = &c
		}
		out.Recurrence = &r
	}
	return out
}

// CloneEvents deep-copies a slice of events.
func CloneEvents(events []Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}

// InstanceSeparator joins a base id and an occurrence index in an instance id.
// Base ids are UUIDs and never contain it.
const InstanceSeparator = "@"

// EventRef identifies either a base event or one occurrence of its series.
type EventRef struct {
	BaseID   string
	Index    int
	Instance bool
}

// String renders the wire id of the reference.
func (r EventRef) String() string {
	if !r.Instance {
		return r.BaseID
	}
	return r.BaseID + InstanceSeparator + strconv.Itoa(r.Index)
}

// ParseEventRef turns a wire id back into a reference. Anything that is not
// "<base>@<non-negative integer>" is treated as a base id.
func ParseEventRef(id string) EventRef {
	idx := strings.LastIndex(id, InstanceSeparator)
	if idx <= 0 || idx == len(id)-1 {
		return EventRef{BaseID: id}
	}
	n, err := strconv.Atoi(id[idx+1:])
	if err != nil || n < 0 {
		return EventRef{BaseID: id}
	}
	return EventRef{BaseID: id[:idx], Index: n, Instance: true}
}

// MutationResult is returned by add and update. A conflict is a normal
// outcome: Success is false, Conflict names the existing event and nothing
// was committed.
type MutationResult struct {
	Success  bool   `json:"success"`
	Event    *Event `json:"event,omitempty"`
	Conflict *Event `json:"conflict,omitempty"`
}

// ImportResult summarises a batch import.
type ImportResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// EventCounts aggregates the expanded collection.
type EventCounts struct {
	Total     int               `json:"total"`
	ByType    map[EventType]int `json:"byType"`
	Upcoming  int               `json:"upcoming"`
	ThisMonth int               `json:"thisMonth"`
}

// EventFilter narrows down the expanded collection. All set fields must match.
type EventFilter struct {
	Search string
	Type   EventType
	Types  []EventType
	From   *dateutil.Date
	To     *dateutil.Date
}

// HistoryState reports the undo/redo position.
type HistoryState struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
	Depth   int  `json:"depth"`
}
