package models

import (
	"time"

	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
)

// DayCell is one day of a calendar view with the events that fall on it.
type DayCell struct {
	Date    dateutil.Date `json:"date"`
	InMonth bool          `json:"inMonth"`
	IsToday bool          `json:"isToday"`
	Events  []Event       `json:"events"`
}

// MonthView is the six-row month grid.
type MonthView struct {
	Month    string        `json:"month"`
	Previous dateutil.Date `json:"previous"`
	Next     dateutil.Date `json:"next"`
	Days     []DayCell     `json:"days"`
}

// WeekView is the Sunday-first week containing the anchor date.
type WeekView struct {
	Start    dateutil.Date `json:"start"`
	End      dateutil.Date `json:"end"`
	Previous dateutil.Date `json:"previous"`
	Next     dateutil.Date `json:"next"`
	Days     []DayCell     `json:"days"`
}

// TimeSlot groups the events starting within one day-view slot.
type TimeSlot struct {
	Start  dateutil.Clock `json:"start"`
	Events []Event        `json:"events"`
}

// DayView is a single day split into time slots.
type DayView struct {
	Date     dateutil.Date `json:"date"`
	IsToday  bool          `json:"isToday"`
	Previous dateutil.Date `json:"previous"`
	Next     dateutil.Date `json:"next"`
	Slots    []TimeSlot    `json:"slots"`
	Events   []Event       `json:"events"`
}

// Reminder is a pending notification derived from an event's reminderMinutes.
type Reminder struct {
	EventID         string    `json:"eventId"`
	Title           string    `json:"title"`
	Type            EventType `json:"type"`
	Location        string    `json:"location,omitempty"`
	Room            string    `json:"room,omitempty"`
	StartsAt        time.Time `json:"startsAt"`
	FireAt          time.Time `json:"fireAt"`
	ReminderMinutes int       `json:"reminderMinutes"`
	Message         string    `json:"message"`
}

// AssistantContext is the calendar snapshot handed to the assistant.
type AssistantContext struct {
	Today  dateutil.Date `json:"today"`
	Query  string        `json:"query,omitempty"`
	Events []Event       `json:"events"`
	Digest string        `json:"digest"`
}

// BackupInfo describes a written backup file.
type BackupInfo struct {
	Path      string    `json:"path"`
	Events    int       `json:"events"`
	CreatedAt time.Time `json:"createdAt"`
}
