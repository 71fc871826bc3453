package dto

// RecurrenceRequest is the wire form of a recurrence rule. A missing interval
// means every period.
type RecurrenceRequest struct {
	Frequency string `json:"frequency" yaml:"frequency" validate:"required,oneof=daily weekly monthly yearly"`
	Interval  *int   `json:"interval,omitempty" yaml:"interval,omitempty" validate:"omitempty,gte=1"`
	EndDate   string `json:"endDate,omitempty" yaml:"endDate,omitempty" validate:"omitempty,caldate"`
	Count     *int   `json:"count,omitempty" yaml:"count,omitempty" validate:"omitempty,gte=1"`
}

// CreateEventRequest is the payload for adding an event. It is also the shape
// of one record in a JSON import batch.
type CreateEventRequest struct {
	Title           string             `json:"title" yaml:"title" validate:"required,max=200"`
	Description     string             `json:"description" yaml:"description" validate:"max=5000"`
	Date            string             `json:"date" yaml:"date" validate:"required,caldate"`
	Time            string             `json:"time" yaml:"time" validate:"required,clock"`
	DurationMinutes int                `json:"durationMinutes" yaml:"durationMinutes" validate:"gte=0"`
	Location        string             `json:"location" yaml:"location" validate:"max=200"`
	Room            string             `json:"room" yaml:"room" validate:"max=100"`
	Type            string             `json:"type" yaml:"type" validate:"required,eventtype"`
	ReminderMinutes *int               `json:"reminderMinutes,omitempty" yaml:"reminderMinutes,omitempty" validate:"omitempty,gte=0"`
	Color           string             `json:"color" yaml:"color" validate:"max=32"`
	ResourcesURL    string             `json:"resourcesUrl" yaml:"resourcesUrl" validate:"omitempty,url"`
	ImageURL        string             `json:"imageUrl" yaml:"imageUrl" validate:"omitempty,url"`
	Recurrence      *RecurrenceRequest `json:"recurrence,omitempty" yaml:"recurrence,omitempty" validate:"omitempty"`
}

// UpdateEventRequest lists the fields an update may touch. Nil fields keep
// their current value. ClearRecurrence turns a series back into a single event.
type UpdateEventRequest struct {
	Title           *string            `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description     *string            `json:"description,omitempty" validate:"omitempty,max=5000"`
	Date            *string            `json:"date,omitempty" validate:"omitempty,caldate"`
	Time            *string            `json:"time,omitempty" validate:"omitempty,clock"`
	DurationMinutes *int               `json:"durationMinutes,omitempty" validate:"omitempty,gte=1"`
	Location        *string            `json:"location,omitempty" validate:"omitempty,max=200"`
	Room            *string            `json:"room,omitempty" validate:"omitempty,max=100"`
	Type            *string            `json:"type,omitempty" validate:"omitempty,eventtype"`
	ReminderMinutes *int               `json:"reminderMinutes,omitempty" validate:"omitempty,gte=0"`
	Color           *string            `json:"color,omitempty" validate:"omitempty,max=32"`
	ResourcesURL    *string            `json:"resourcesUrl,omitempty" validate:"omitempty,url"`
	ImageURL        *string            `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Recurrence      *RecurrenceRequest `json:"recurrence,omitempty" validate:"omitempty"`
	ClearRecurrence bool               `json:"clearRecurrence,omitempty"`
}

// EventQuery captures list filters from the query string.
type EventQuery struct {
	Search string   `form:"q"`
	Type   string   `form:"type"`
	Types  []string `form:"types"`
	Start  string   `form:"start"`
	End    string   `form:"end"`

	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}
