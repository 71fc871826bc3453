package service

import (
	"fmt"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
)

const (
	// DefaultRecurrenceCap bounds a rule that has neither count nor endDate.
	DefaultRecurrenceCap = 52
	// MaxRecurrenceCap bounds every rule, including explicit counts.
	MaxRecurrenceCap = 1000
)

// RecurrenceExpander materialises the occurrences of recurring base events.
type RecurrenceExpander struct {
	defaultCap int
	maxCap     int
}

// NewRecurrenceExpander constructs an expander. Non-positive caps fall back to
// the package defaults.
func NewRecurrenceExpander(defaultCap, maxCap int) *RecurrenceExpander {
	if maxCap <= 0 {
		maxCap = MaxRecurrenceCap
	}
	if defaultCap <= 0 {
		defaultCap = DefaultRecurrenceCap
	}
	if defaultCap > maxCap {
		defaultCap = maxCap
	}
	return &RecurrenceExpander{defaultCap: defaultCap, maxCap: maxCap}
}

// ValidateRecurrence rejects rules the expander cannot step through.
func (x *RecurrenceExpander) ValidateRecurrence(rule *models.Recurrence) error {
	if rule == nil {
		return nil
	}
	switch rule.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly, models.FrequencyYearly:
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported recurrence frequency %q", rule.Frequency))
	}
	if rule.Interval < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "recurrence interval must be at least 1")
	}
	if rule.Count != nil && *rule.Count < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "recurrence count must be at least 1")
	}
	return nil
}

// Limit returns how many occurrences a rule may produce at most.
func (x *RecurrenceExpander) Limit(rule *models.Recurrence) int {
	if rule == nil {
		return 1
	}
	limit := x.defaultCap
	if rule.Count != nil {
		limit = *rule.Count
	}
	if limit > x.maxCap {
		limit = x.maxCap
	}
	return limit
}

// Expand returns the occurrence sequence of base. An event without a rule
// expands to itself. Each step advances from the previous occurrence, so a
// monthly rule anchored on the 31st drifts once it meets a shorter month.
func (x *RecurrenceExpander) Expand(base models.Event) ([]models.Event, error) {
	if base.Recurrence == nil {
		return []models.Event{base}, nil
	}
	if err := x.ValidateRecurrence(base.Recurrence); err != nil {
		return nil, err
	}
	rule := base.Recurrence
	limit := x.Limit(rule)
	instances := make([]models.Event, 0, min(limit, 64))
	current := base.Date
	for k := 0; k < limit; k++ {
		if rule.EndDate != nil && current.After(*rule.EndDate) {
			break
		}
		instances = append(instances, instanceOf(base, current, k))
		current = advance(current, rule.Frequency, rule.Interval)
	}
	return instances, nil
}

// ExpandAll flattens the canonical collection into its expanded sequence,
// keeping collection order. Events with an invalid rule contribute only their
// base occurrence.
func (x *RecurrenceExpander) ExpandAll(events []models.Event) []models.Event {
	expanded := make([]models.Event, 0, len(events))
	for _, event := range events {
		instances, err := x.Expand(event)
		if err != nil {
			expanded = append(expanded, event)
			continue
		}
		expanded = append(expanded, instances...)
	}
	return expanded
}

func instanceOf(base models.Event, date dateutil.Date, index int) models.Event {
	instance := base.Clone()
	occurrence := index
	instance.Date = date
	instance.ParentEventID = base.ID
	instance.Occurrence = &occurrence
	instance.ID = models.EventRef{BaseID: base.ID, Index: index, Instance: true}.String()
	return instance
}

func advance(d dateutil.Date, freq models.Frequency, interval int) dateutil.Date {
	switch freq {
	case models.FrequencyDaily:
		return d.AddDays(interval)
	case models.FrequencyWeekly:
		return d.AddDays(7 * interval)
	case models.FrequencyMonthly:
		return d.AddMonths(interval)
	default:
		return d.AddYears(interval)
	}
}
