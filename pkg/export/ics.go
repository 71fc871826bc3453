package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ICSEvent is the calendar-neutral shape of one VEVENT.
type ICSEvent struct {
	UID          string
	Summary      string
	Description  string
	Location     string
	URL          string
	Categories   []string
	Start        time.Time
	End          time.Time
	AllDay       bool
	RRule        string
	AlarmMinutes *int
	Extra        map[string]string
}

// ICSExporter writes and reads iCalendar documents.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter builds an exporter stamping documents with productID.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//dept-calendar//EN"
	}
	return &ICSExporter{productID: productID, now: time.Now}
}

// Render serializes events into a VCALENDAR named name.
func (e *ICSExporter) Render(name string, events []ICSEvent) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.productID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}
	stamp := e.now().UTC()

	for _, ev := range events {
		if ev.UID == "" {
			return nil, fmt.Errorf("ics event %q has no uid", ev.Summary)
		}
		vevent := cal.AddEvent(ev.UID)
		vevent.SetDtStampTime(stamp)
		if ev.AllDay {
			vevent.SetAllDayStartAt(ev.Start)
			vevent.SetAllDayEndAt(ev.End)
		} else {
			vevent.SetStartAt(ev.Start.UTC())
			vevent.SetEndAt(ev.End.UTC())
		}
		vevent.SetSummary(ev.Summary)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}
		if ev.URL != "" {
			vevent.SetURL(ev.URL)
		}
		if len(ev.Categories) > 0 {
			vevent.SetProperty(ical.ComponentPropertyCategories, strings.Join(ev.Categories, ","))
		}
		if ev.RRule != "" {
			vevent.AddRrule(ev.RRule)
		}
		for key, value := range ev.Extra {
			if value != "" {
				vevent.SetProperty(ical.ComponentProperty(key), value)
			}
		}
		if ev.AlarmMinutes != nil && *ev.AlarmMinutes > 0 {
			alarm := vevent.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(fmt.Sprintf("-PT%dM", *ev.AlarmMinutes))
			alarm.SetProperty(ical.ComponentPropertyDescription, ev.Summary)
		}
	}

	buf := &bytes.Buffer{}
	if err := cal.SerializeTo(buf); err != nil {
		return nil, fmt.Errorf("render ics: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse reads every VEVENT of an iCalendar document. Events without a start
// are skipped and counted. Extra holds the requested X- properties.
func (e *ICSExporter) Parse(r io.Reader, extra ...string) ([]ICSEvent, int, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parse ics: %w", err)
	}
	events := make([]ICSEvent, 0)
	skipped := 0
	for _, vevent := range cal.Events() {
		ev, ok := parseVEvent(vevent, extra)
		if !ok {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	return events, skipped, nil
}

func parseVEvent(vevent *ical.VEvent, extra []string) (ICSEvent, bool) {
	startProp := vevent.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return ICSEvent{}, false
	}
	ev := ICSEvent{UID: vevent.Id(), Extra: make(map[string]string)}
	ev.AllDay = !strings.Contains(startProp.Value, "T")
	if values, ok := startProp.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		ev.AllDay = true
	}

	var startErr, endErr error
	if ev.AllDay {
		ev.Start, startErr = vevent.GetAllDayStartAt()
		ev.End, endErr = vevent.GetAllDayEndAt()
	} else {
		ev.Start, startErr = vevent.GetStartAt()
		ev.End, endErr = vevent.GetEndAt()
	}
	if startErr != nil {
		return ICSEvent{}, false
	}
	if endErr != nil || !ev.End.After(ev.Start) {
		ev.End = time.Time{}
	}

	ev.Summary = textUnescaper.Replace(propertyValue(vevent, ical.ComponentPropertySummary))
	ev.Description = textUnescaper.Replace(propertyValue(vevent, ical.ComponentPropertyDescription))
	ev.Location = textUnescaper.Replace(propertyValue(vevent, ical.ComponentPropertyLocation))
	ev.URL = propertyValue(vevent, ical.ComponentPropertyUrl)
	ev.RRule = propertyValue(vevent, ical.ComponentPropertyRrule)
	for _, prop := range vevent.GetProperties(ical.ComponentPropertyCategories) {
		for _, category := range strings.Split(prop.Value, ",") {
			if category = strings.TrimSpace(category); category != "" {
				ev.Categories = append(ev.Categories, category)
			}
		}
	}
	for _, key := range extra {
		if value := propertyValue(vevent, ical.ComponentProperty(key)); value != "" {
			ev.Extra[key] = value
		}
	}
	for _, alarm := range vevent.Alarms() {
		trigger := alarm.GetProperty(ical.ComponentPropertyTrigger)
		if trigger == nil {
			continue
		}
		if minutes, err := ParseTriggerMinutes(trigger.Value); err == nil && minutes > 0 {
			ev.AlarmMinutes = &minutes
			break
		}
	}
	return ev, true
}

var textUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";")

func propertyValue(vevent *ical.VEvent, property ical.ComponentProperty) string {
	if prop := vevent.GetProperty(property); prop != nil {
		return prop.Value
	}
	return ""
}

var errUnsupportedTrigger = errors.New("unsupported trigger")

// ParseTriggerMinutes converts a relative alarm trigger such as -PT15M or
// -P1DT2H into minutes before the start. Triggers after the start are
// rejected.
func ParseTriggerMinutes(raw string) (int, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if !strings.HasPrefix(value, "-P") {
		return 0, errUnsupportedTrigger
	}
	value = value[2:]
	total := 0
	inTime := false
	number := ""
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			number += string(r)
		case r == 'T':
			inTime = true
		default:
			n, err := strconv.Atoi(number)
			if err != nil {
				return 0, errUnsupportedTrigger
			}
			number = ""
			switch {
			case r == 'W' && !inTime:
				total += n * 7 * 24 * 60
			case r == 'D' && !inTime:
				total += n * 24 * 60
			case r == 'H' && inTime:
				total += n * 60
			case r == 'M' && inTime:
				total += n
			case r == 'S' && inTime:
				total += n / 60
			default:
				return 0, errUnsupportedTrigger
			}
		}
	}
	if number != "" {
		return 0, errUnsupportedTrigger
	}
	return total, nil
}
