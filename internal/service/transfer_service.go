package service

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/dept-calendar-api/internal/dto"
	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
	"github.com/noah-isme/dept-calendar-api/pkg/export"
)

// ExportFormat enumerates the supported download formats.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
	FormatPDF  ExportFormat = "pdf"
	FormatICS  ExportFormat = "ics"
	FormatYAML ExportFormat = "yaml"
)

const (
	icsRoomProperty  = "X-DEPT-ROOM"
	icsColorProperty = "X-DEPT-COLOR"
	icsImageProperty = "X-DEPT-IMAGE-URL"
	minutesPerDay    = 24 * 60
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type transferStore interface {
	Canonical(ctx context.Context) []models.Event
	Query(ctx context.Context, filter models.EventFilter) []models.Event
	ExportAll(ctx context.Context) ([]byte, error)
	ImportBatch(ctx context.Context, raw []byte) models.ImportResult
	ImportRecords(ctx context.Context, records []dto.CreateEventRequest) models.ImportResult
	Location() *time.Location
	Now() time.Time
}

// TransferService converts the event collection to and from external formats.
type TransferService struct {
	store    transferStore
	expander *RecurrenceExpander
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	ics      *export.ICSExporter
	logger   *zap.Logger
}

// NewTransferService constructs a TransferService.
func NewTransferService(store transferStore, expander *RecurrenceExpander, logger *zap.Logger) *TransferService {
	if expander == nil {
		expander = NewRecurrenceExpander(DefaultRecurrenceCap, MaxRecurrenceCap)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		store:    store,
		expander: expander,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		ics:      export.NewICSExporter("-//Department Calendar//EN"),
		logger:   logger,
	}
}

// ParseExportFormat validates a format name. Empty selects JSON.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatPDF, FormatICS, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// Export renders the collection. JSON, YAML and ICS carry the canonical base
// events; CSV and PDF list the expanded events matching filter.
func (s *TransferService) Export(ctx context.Context, format ExportFormat, filter models.EventFilter) (*ExportFile, error) {
	stamp := dateutil.Today(s.store.Now(), s.store.Location()).String()
	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatJSON, "":
		format = FormatJSON
		contentType = "application/json"
		body, err = s.store.ExportAll(ctx)
	case FormatYAML:
		contentType = "application/yaml"
		body, err = yaml.Marshal(s.store.Canonical(ctx))
	case FormatICS:
		contentType = "text/calendar; charset=utf-8"
		body, err = s.renderICS(ctx)
	case FormatCSV:
		contentType = "text/csv"
		body, err = s.csv.Render(eventDataset(s.store.Query(ctx, filter)))
	case FormatPDF:
		contentType = "application/pdf"
		body, err = s.pdf.Render(eventAgenda(s.store.Query(ctx, filter), filter))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export events")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("dept-events-%s.%s", stamp, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// Import appends events from body. The format follows contentType, falling
// back to sniffing for iCalendar; anything else is treated as a JSON array.
func (s *TransferService) Import(ctx context.Context, contentType string, body []byte) models.ImportResult {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	trimmed := bytes.TrimSpace(body)
	switch {
	case mediaType == "text/calendar" || bytes.HasPrefix(trimmed, []byte("BEGIN:VCALENDAR")):
		return s.importICS(ctx, trimmed)
	case mediaType == "application/yaml" || mediaType == "application/x-yaml" || mediaType == "text/yaml":
		return s.importYAML(ctx, trimmed)
	default:
		return s.store.ImportBatch(ctx, body)
	}
}

func (s *TransferService) renderICS(ctx context.Context) ([]byte, error) {
	loc := s.store.Location()
	canonical := s.store.Canonical(ctx)
	events := make([]export.ICSEvent, 0, len(canonical))
	for _, event := range canonical {
		start := event.Date.At(event.Time, loc)
		ev := export.ICSEvent{
			UID:          event.ID,
			Summary:      event.Title,
			Description:  event.Description,
			Location:     event.Location,
			URL:          event.ResourcesURL,
			Categories:   []string{string(event.Type)},
			Start:        start,
			End:          start.Add(time.Duration(event.DurationMinutes) * time.Minute),
			AlarmMinutes: event.ReminderMinutes,
			Extra: map[string]string{
				icsRoomProperty:  event.Room,
				icsColorProperty: event.Color,
				icsImageProperty: event.ImageURL,
			},
		}
		if event.Recurrence != nil {
			rule, err := s.rruleFor(event, loc)
			if err != nil {
				s.logger.Warn("recurrence not exported", zap.String("event_id", event.ID), zap.Error(err))
			} else {
				ev.RRule = rule
			}
		}
		events = append(events, ev)
	}
	return s.ics.Render("Department Events", events)
}

// rruleFor renders the rule so that the RRULE yields the same occurrences:
// UNTIL when the end date is what stops the series, COUNT otherwise.
func (s *TransferService) rruleFor(event models.Event, loc *time.Location) (string, error) {
	rule := event.Recurrence
	instances, err := s.expander.Expand(event)
	if err != nil {
		return "", err
	}
	opt := rrule.ROption{Interval: rule.Interval}
	switch rule.Frequency {
	case models.FrequencyDaily:
		opt.Freq = rrule.DAILY
	case models.FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
	case models.FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
	case models.FrequencyYearly:
		opt.Freq = rrule.YEARLY
	default:
		return "", fmt.Errorf("unknown frequency %q", rule.Frequency)
	}
	if rule.EndDate != nil && len(instances) < s.expander.Limit(rule) {
		opt.Until = rule.EndDate.At(event.Time, loc).UTC()
	} else {
		opt.Count = len(instances)
	}
	return opt.RRuleString(), nil
}

func (s *TransferService) importICS(ctx context.Context, body []byte) models.ImportResult {
	parsed, skipped, err := s.ics.Parse(bytes.NewReader(body), icsRoomProperty, icsColorProperty, icsImageProperty)
	if err != nil {
		return models.ImportResult{Success: false, Error: fmt.Sprintf("Failed to parse import data: %v", err)}
	}
	loc := s.store.Location()
	records := make([]dto.CreateEventRequest, 0, len(parsed))
	for _, ev := range parsed {
		records = append(records, s.recordFromICS(ev, loc))
	}
	result := s.store.ImportRecords(ctx, records)
	result.Skipped += skipped
	s.logger.Info("ics import finished", zap.Int("events", len(parsed)), zap.Int("imported", result.Count), zap.Bool("success", result.Success))
	return result
}

func (s *TransferService) recordFromICS(ev export.ICSEvent, loc *time.Location) dto.CreateEventRequest {
	record := dto.CreateEventRequest{
		Title:           ev.Summary,
		Description:     ev.Description,
		Location:        ev.Location,
		Room:            ev.Extra[icsRoomProperty],
		Color:           ev.Extra[icsColorProperty],
		ImageURL:        ev.Extra[icsImageProperty],
		ResourcesURL:    ev.URL,
		Type:            eventTypeFromCategories(ev.Categories),
		ReminderMinutes: ev.AlarmMinutes,
	}
	if ev.AllDay {
		record.Date = dateutil.DateOf(ev.Start).String()
		record.Time = "00:00"
		record.DurationMinutes = minutesPerDay
		if !ev.End.IsZero() {
			record.DurationMinutes = int(ev.End.Sub(ev.Start).Minutes())
		}
	} else {
		start := ev.Start.In(loc)
		record.Date = dateutil.DateOf(start).String()
		record.Time = dateutil.ClockOf(start).String()
		if !ev.End.IsZero() {
			record.DurationMinutes = int(ev.End.Sub(ev.Start).Minutes())
		}
	}
	if ev.RRule != "" {
		record.Recurrence = recurrenceFromRRule(ev.RRule, loc)
	}
	return record
}

// recurrenceFromRRule maps the subset of RRULE the calendar can express.
// Other frequencies import as a single occurrence.
func recurrenceFromRRule(raw string, loc *time.Location) *dto.RecurrenceRequest {
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return nil
	}
	rule := &dto.RecurrenceRequest{}
	switch opt.Freq {
	case rrule.DAILY:
		rule.Frequency = string(models.FrequencyDaily)
	case rrule.WEEKLY:
		rule.Frequency = string(models.FrequencyWeekly)
	case rrule.MONTHLY:
		rule.Frequency = string(models.FrequencyMonthly)
	case rrule.YEARLY:
		rule.Frequency = string(models.FrequencyYearly)
	default:
		return nil
	}
	if opt.Interval > 1 {
		interval := opt.Interval
		rule.Interval = &interval
	}
	if opt.Count > 0 {
		count := opt.Count
		rule.Count = &count
	}
	if !opt.Until.IsZero() {
		rule.EndDate = dateutil.DateOf(opt.Until.In(loc)).String()
	}
	return rule
}

func eventTypeFromCategories(categories []string) string {
	for _, category := range categories {
		for _, t := range models.EventTypes {
			if strings.EqualFold(category, string(t)) {
				return string(t)
			}
		}
	}
	return string(models.EventTypeOther)
}

func (s *TransferService) importYAML(ctx context.Context, body []byte) models.ImportResult {
	var doc yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return models.ImportResult{Success: false, Error: fmt.Sprintf("Failed to parse import data: %v", err)}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.SequenceNode {
		return models.ImportResult{Success: false, Error: invalidImportFormat}
	}
	items := doc.Content[0].Content
	records := make([]dto.CreateEventRequest, 0, len(items))
	skipped := 0
	for i, item := range items {
		if item.Kind != yaml.MappingNode {
			skipped++
			continue
		}
		var record dto.CreateEventRequest
		if err := item.Decode(&record); err != nil {
			return models.ImportResult{Success: false, Error: fmt.Sprintf("record %d: %v", i+1, err)}
		}
		records = append(records, record)
	}
	result := s.store.ImportRecords(ctx, records)
	result.Skipped += skipped
	return result
}

func eventDataset(events []models.Event) export.Dataset {
	data := export.Dataset{
		Headers: []string{"id", "title", "type", "date", "time", "durationMinutes", "location", "room", "seriesId", "reminderMinutes", "description"},
		Rows:    make([][]string, 0, len(events)),
	}
	for _, event := range events {
		reminder := ""
		if event.ReminderMinutes != nil {
			reminder = strconv.Itoa(*event.ReminderMinutes)
		}
		data.Rows = append(data.Rows, []string{
			event.ID,
			event.Title,
			string(event.Type),
			event.Date.String(),
			event.Time.String(),
			strconv.Itoa(event.DurationMinutes),
			event.Location,
			event.Room,
			event.ParentEventID,
			reminder,
			event.Description,
		})
	}
	return data
}

func eventAgenda(events []models.Event, filter models.EventFilter) export.Agenda {
	sorted := models.CloneEvents(events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Date.Compare(sorted[j].Date); c != 0 {
			return c < 0
		}
		return sorted[i].Time.Minutes() < sorted[j].Time.Minutes()
	})

	agenda := export.Agenda{
		Title: "Department Events",
		Columns: []export.Column{
			{Header: "Time", Width: 28, Align: "C"},
			{Header: "Title"},
			{Header: "Type", Width: 25, Align: "C"},
			{Header: "Place", Width: 50},
		},
	}
	switch {
	case filter.From != nil && filter.To != nil:
		agenda.Subtitle = fmt.Sprintf("%s to %s", filter.From, filter.To)
	case filter.From != nil:
		agenda.Subtitle = fmt.Sprintf("from %s", filter.From)
	case filter.To != nil:
		agenda.Subtitle = fmt.Sprintf("until %s", filter.To)
	}

	for _, event := range sorted {
		heading := event.Date.In(time.UTC).Format("Monday, 2 January 2006")
		if n := len(agenda.Sections); n == 0 || agenda.Sections[n-1].Heading != heading {
			agenda.Sections = append(agenda.Sections, export.Section{Heading: heading})
		}
		end := dateutil.ClockOf(event.Date.At(event.Time, time.UTC).Add(time.Duration(event.DurationMinutes) * time.Minute))
		place := event.Location
		if event.Room != "" {
			if place != "" {
				place += ", "
			}
			place += event.Room
		}
		section := &agenda.Sections[len(agenda.Sections)-1]
		section.Rows = append(section.Rows, []string{
			fmt.Sprintf("%s-%s", event.Time, end),
			event.Title,
			string(event.Type),
			place,
		})
	}
	if len(agenda.Sections) == 0 {
		agenda.Sections = []export.Section{{Heading: "No events"}}
	}
	return agenda
}
