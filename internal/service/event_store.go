package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-calendar-api/internal/dto"
	"github.com/noah-isme/dept-calendar-api/internal/models"
	"github.com/noah-isme/dept-calendar-api/pkg/dateutil"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
	"github.com/noah-isme/dept-calendar-api/pkg/sanitize"
)

// DefaultDurationMinutes is applied when an event arrives without a duration.
const DefaultDurationMinutes = 60

const (
	outcomeSuccess  = "success"
	outcomeConflict = "conflict"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
)

const invalidImportFormat = "Invalid format: expected array"

type eventPersister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, revision uint64, payload []byte)
}

type storeMetrics interface {
	RecordMutation(operation, outcome string)
	SetEventCounts(base, expanded int)
}

// EventStoreConfig tunes an EventStore. Zero values select defaults.
type EventStoreConfig struct {
	DefaultDuration int
	HistorySize     int
	Location        *time.Location
	Now             func() time.Time
	NewID           func() string
}

// EventStore owns the canonical collection of base events. Every operation
// runs under one mutex, so callers observe them one at a time. Recurrence
// instances are derived on each read and never stored.
type EventStore struct {
	mu       sync.Mutex
	events   []models.Event
	revision uint64
	history  *eventHistory

	expander  *RecurrenceExpander
	detector  *ConflictDetector
	persister eventPersister
	validator *validator.Validate
	metrics   storeMetrics
	logger    *zap.Logger

	defaultDuration int
	loc             *time.Location
	now             func() time.Time
	newID           func() string
}

// NewEventStore constructs an empty store. Call Load to restore the persisted collection.
func NewEventStore(persister eventPersister, expander *RecurrenceExpander, validate *validator.Validate, metrics storeMetrics, logger *zap.Logger, cfg EventStoreConfig) *EventStore {
	if expander == nil {
		expander = NewRecurrenceExpander(DefaultRecurrenceCap, MaxRecurrenceCap)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultDurationMinutes
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	registerEventValidations(validate)
	return &EventStore{
		events:          make([]models.Event, 0),
		history:         newEventHistory(cfg.HistorySize, nil),
		expander:        expander,
		detector:        NewConflictDetector(),
		persister:       persister,
		validator:       validate,
		metrics:         metrics,
		logger:          logger,
		defaultDuration: cfg.DefaultDuration,
		loc:             cfg.Location,
		now:             cfg.Now,
		newID:           cfg.NewID,
	}
}

// Load replaces the collection with the persisted snapshot and returns the
// number of events restored. A missing, unreadable or malformed snapshot
// yields an empty collection.
func (s *EventStore) Load(ctx context.Context) int {
	events := make([]models.Event, 0)
	if s.persister != nil {
		payload, err := s.persister.Load(ctx)
		switch {
		case err != nil && appErrors.Is(err, appErrors.ErrSnapshotMissing):
			s.logger.Info("no stored events, starting empty")
		case err != nil:
			s.logger.Warn("failed to read stored events, starting empty", zap.Error(err))
		default:
			if decodeErr := json.Unmarshal(payload, &events); decodeErr != nil {
				s.logger.Warn("stored events are malformed, starting empty", zap.Error(decodeErr))
				events = make([]models.Event, 0)
			}
		}
	}
	events = s.normalizeLoaded(events)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.history.reset(events)
	s.updateGauges()
	return len(events)
}

// Add validates, sanitizes and inserts a new base event. A time conflict is
// reported in the result and nothing is committed.
func (s *EventStore) Add(ctx context.Context, req dto.CreateEventRequest) (*models.MutationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		s.record("add", outcomeInvalid)
		return nil, validationError(err, "invalid event payload")
	}
	event, err := s.buildEvent(req)
	if err != nil {
		s.record("add", outcomeInvalid)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = s.newID()
	candidates, err := s.expander.Expand(event)
	if err != nil {
		s.record("add", outcomeInvalid)
		return nil, err
	}
	if conflict := s.detector.FirstConflict(candidates, s.expander.ExpandAll(s.events), ""); conflict != nil {
		s.record("add", outcomeConflict)
		s.logger.Info("event rejected by conflict", zap.String("title", event.Title), zap.String("conflict_id", conflict.ID))
		return &models.MutationResult{Success: false, Conflict: conflict}, nil
	}

	s.events = append(s.events, event)
	s.commit(ctx, "add")
	s.logger.Info("event added", zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
	created := event.Clone()
	return &models.MutationResult{Success: true, Event: &created}, nil
}

// Update merges the whitelisted fields of req into the base event addressed
// by id, which may be an instance id. The event's own series is ignored when
// checking conflicts.
func (s *EventStore) Update(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.MutationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		s.record("update", outcomeInvalid)
		return nil, validationError(err, "invalid event payload")
	}
	ref := models.ParseEventRef(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(ref.BaseID)
	if idx < 0 {
		s.record("update", outcomeNotFound)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	updated, err := s.applyUpdate(s.events[idx], req)
	if err != nil {
		s.record("update", outcomeInvalid)
		return nil, err
	}
	candidates, err := s.expander.Expand(updated)
	if err != nil {
		s.record("update", outcomeInvalid)
		return nil, err
	}
	if conflict := s.detector.FirstConflict(candidates, s.expander.ExpandAll(s.events), ref.BaseID); conflict != nil {
		s.record("update", outcomeConflict)
		s.logger.Info("update rejected by conflict", zap.String("event_id", ref.BaseID), zap.String("conflict_id", conflict.ID))
		return &models.MutationResult{Success: false, Conflict: conflict}, nil
	}

	s.events[idx] = updated
	s.commit(ctx, "update")
	s.logger.Info("event updated", zap.String("event_id", updated.ID))
	result := updated.Clone()
	return &models.MutationResult{Success: true, Event: &result}, nil
}

// Delete removes the base event addressed by id, or by the base of an
// instance id, together with its whole series. It reports whether anything
// was removed.
func (s *EventStore) Delete(ctx context.Context, id string) bool {
	ref := models.ParseEventRef(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(ref.BaseID)
	if idx < 0 {
		s.record("delete", outcomeNotFound)
		return false
	}
	s.events = append(s.events[:idx:idx], s.events[idx+1:]...)
	s.commit(ctx, "delete")
	s.logger.Info("event deleted", zap.String("event_id", ref.BaseID))
	return true
}

// ImportBatch appends the events of a serialized JSON array. A JSON string
// holding the serialized array is accepted too. Records missing title, date,
// time or type are skipped. Any other invalid record rejects the whole batch.
// Imported events bypass conflict checks.
func (s *EventStore) ImportBatch(ctx context.Context, raw []byte) models.ImportResult {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err == nil {
			trimmed = bytes.TrimSpace([]byte(inner))
		}
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		s.record("import", outcomeInvalid)
		return models.ImportResult{Success: false, Count: 0, Error: invalidImportFormat}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		s.record("import", outcomeInvalid)
		return models.ImportResult{Success: false, Count: 0, Error: fmt.Sprintf("Failed to parse import data: %v", err)}
	}

	records := make([]dto.CreateEventRequest, 0, len(items))
	skipped := 0
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			skipped++
			continue
		}
		var record dto.CreateEventRequest
		if err := json.Unmarshal(item, &record); err != nil {
			s.record("import", outcomeInvalid)
			return models.ImportResult{Success: false, Count: 0, Error: fmt.Sprintf("record %d: %v", i+1, err)}
		}
		records = append(records, record)
	}
	result := s.ImportRecords(ctx, records)
	result.Skipped += skipped
	return result
}

// ImportRecords appends already decoded records with the same rules as ImportBatch.
func (s *EventStore) ImportRecords(ctx context.Context, records []dto.CreateEventRequest) models.ImportResult {
	accepted := make([]models.Event, 0, len(records))
	skipped := 0
	for i, record := range records {
		if missingRequired(record) {
			skipped++
			continue
		}
		if err := s.validator.Struct(record); err != nil {
			s.record("import", outcomeInvalid)
			return models.ImportResult{Success: false, Count: 0, Skipped: skipped, Error: fmt.Sprintf("record %d: %s", i+1, appErrors.FromError(validationError(err, "invalid event")).Message)}
		}
		event, err := s.buildEvent(record)
		if err != nil {
			s.record("import", outcomeInvalid)
			return models.ImportResult{Success: false, Count: 0, Skipped: skipped, Error: fmt.Sprintf("record %d: %s", i+1, appErrors.FromError(err).Message)}
		}
		accepted = append(accepted, event)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range accepted {
		accepted[i].ID = s.newID()
	}
	if len(accepted) > 0 {
		s.events = append(s.events, accepted...)
		s.commit(ctx, "import")
	}
	s.logger.Info("events imported", zap.Int("count", len(accepted)), zap.Int("skipped", skipped))
	return models.ImportResult{Success: true, Count: len(accepted), Skipped: skipped}
}

// ExportAll serializes the canonical collection as an indented JSON array.
func (s *EventStore) ExportAll(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	events := models.CloneEvents(s.events)
	s.mu.Unlock()
	payload, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export events")
	}
	return payload, nil
}

// Canonical returns a copy of the stored base events.
func (s *EventStore) Canonical(_ context.Context) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneEvents(s.events)
}

// Expanded returns every base event and recurrence instance.
func (s *EventStore) Expanded(_ context.Context) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expander.ExpandAll(s.events)
}

// Get resolves a base or instance id.
func (s *EventStore) Get(_ context.Context, id string) (*models.Event, error) {
	ref := models.ParseEventRef(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(ref.BaseID)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	base := s.events[idx]
	if !ref.Instance {
		event := base.Clone()
		return &event, nil
	}
	instances, err := s.expander.Expand(base)
	if err != nil {
		return nil, err
	}
	for _, instance := range instances {
		if instance.Occurrence != nil && *instance.Occurrence == ref.Index {
			return &instance, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "occurrence not found")
}

// Query filters the expanded collection.
func (s *EventStore) Query(ctx context.Context, filter models.EventFilter) []models.Event {
	expanded := s.Expanded(ctx)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]models.Event, 0, len(expanded))
	for _, event := range expanded {
		if filter.Type != "" && event.Type != filter.Type {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, event.Type) {
			continue
		}
		if filter.From != nil && event.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && event.Date.After(*filter.To) {
			continue
		}
		if search != "" && !matchesSearch(event, search) {
			continue
		}
		result = append(result, event)
	}
	return result
}

// EventsForDate returns the filtered events on d.
func (s *EventStore) EventsForDate(ctx context.Context, d dateutil.Date, filter models.EventFilter) []models.Event {
	return s.EventsInRange(ctx, d, d, filter)
}

// EventsInRange returns the filtered events between from and to inclusive.
func (s *EventStore) EventsInRange(ctx context.Context, from, to dateutil.Date, filter models.EventFilter) []models.Event {
	filter.From = narrowFrom(filter.From, from)
	filter.To = narrowTo(filter.To, to)
	return s.Query(ctx, filter)
}

// Counts aggregates the expanded collection relative to today.
func (s *EventStore) Counts(ctx context.Context) models.EventCounts {
	expanded := s.Expanded(ctx)
	today := s.Today()
	counts := models.EventCounts{Total: len(expanded), ByType: make(map[models.EventType]int, len(models.EventTypes))}
	for _, t := range models.EventTypes {
		counts.ByType[t] = 0
	}
	for _, event := range expanded {
		counts.ByType[event.Type]++
		if !event.Date.Before(today) {
			counts.Upcoming++
		}
		if event.Date.SameMonth(today) {
			counts.ThisMonth++
		}
	}
	return counts
}

// Conflicts returns the conflict groups of the expanded collection.
func (s *EventStore) Conflicts(ctx context.Context) [][]models.Event {
	return s.detector.Groups(s.Expanded(ctx))
}

// Undo restores the previous canonical collection.
func (s *EventStore) Undo(ctx context.Context) (models.HistoryState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, ok := s.history.undo()
	if !ok {
		return s.history.state(), appErrors.ErrNothingToUndo
	}
	s.events = previous
	s.persist(ctx)
	s.record("undo", outcomeSuccess)
	return s.history.state(), nil
}

// Redo re-applies the last undone change.
func (s *EventStore) Redo(ctx context.Context) (models.HistoryState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.history.redo()
	if !ok {
		return s.history.state(), appErrors.ErrNothingToRedo
	}
	s.events = next
	s.persist(ctx)
	s.record("redo", outcomeSuccess)
	return s.history.state(), nil
}

// HistoryState reports the undo/redo position.
func (s *EventStore) HistoryState() models.HistoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.state()
}

// Today returns the current date in the store's location.
func (s *EventStore) Today() dateutil.Date {
	return dateutil.Today(s.now(), s.loc)
}

// Location returns the zone wall-clock times are interpreted in.
func (s *EventStore) Location() *time.Location {
	return s.loc
}

// Now returns the store clock's current time.
func (s *EventStore) Now() time.Time {
	return s.now()
}

func (s *EventStore) buildEvent(req dto.CreateEventRequest) (models.Event, error) {
	date, err := dateutil.ParseDate(req.Date)
	if err != nil {
		return models.Event{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", req.Date))
	}
	clock, err := dateutil.ParseClock(req.Time)
	if err != nil {
		return models.Event{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time %q", req.Time))
	}
	eventType := models.EventType(req.Type)
	if !eventType.Valid() {
		return models.Event{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown event type %q", req.Type))
	}
	if req.DurationMinutes < 0 {
		return models.Event{}, appErrors.Clone(appErrors.ErrValidation, "durationMinutes must be positive")
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = s.defaultDuration
	}
	event := models.Event{
		Title:           sanitize.Text(req.Title),
		Description:     sanitize.Text(req.Description),
		Date:            date,
		Time:            clock,
		DurationMinutes: duration,
		Location:        sanitize.Text(req.Location),
		Room:            sanitize.Text(req.Room),
		Type:            eventType,
		ReminderMinutes: copyInt(req.ReminderMinutes),
		Color:           sanitize.Text(req.Color),
		ResourcesURL:    strings.TrimSpace(req.ResourcesURL),
		ImageURL:        strings.TrimSpace(req.ImageURL),
	}
	if strings.TrimSpace(event.Title) == "" {
		return models.Event{}, appErrors.Clone(appErrors.ErrValidation, "title must not be empty")
	}
	if req.Recurrence != nil {
		rule, err := toRecurrence(*req.Recurrence)
		if err != nil {
			return models.Event{}, err
		}
		event.Recurrence = rule
	}
	if err := s.checkRecurrence(event); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// applyUpdate is the explicit merge of the mutable fields. Identity and
// derived fields are never touched.
func (s *EventStore) applyUpdate(current models.Event, req dto.UpdateEventRequest) (models.Event, error) {
	next := current.Clone()
	if req.Title != nil {
		next.Title = sanitize.Text(*req.Title)
		if strings.TrimSpace(next.Title) == "" {
			return models.Event{}, appErrors.Clone(appErrors.ErrValidation, "title must not be empty")
		}
	}
	if req.Description != nil {
		next.Description = sanitize.Text(*req.Description)
	}
	if req.Date != nil {
		date, err := dateutil.ParseDate(*req.Date)
		if err != nil {
			return models.Event{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", *req.Date))
		}
		next.Date = date
	}
	if req.Time != nil {
		clock, err := dateutil.ParseClock(*req.Time)
		if err != nil {
			return models.Event{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time %q", *req.Time))
		}
		next.Time = clock
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return models.Event{}, appErrors.Clone(appErrors.ErrValidation, "durationMinutes must be positive")
		}
		next.DurationMinutes = *req.DurationMinutes
	}
	if req.Location != nil {
		next.Location = sanitize.Text(*req.Location)
	}
	if req.Room != nil {
		next.Room = sanitize.Text(*req.Room)
	}
	if req.Type != nil {
		eventType := models.EventType(*req.Type)
		if !eventType.Valid() {
			return models.Event{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown event type %q", *req.Type))
		}
		next.Type = eventType
	}
	if req.ReminderMinutes != nil {
		next.ReminderMinutes = copyInt(req.ReminderMinutes)
	}
	if req.Color != nil {
		next.Color = sanitize.Text(*req.Color)
	}
	if req.ResourcesURL != nil {
		next.ResourcesURL = strings.TrimSpace(*req.ResourcesURL)
	}
	if req.ImageURL != nil {
		next.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	switch {
	case req.ClearRecurrence:
		next.Recurrence = nil
	case req.Recurrence != nil:
		rule, err := toRecurrence(*req.Recurrence)
		if err != nil {
			return models.Event{}, err
		}
		next.Recurrence = rule
	}
	if err := s.checkRecurrence(next); err != nil {
		return models.Event{}, err
	}
	return next, nil
}

func (s *EventStore) checkRecurrence(event models.Event) error {
	if event.Recurrence == nil {
		return nil
	}
	if err := s.expander.ValidateRecurrence(event.Recurrence); err != nil {
		return err
	}
	if event.Recurrence.EndDate != nil && event.Recurrence.EndDate.Before(event.Date) {
		return appErrors.Clone(appErrors.ErrValidation, "recurrence endDate must not be before the event date")
	}
	return nil
}

// normalizeLoaded repairs snapshots written by older clients: missing or
// clashing ids, absent durations and intervals, unknown types.
func (s *EventStore) normalizeLoaded(events []models.Event) []models.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]models.Event, 0, len(events))
	for _, event := range events {
		if event.ID == "" || strings.Contains(event.ID, models.InstanceSeparator) {
			event.ID = s.newID()
		}
		if _, dup := seen[event.ID]; dup {
			event.ID = s.newID()
		}
		seen[event.ID] = struct{}{}
		event.ParentEventID = ""
		event.Occurrence = nil
		if event.DurationMinutes <= 0 {
			event.DurationMinutes = s.defaultDuration
		}
		if !event.Type.Valid() {
			s.logger.Warn("stored event has unknown type", zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
			event.Type = models.EventTypeOther
		}
		if event.Recurrence != nil {
			if event.Recurrence.Interval == 0 {
				event.Recurrence.Interval = 1
			}
			if err := s.expander.ValidateRecurrence(event.Recurrence); err != nil {
				s.logger.Warn("stored recurrence dropped", zap.String("event_id", event.ID), zap.Error(err))
				event.Recurrence = nil
			}
		}
		out = append(out, event)
	}
	return out
}

// commit must be called with s.mu held after the collection changed.
func (s *EventStore) commit(ctx context.Context, operation string) {
	s.history.record(s.events)
	s.persist(ctx)
	s.record(operation, outcomeSuccess)
}

func (s *EventStore) persist(ctx context.Context) {
	s.revision++
	s.updateGauges()
	if s.persister == nil {
		return
	}
	payload, err := json.Marshal(s.events)
	if err != nil {
		s.logger.Error("failed to encode events for storage", zap.Error(err))
		return
	}
	s.persister.Save(context.WithoutCancel(ctx), s.revision, payload)
}

func (s *EventStore) updateGauges() {
	if s.metrics == nil {
		return
	}
	s.metrics.SetEventCounts(len(s.events), len(s.expander.ExpandAll(s.events)))
}

func (s *EventStore) record(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordMutation(operation, outcome)
	}
}

func (s *EventStore) indexOf(id string) int {
	for i, event := range s.events {
		if event.ID == id {
			return i
		}
	}
	return -1
}

func toRecurrence(req dto.RecurrenceRequest) (*models.Recurrence, error) {
	rule := &models.Recurrence{Frequency: models.Frequency(req.Frequency), Interval: 1}
	if req.Interval != nil {
		rule.Interval = *req.Interval
	}
	if req.EndDate != "" {
		end, err := dateutil.ParseDate(req.EndDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid recurrence endDate %q", req.EndDate))
		}
		rule.EndDate = &end
	}
	rule.Count = copyInt(req.Count)
	return rule, nil
}

func missingRequired(record dto.CreateEventRequest) bool {
	return strings.TrimSpace(record.Title) == "" || record.Date == "" || record.Time == "" || record.Type == ""
}

func matchesSearch(event models.Event, search string) bool {
	for _, field := range []string{event.Title, event.Description, event.Location, event.Room} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func containsType(types []models.EventType, t models.EventType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func narrowFrom(current *dateutil.Date, from dateutil.Date) *dateutil.Date {
	if current != nil && current.After(from) {
		return current
	}
	return &from
}

func narrowTo(current *dateutil.Date, to dateutil.Date) *dateutil.Date {
	if current != nil && current.Before(to) {
		return current
	}
	return &to
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
