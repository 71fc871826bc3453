package service

import "github.com/noah-isme/dept-calendar-api/internal/models"

// DefaultHistorySize is the number of canonical snapshots kept for undo.
const DefaultHistorySize = 50

// eventHistory is a bounded linear undo/redo log of canonical collections.
// Recording after an undo discards the redo branch.
type eventHistory struct {
	limit     int
	snapshots [][]models.Event
	index     int
}

func newEventHistory(limit int, initial []models.Event) *eventHistory {
	if limit < 2 {
		limit = DefaultHistorySize
	}
	h := &eventHistory{limit: limit}
	h.reset(initial)
	return h
}

func (h *eventHistory) reset(initial []models.Event) {
	h.snapshots = [][]models.Event{models.CloneEvents(initial)}
	h.index = 0
}

func (h *eventHistory) record(state []models.Event) {
	h.snapshots = append(h.snapshots[:h.index+1], models.CloneEvents(state))
	if over := len(h.snapshots) - h.limit; over > 0 {
		h.snapshots = append([][]models.Event(nil), h.snapshots[over:]...)
	}
	h.index = len(h.snapshots) - 1
}

func (h *eventHistory) undo() ([]models.Event, bool) {
	if h.index == 0 {
		return nil, false
	}
	h.index--
	return models.CloneEvents(h.snapshots[h.index]), true
}

func (h *eventHistory) redo() ([]models.Event, bool) {
	if h.index >= len(h.snapshots)-1 {
		return nil, false
	}
	h.index++
	return models.CloneEvents(h.snapshots[h.index]), true
}

func (h *eventHistory) state() models.HistoryState {
	return models.HistoryState{
		CanUndo: h.index > 0,
		CanRedo: h.index < len(h.snapshots)-1,
		Depth:   len(h.snapshots),
	}
}
