package manager

import (
	"errors"
	"fmt"
	"slices"

	"github.com/baiirun/tracker/internal/model"
)

var ErrNotEmpty = errors.New("manager: restore into a non-empty manager")

// Snapshot is the persistent part of a manager's state. History lists ids
// most recent first; NextID is the next id the generator would issue.
type Snapshot struct {
	Items   []model.Item
	History []int64
	NextID  int64
}

// Snapshot captures the manager's items in id order, its history and its
// id generator position.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.items.Values()
	sortByID(items)
	tracked := m.history.List()
	historyIDs := make([]int64, 0, len(tracked))
	for _, t := range tracked {
		historyIDs = append(historyIDs, t.ID)
	}
	return Snapshot{Items: items, History: historyIDs, NextID: m.ids.Peek()}
}

// Restore loads a snapshot into an empty manager. Item ids are kept, epic
// status and windows are re-derived from the subtasks, and the history is
// replayed. The id generator resumes at s.NextID or past the largest
// restored id, whichever is later, so deleted ids are not reissued.
//
// The snapshot is checked in full before anything is stored, so a rejected
// snapshot leaves the manager empty.
func (m *Manager) Restore(s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, historyIDs := s.Items, s.History

	if !m.items.IsEmpty() {
		return ErrNotEmpty
	}

	byID := make(map[int64]model.Item, len(items))
	for _, item := range items {
		if item.ID < 1 {
			return fmt.Errorf("manager: restore: invalid id %d", item.ID)
		}
		if !item.Kind.IsValid() {
			return fmt.Errorf("manager: restore item %d: %w: %q", item.ID, model.ErrInvalidKind, item.Kind)
		}
		if !item.Status.IsValid() {
			return fmt.Errorf("manager: restore item %d: %w: %q", item.ID, model.ErrInvalidStatus, item.Status)
		}
		if item.Duration < 0 {
			return fmt.Errorf("manager: restore item %d: %w", item.ID, model.ErrInvalidDuration)
		}
		if _, dup := byID[item.ID]; dup {
			return fmt.Errorf("manager: restore: duplicate id %d", item.ID)
		}
		byID[item.ID] = item
	}
	for _, item := range items {
		if item.Kind != model.KindSubtask {
			continue
		}
		if epic, ok := byID[item.EpicID]; !ok || epic.Kind != model.KindEpic {
			return fmt.Errorf("manager: restore subtask %d: %w: %d", item.ID, ErrEpicNotFound, item.EpicID)
		}
	}
	for _, id := range historyIDs {
		if _, ok := byID[id]; !ok {
			return fmt.Errorf("manager: restore history: %w: %d", ErrNotFound, id)
		}
	}

	ordered := slices.Clone(items)
	sortByID(ordered)
	for _, item := range ordered {
		if item.Kind == model.KindEpic {
			m.subtasks.Put(item.ID, []int64{})
		}
	}
	for _, item := range ordered {
		m.items.Put(item.ID, item)
		m.ids.Advance(item.ID)
		switch item.Kind {
		case model.KindTask:
			m.timeline.Upsert(item)
		case model.KindSubtask:
			m.timeline.Upsert(item)
			list, _ := m.subtasks.Get(item.EpicID)
			m.subtasks.Put(item.EpicID, append(list, item.ID))
		}
	}
	for _, item := range ordered {
		if item.Kind == model.KindEpic {
			m.refreshEpic(item.ID)
		}
	}

	if s.NextID > 0 {
		m.ids.Advance(s.NextID - 1)
	}
	for i := len(historyIDs) - 1; i >= 0; i-- {
		item, _ := m.items.Get(historyIDs[i])
		m.history.Touch(item)
	}
	return nil
}
