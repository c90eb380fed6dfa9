// Package manager keeps tasks, epics and subtasks consistent with each
// other. It owns the item table, the epic -> subtask index, the start-time
// index and the read history, and updates all of them under one lock.
//
// Rejected input (unknown ids, an unknown epic on subtask creation,
// malformed drafts) is reported as an error and leaves state unchanged. A
// broken internal invariant, such as a subtask whose epic no longer exists,
// panics.
package manager

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/baiirun/tracker/internal/history"
	"github.com/baiirun/tracker/internal/idgen"
	"github.com/baiirun/tracker/internal/model"
	"github.com/baiirun/tracker/internal/priority"
	"github.com/baiirun/tracker/internal/store"
)

var (
	ErrNotFound     = errors.New("manager: item not found")
	ErrEpicNotFound = errors.New("manager: epic not found")
	ErrMissingID    = errors.New("manager: item id is required")
)

type Manager struct {
	mu       sync.Mutex
	ids      *idgen.Generator
	items    store.Store[int64, model.Item]
	subtasks store.Store[int64, []int64]
	timeline *priority.Index
	history  history.Tracker
}

type Option func(*Manager)

// WithHistory replaces the default deduplicating history tracker.
func WithHistory(t history.Tracker) Option {
	return func(m *Manager) {
		m.history = t
	}
}

// WithFirstID sets the first id the manager will assign.
func WithFirstID(id int64) Option {
	return func(m *Manager) {
		m.ids = idgen.New(id)
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{
		ids:      idgen.New(idgen.DefaultStart),
		items:    store.NewMap[int64, model.Item](),
		subtasks: store.NewMap[int64, []int64](),
		timeline: priority.New(),
		history:  history.NewRecency(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddTask creates a standalone task with status NEW.
func (m *Manager) AddTask(d model.Draft) (model.Item, error) {
	if err := d.Validate(); err != nil {
		return model.Item{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item := model.Item{
		ID:          m.ids.Next(),
		Kind:        model.KindTask,
		Name:        d.Name,
		Description: d.Description,
		Status:      model.StatusNew,
		StartTime:   d.StartTime,
		Duration:    d.Duration,
	}
	m.items.Put(item.ID, item)
	m.timeline.Upsert(item)
	return item, nil
}

// AddEpic creates an epic with no subtasks. Time fields on the draft are
// ignored; an epic's window comes from its subtasks.
func (m *Manager) AddEpic(d model.Draft) (model.Item, error) {
	d.StartTime, d.Duration = time.Time{}, 0
	if err := d.Validate(); err != nil {
		return model.Item{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item := model.Item{
		ID:          m.ids.Next(),
		Kind:        model.KindEpic,
		Name:        d.Name,
		Description: d.Description,
		Status:      model.StatusNew,
	}
	m.items.Put(item.ID, item)
	m.subtasks.Put(item.ID, []int64{})
	return item, nil
}

// AddSubtask creates a subtask under d.EpicID and widens the epic's window
// to cover it. It fails with ErrEpicNotFound if d.EpicID is not an epic.
func (m *Manager) AddSubtask(d model.Draft) (model.Item, error) {
	if err := d.Validate(); err != nil {
		return model.Item{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	epic, ok := m.items.Get(d.EpicID)
	if !ok || epic.Kind != model.KindEpic {
		return model.Item{}, fmt.Errorf("%w: %d", ErrEpicNotFound, d.EpicID)
	}

	sub := model.Item{
		ID:          m.ids.Next(),
		Kind:        model.KindSubtask,
		Name:        d.Name,
		Description: d.Description,
		Status:      model.StatusNew,
		StartTime:   d.StartTime,
		Duration:    d.Duration,
		EpicID:      epic.ID,
	}
	m.items.Put(sub.ID, sub)
	m.timeline.Upsert(sub)

	list, _ := m.subtasks.Get(epic.ID)
	m.subtasks.Put(epic.ID, append(list, sub.ID))

	epic = growWindow(epic, sub)
	epic.Status = statusAfterAdd(epic.Status)
	m.items.Put(epic.ID, epic)
	return sub, nil
}

// Get returns the item and records the read in the history.
func (m *Manager) Get(id int64) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items.Get(id)
	if !ok {
		return model.Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	m.history.Touch(item)
	return item, nil
}

// GetKind is Get restricted to one kind. An item of another kind is
// reported as not found and is not recorded in the history.
func (m *Manager) GetKind(id int64, kind model.Kind) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items.Get(id)
	if !ok || item.Kind != kind {
		return model.Item{}, fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
	}
	m.history.Touch(item)
	return item, nil
}

// Update applies the non-nil fields of p. Status and time fields are
// ignored for epics. Changing a subtask re-derives its epic.
func (m *Manager) Update(p model.Patch) (model.Item, error) {
	return m.update(p, "")
}

// UpdateKind is Update restricted to one kind; an item of another kind is
// reported as not found and left unchanged.
func (m *Manager) UpdateKind(p model.Patch, kind model.Kind) (model.Item, error) {
	return m.update(p, kind)
}

func (m *Manager) update(p model.Patch, kind model.Kind) (model.Item, error) {
	if p.ID == 0 {
		return model.Item{}, ErrMissingID
	}
	if err := p.Validate(); err != nil {
		return model.Item{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items.Get(p.ID)
	if !ok || (kind != "" && item.Kind != kind) {
		return model.Item{}, fmt.Errorf("%w: %d", ErrNotFound, p.ID)
	}

	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if item.Kind == model.KindEpic {
		m.items.Put(item.ID, item)
		return item, nil
	}

	changed := false
	if p.Status != nil && *p.Status != item.Status {
		item.Status = *p.Status
		changed = true
	}
	if p.StartTime != nil && !p.StartTime.Equal(item.StartTime) {
		item.StartTime = *p.StartTime
		changed = true
	}
	if p.Duration != nil && *p.Duration != item.Duration {
		item.Duration = *p.Duration
		changed = true
	}
	m.items.Put(item.ID, item)
	m.timeline.Upsert(item)

	if item.Kind == model.KindSubtask && changed {
		m.refreshEpic(item.EpicID)
	}
	return item, nil
}

// Delete removes the item. Deleting an epic deletes its subtasks; deleting
// a subtask re-derives its epic from the remaining subtasks.
func (m *Manager) Delete(id int64) (model.Item, error) {
	return m.delete(id, "")
}

// DeleteKind is Delete restricted to one kind.
func (m *Manager) DeleteKind(id int64, kind model.Kind) (model.Item, error) {
	return m.delete(id, kind)
}

func (m *Manager) delete(id int64, kind model.Kind) (model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items.Get(id)
	if !ok || (kind != "" && item.Kind != kind) {
		return model.Item{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	switch item.Kind {
	case model.KindTask:
		m.drop(id)
	case model.KindEpic:
		m.deleteEpic(id)
	case model.KindSubtask:
		m.detach(item)
		m.drop(id)
		m.refreshEpic(item.EpicID)
	}
	return item, nil
}

// Clear deletes every item of one kind, cascading like Delete.
func (m *Manager) Clear(kind model.Kind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidKind, kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range m.listKind(kind) {
		switch kind {
		case model.KindTask, model.KindSubtask:
			m.drop(item.ID)
		case model.KindEpic:
			m.deleteEpic(item.ID)
		}
	}
	if kind == model.KindSubtask {
		for _, epic := range m.listKind(model.KindEpic) {
			m.subtasks.Put(epic.ID, []int64{})
			epic.Status = model.StatusNew
			m.items.Put(epic.ID, applyWindow(epic, window{}))
		}
	}
	return nil
}

// GetAll returns every item in id order.
func (m *Manager) GetAll() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.items.Values()
	sortByID(items)
	return items
}

// ListKind returns every item of one kind in id order.
func (m *Manager) ListKind(kind model.Kind) []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listKind(kind)
}

// SubtasksOf returns the subtasks of an epic. The result is empty when id
// is unknown or not an epic.
func (m *Manager) SubtasksOf(epicID int64) []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epic, ok := m.items.Get(epicID); !ok || epic.Kind != model.KindEpic {
		return []model.Item{}
	}
	return m.subtasksOf(epicID)
}

// Prioritized returns timed tasks and subtasks by ascending start time.
func (m *Manager) Prioritized() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeline.Ascending()
}

// PrioritizedBetween returns the timed items starting in [from, to).
func (m *Manager) PrioritizedBetween(from, to time.Time) []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeline.Between(from, to)
}

// History returns the most recently read items, most recent first, with
// their current contents.
func (m *Manager) History() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	tracked := m.history.List()
	out := make([]model.Item, 0, len(tracked))
	for _, t := range tracked {
		item, ok := m.items.Get(t.ID)
		if !ok {
			panic(fmt.Sprintf("manager: history holds deleted item %d", t.ID))
		}
		out = append(out, item)
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Len()
}

// drop removes one item from the table and both indexes. It does not touch
// epic/subtask links.
func (m *Manager) drop(id int64) {
	m.items.Delete(id)
	m.timeline.Remove(id)
	m.history.Remove(id)
}

func (m *Manager) deleteEpic(id int64) {
	list, _ := m.subtasks.Delete(id)
	for _, subID := range list {
		m.drop(subID)
	}
	m.drop(id)
}

// detach removes sub from its epic's subtask list.
func (m *Manager) detach(sub model.Item) {
	list, ok := m.subtasks.Get(sub.EpicID)
	if !ok {
		panic(fmt.Sprintf("manager: subtask %d references missing epic %d", sub.ID, sub.EpicID))
	}
	i := slices.Index(list, sub.ID)
	if i < 0 {
		panic(fmt.Sprintf("manager: subtask %d missing from epic %d", sub.ID, sub.EpicID))
	}
	m.subtasks.Put(sub.EpicID, slices.Delete(list, i, i+1))
}

// refreshEpic recomputes the epic's window and status from all of its
// current subtasks.
func (m *Manager) refreshEpic(epicID int64) {
	epic, ok := m.items.Get(epicID)
	if !ok || epic.Kind != model.KindEpic {
		panic(fmt.Sprintf("manager: epic %d does not resolve to an epic", epicID))
	}
	subs := m.subtasksOf(epicID)
	epic = applyWindow(epic, deriveWindow(subs))
	epic.Status = deriveStatus(subs)
	m.items.Put(epicID, epic)
}

func (m *Manager) subtasksOf(epicID int64) []model.Item {
	list, _ := m.subtasks.Get(epicID)
	out := make([]model.Item, 0, len(list))
	for _, id := range list {
		sub, ok := m.items.Get(id)
		if !ok || sub.Kind != model.KindSubtask || sub.EpicID != epicID {
			panic(fmt.Sprintf("manager: epic %d lists %d which is not its subtask", epicID, id))
		}
		out = append(out, sub)
	}
	return out
}

func (m *Manager) listKind(kind model.Kind) []model.Item {
	var out []model.Item
	for _, item := range m.items.Values() {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	sortByID(out)
	if out == nil {
		out = []model.Item{}
	}
	return out
}

func sortByID(items []model.Item) {
	slices.SortFunc(items, func(a, b model.Item) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
