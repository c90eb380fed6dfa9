package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msg and then runs any returned command to completion,
// feeding its message back in, the way the Bubble Tea runtime would.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for cmd != nil {
		out := cmd()
		if _, quit := out.(tea.QuitMsg); quit || out == nil {
			break
		}
		next, cmd = m.Update(out)
		m = next.(Model)
	}
	return m
}

func setup(t *testing.T) (*manager.Manager, Model) {
	t.Helper()
	mgr := manager.New()
	if _, err := mgr.AddTask(model.Draft{Name: "Write report"}); err != nil {
		t.Fatal(err)
	}
	epic, err := mgr.AddEpic(model.Draft{Name: "Release"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.AddSubtask(model.Draft{Name: "Tag build", EpicID: epic.ID}); err != nil {
		t.Fatal(err)
	}

	m := New(mgr)
	m = send(t, m, m.Init()())
	return mgr, m
}

func TestLoadAndNavigate(t *testing.T) {
	_, m := setup(t)

	if len(m.filtered) != 3 {
		t.Fatalf("expected 3 items, got %d", len(m.filtered))
	}
	m = send(t, m, key("j"))
	m = send(t, m, key("j"))
	m = send(t, m, key("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	m = send(t, m, key("k"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestKindFilter(t *testing.T) {
	_, m := setup(t)

	m = send(t, m, key("tab"))
	if len(m.filtered) != 1 || m.filtered[0].Kind != model.KindTask {
		t.Errorf("task filter = %+v", m.filtered)
	}
	m = send(t, m, key("tab"))
	m = send(t, m, key("tab"))
	if len(m.filtered) != 1 || m.filtered[0].Kind != model.KindSubtask {
		t.Errorf("subtask filter = %+v", m.filtered)
	}
	m = send(t, m, key("tab"))
	if len(m.filtered) != 3 {
		t.Errorf("expected all items after full cycle, got %d", len(m.filtered))
	}
}

func TestSearch(t *testing.T) {
	_, m := setup(t)

	m = send(t, m, key("/"))
	for _, r := range "tag" {
		m = send(t, m, key(string(r)))
	}
	if len(m.filtered) != 1 || m.filtered[0].Name != "Tag build" {
		t.Errorf("search results = %+v", m.filtered)
	}
	m = send(t, m, key("esc"))
	if len(m.filtered) != 3 || m.inputMode != InputNone {
		t.Errorf("esc should clear the search, got %d items", len(m.filtered))
	}
}

func TestOpenRecordsHistory(t *testing.T) {
	mgr, m := setup(t)

	m = send(t, m, key("enter"))
	if m.viewMode != ViewDetail || m.detail.Name != "Write report" {
		t.Fatalf("expected detail of first item, got %+v", m.detail)
	}
	if !strings.Contains(m.View(), "Write report") {
		t.Error("detail view missing item name")
	}
	if h := mgr.History(); len(h) != 1 || h[0].ID != 1 {
		t.Errorf("History() = %+v", h)
	}

	m = send(t, m, key("esc"))
	if m.viewMode != ViewList {
		t.Error("esc should return to the list")
	}
}

func TestCycleStatusUpdatesEpic(t *testing.T) {
	mgr, m := setup(t)

	// Select the subtask and mark it done.
	m = send(t, m, key("j"))
	m = send(t, m, key("j"))
	m = send(t, m, key("s"))
	m = send(t, m, key("s"))

	sub, _ := mgr.Get(3)
	if sub.Status != model.StatusDone {
		t.Errorf("subtask status = %s, want DONE", sub.Status)
	}
	epic, _ := mgr.Get(2)
	if epic.Status != model.StatusDone {
		t.Errorf("epic status = %s, want DONE", epic.Status)
	}

	m = send(t, m, key("k"))
	m = send(t, m, key("s"))
	if m.err == nil {
		t.Error("expected error when cycling an epic's status")
	}
}

func TestCreateAndDelete(t *testing.T) {
	mgr, m := setup(t)

	m = send(t, m, key("n"))
	for _, r := range "Plan" {
		m = send(t, m, key(string(r)))
	}
	m = send(t, m, key("enter"))
	if mgr.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", mgr.Len())
	}
	if !strings.Contains(m.message, "Created task 4") {
		t.Errorf("message = %q", m.message)
	}

	// Deleting the epic takes its subtask with it.
	m = send(t, m, key("j"))
	m = send(t, m, key("x"))
	if mgr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", mgr.Len())
	}
	if len(m.filtered) != 2 {
		t.Errorf("list not refreshed: %d items", len(m.filtered))
	}
}

func TestQuit(t *testing.T) {
	_, m := setup(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
