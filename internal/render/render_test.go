package render

import (
	"strings"
	"testing"
	"time"

	"github.com/baiirun/tracker/internal/model"
)

func TestList_Empty(t *testing.T) {
	if got := List(nil); !strings.Contains(got, "No items.") {
		t.Errorf("List(nil) = %q", got)
	}
}

func TestList(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	items := []model.Item{
		{ID: 1, Kind: model.KindTask, Name: "Write report", Status: model.StatusNew, StartTime: start, Duration: time.Hour},
		{ID: 2, Kind: model.KindEpic, Name: "Release", Status: model.StatusDone},
	}

	got := List(items)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	for _, want := range []string{iconNew, "1", "TASK", "Write report", "2025-06-01 09:00 → 2025-06-01 10:00"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q missing %q", lines[0], want)
		}
	}
	if !strings.Contains(lines[1], iconDone) || strings.Contains(lines[1], "→") {
		t.Errorf("untimed epic line = %q", lines[1])
	}
}

func TestDetail(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	sub := model.Item{
		ID: 7, Kind: model.KindSubtask, Name: "Tag build", Description: "push the tag",
		Status: model.StatusInProgress, StartTime: start, Duration: 90 * time.Minute, EpicID: 3,
	}

	got := Detail(sub)
	for _, want := range []string{"Tag build", "ID:", "7", "SUBTASK", "IN_PROGRESS", "Epic:", "3", "2025-06-01 10:30", "push the tag"} {
		if !strings.Contains(got, want) {
			t.Errorf("Detail() missing %q:\n%s", want, got)
		}
	}

	epic := model.Item{ID: 3, Kind: model.KindEpic, Name: "Release", Status: model.StatusNew, TimeDefined: true}
	if got := Detail(epic); !strings.Contains(got, "no timed subtasks") || strings.Contains(got, "Epic:") {
		t.Errorf("Detail(epic) = %q", got)
	}
}

func TestWindowAndMinutes(t *testing.T) {
	if got := Window(model.Item{Duration: time.Hour}); got != "" {
		t.Errorf("Window(untimed) = %q, want empty", got)
	}
	if got := Minutes(150 * time.Minute); got != "150m" {
		t.Errorf("Minutes() = %q, want 150m", got)
	}
}

func TestLine(t *testing.T) {
	got := Line(model.Item{ID: 12, Kind: model.KindSubtask, Name: "Tag", Status: model.StatusInProgress})
	for _, want := range []string{iconInProgress, "12", "SUBTASK", "Tag"} {
		if !strings.Contains(got, want) {
			t.Errorf("Line() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "\n") {
		t.Errorf("Line() spans lines: %q", got)
	}
}
