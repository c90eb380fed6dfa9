package manager

import (
	"time"

	"github.com/baiirun/tracker/internal/model"
)

// deriveStatus computes an epic's status from all of its subtasks.
//
// Rules:
//   - No subtasks, or every subtask NEW: NEW.
//   - At least one subtask and every subtask DONE: DONE.
//   - Otherwise: IN_PROGRESS.
func deriveStatus(subtasks []model.Item) model.Status {
	var fresh, done int
	for _, sub := range subtasks {
		switch sub.Status {
		case model.StatusNew:
			fresh++
		case model.StatusDone:
			done++
		}
	}

	switch {
	case fresh == len(subtasks):
		return model.StatusNew
	case done == len(subtasks):
		return model.StatusDone
	default:
		return model.StatusInProgress
	}
}

// statusAfterAdd is deriveStatus after appending one NEW subtask, computed
// from the epic's current status alone: all-NEW stays NEW, a mix stays
// IN_PROGRESS, and all-DONE gains a NEW member so becomes IN_PROGRESS.
func statusAfterAdd(current model.Status) model.Status {
	if current == model.StatusDone {
		return model.StatusInProgress
	}
	return current
}

// window is an epic's derived time span. defined is true iff the epic has
// at least one subtask; start stays zero when none of them is timed.
type window struct {
	start    time.Time
	duration time.Duration
	defined  bool
}

// deriveWindow rescans every subtask: start is the earliest subtask start
// and start+duration the latest subtask end.
func deriveWindow(subtasks []model.Item) window {
	w := window{defined: len(subtasks) > 0}
	var end time.Time
	for _, sub := range subtasks {
		if !sub.HasTime() {
			continue
		}
		if w.start.IsZero() || sub.StartTime.Before(w.start) {
			w.start = sub.StartTime
		}
		if sub.EndTime().After(end) {
			end = sub.EndTime()
		}
	}
	if !w.start.IsZero() {
		w.duration = end.Sub(w.start)
	}
	return w
}

// growWindow widens the epic's window to also cover a newly added subtask.
// It never narrows the window, so it is only valid on the add path.
func growWindow(epic model.Item, sub model.Item) model.Item {
	epic.TimeDefined = true
	if !sub.HasTime() {
		return epic
	}
	if !epic.HasTime() {
		epic.StartTime = sub.StartTime
		epic.Duration = sub.Duration
		return epic
	}

	start, end := epic.StartTime, epic.EndTime()
	if sub.StartTime.Before(start) {
		start = sub.StartTime
	}
	if sub.EndTime().After(end) {
		end = sub.EndTime()
	}
	epic.StartTime = start
	epic.Duration = end.Sub(start)
	return epic
}

func applyWindow(epic model.Item, w window) model.Item {
	epic.StartTime = w.start
	epic.Duration = w.duration
	epic.TimeDefined = w.defined
	return epic
}
