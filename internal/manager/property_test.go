package manager

import (
	"slices"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/baiirun/tracker/internal/model"
)

var statuses = []model.Status{model.StatusNew, model.StatusInProgress, model.StatusDone}

func drawTime(rt *rapid.T, label string) time.Time {
	if rapid.IntRange(0, 4).Draw(rt, label+"-untimed") == 0 {
		return time.Time{}
	}
	return hoursFromBase(rapid.IntRange(0, 48).Draw(rt, label))
}

func drawDuration(rt *rapid.T, label string) time.Duration {
	return time.Duration(rapid.IntRange(0, 12).Draw(rt, label)) * 30 * time.Minute
}

// pickID returns one of the live ids, or an id that was never issued.
func pickID(rt *rapid.T, m *Manager, label string) int64 {
	all := m.GetAll()
	if len(all) == 0 || rapid.IntRange(0, 9).Draw(rt, label+"-miss") == 0 {
		return 10_000
	}
	return all[rapid.IntRange(0, len(all)-1).Draw(rt, label)].ID
}

func pickEpic(rt *rapid.T, m *Manager, label string) int64 {
	epics := m.ListKind(model.KindEpic)
	if len(epics) == 0 || rapid.IntRange(0, 9).Draw(rt, label+"-miss") == 0 {
		return 10_000
	}
	return epics[rapid.IntRange(0, len(epics)-1).Draw(rt, label)].ID
}

// TestManagerInvariants runs random operation sequences and checks the
// epic aggregates and the timeline against a direct recomputation after
// every step.
func TestManagerInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := New()
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 6).Draw(rt, "op") {
			case 0:
				_, _ = m.AddTask(model.Draft{Name: "t", StartTime: drawTime(rt, "start"), Duration: drawDuration(rt, "dur")})
			case 1:
				_, _ = m.AddEpic(model.Draft{Name: "e"})
			case 2:
				before := m.Len()
				_, err := m.AddSubtask(model.Draft{
					Name: "s", EpicID: pickEpic(rt, m, "epic"),
					StartTime: drawTime(rt, "start"), Duration: drawDuration(rt, "dur"),
				})
				if err != nil && m.Len() != before {
					rt.Fatalf("rejected subtask changed the store")
				}
			case 3:
				st := rapid.SampledFrom(statuses).Draw(rt, "status")
				start := drawTime(rt, "start")
				_, _ = m.Update(model.Patch{ID: pickID(rt, m, "update"), Status: &st, StartTime: &start})
			case 4:
				_, _ = m.Delete(pickID(rt, m, "delete"))
			case 5:
				_, _ = m.Get(pickID(rt, m, "get"))
			case 6:
				d := drawDuration(rt, "dur")
				_, _ = m.Update(model.Patch{ID: pickID(rt, m, "update"), Duration: &d})
			}
			checkInvariants(rt, m)
		}
	})
}

func checkInvariants(rt *rapid.T, m *Manager) {
	all := m.GetAll()
	byEpic := make(map[int64][]model.Item)
	var timed []int64
	for _, it := range all {
		if it.Kind == model.KindSubtask {
			byEpic[it.EpicID] = append(byEpic[it.EpicID], it)
		}
		if it.Kind != model.KindEpic && it.HasTime() {
			timed = append(timed, it.ID)
		}
	}

	for _, epic := range all {
		if epic.Kind != model.KindEpic {
			continue
		}
		subs := byEpic[epic.ID]
		delete(byEpic, epic.ID)

		var fresh, done int
		start, end := time.Time{}, time.Time{}
		for _, s := range subs {
			switch s.Status {
			case model.StatusNew:
				fresh++
			case model.StatusDone:
				done++
			}
			if s.HasTime() {
				if start.IsZero() || s.StartTime.Before(start) {
					start = s.StartTime
				}
				if s.EndTime().After(end) {
					end = s.EndTime()
				}
			}
		}

		want := model.StatusInProgress
		if fresh == len(subs) {
			want = model.StatusNew
		} else if done == len(subs) {
			want = model.StatusDone
		}
		if epic.Status != want {
			rt.Fatalf("epic %d status = %s, want %s", epic.ID, epic.Status, want)
		}
		if epic.TimeDefined != (len(subs) > 0) {
			rt.Fatalf("epic %d TimeDefined = %v with %d subtasks", epic.ID, epic.TimeDefined, len(subs))
		}
		if !epic.StartTime.Equal(start) || (!start.IsZero() && !epic.EndTime().Equal(end)) {
			rt.Fatalf("epic %d window = [%v, %v], want [%v, %v]", epic.ID, epic.StartTime, epic.EndTime(), start, end)
		}

		got := ids(m.SubtasksOf(epic.ID))
		slices.Sort(got)
		if want := ids(subs); !slices.Equal(got, want) {
			rt.Fatalf("epic %d subtask list = %v, want %v", epic.ID, got, want)
		}
	}
	if len(byEpic) != 0 {
		rt.Fatalf("subtasks without a live epic: %v", byEpic)
	}

	prio := m.Prioritized()
	got := ids(prio)
	slices.Sort(got)
	if !slices.Equal(got, timed) {
		rt.Fatalf("prioritized ids = %v, want %v", got, timed)
	}
	for i := 1; i < len(prio); i++ {
		if prio[i].StartTime.Before(prio[i-1].StartTime) {
			rt.Fatalf("prioritized out of order at %d", i)
		}
	}

	seen := make(map[int64]bool)
	for _, it := range m.History() {
		if seen[it.ID] {
			rt.Fatalf("history lists %d twice", it.ID)
		}
		seen[it.ID] = true
	}
}
