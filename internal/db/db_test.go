package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baiirun/tracker/internal/manager"
	"github.com/baiirun/tracker/internal/model"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := db.Init(); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Should create parent directories
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("failed to get default path: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %q", path)
	}

	if !strings.HasSuffix(path, filepath.Join(".tracker", "tracker.db")) {
		t.Errorf("expected path to end in .tracker/tracker.db, got %q", path)
	}
}

func TestInit_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Init(); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
}

func TestLoad_Empty(t *testing.T) {
	db := setupTestDB(t)

	s, err := db.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(s.Items) != 0 || len(s.History) != 0 || s.NextID != 0 {
		t.Errorf("expected empty snapshot, got %+v", s)
	}
}

func TestSaveLoad(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	want := manager.Snapshot{
		Items: []model.Item{
			{ID: 1, Kind: model.KindTask, Name: "Write report", Description: "q1, q2", Status: model.StatusInProgress, StartTime: start, Duration: 90 * time.Minute},
			{ID: 2, Kind: model.KindEpic, Name: "Release", Status: model.StatusNew},
			{ID: 4, Kind: model.KindSubtask, Name: "Tag", Status: model.StatusDone, EpicID: 2},
		},
		History: []int64{4, 1},
		NextID:  6,
	}
	if err := db.Save(want); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if len(got.Items) != len(want.Items) {
		t.Fatalf("loaded %d items, want %d", len(got.Items), len(want.Items))
	}
	for i, w := range want.Items {
		g := got.Items[i]
		if g.ID != w.ID || g.Kind != w.Kind || g.Name != w.Name || g.Description != w.Description ||
			g.Status != w.Status || g.Duration != w.Duration || g.EpicID != w.EpicID {
			t.Errorf("item %d = %+v, want %+v", i, g, w)
		}
		if !g.StartTime.Equal(w.StartTime) {
			t.Errorf("item %d start = %v, want %v", w.ID, g.StartTime, w.StartTime)
		}
	}
	if len(got.History) != 2 || got.History[0] != 4 || got.History[1] != 1 {
		t.Errorf("history = %v, want [4 1]", got.History)
	}
	if got.NextID != 6 {
		t.Errorf("next id = %d, want 6", got.NextID)
	}
}

func TestSave_Replaces(t *testing.T) {
	db := setupTestDB(t)

	first := manager.Snapshot{
		Items:   []model.Item{{ID: 1, Kind: model.KindTask, Name: "old", Status: model.StatusNew}},
		History: []int64{1},
		NextID:  2,
	}
	if err := db.Save(first); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := db.Save(manager.Snapshot{NextID: 2}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	got, err := db.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(got.Items) != 0 || len(got.History) != 0 {
		t.Errorf("expected old snapshot to be replaced, got %+v", got)
	}
}

func TestSave_RejectsDanglingHistory(t *testing.T) {
	db := setupTestDB(t)

	bad := manager.Snapshot{
		Items:   []model.Item{{ID: 1, Kind: model.KindTask, Name: "t", Status: model.StatusNew}},
		History: []int64{9},
		NextID:  2,
	}
	if err := db.Save(bad); err == nil {
		t.Fatal("expected error for history entry without an item")
	}

	// The failed save rolls back entirely.
	got, err := db.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("expected no items after rollback, got %d", len(got.Items))
	}
}

func TestSaveLoad_ThroughManager(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	src := manager.New()
	epic, _ := src.AddEpic(model.Draft{Name: "Release"})
	sub, err := src.AddSubtask(model.Draft{Name: "Build", EpicID: epic.ID, StartTime: start, Duration: time.Hour})
	if err != nil {
		t.Fatalf("failed to add subtask: %v", err)
	}
	if _, err := src.Get(sub.ID); err != nil {
		t.Fatalf("failed to get: %v", err)
	}

	if err := db.Save(src.Snapshot()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	snap, err := db.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	dst := manager.New()
	if err := dst.Restore(snap); err != nil {
		t.Fatalf("failed to restore: %v", err)
	}
	got, err := dst.GetKind(epic.ID, model.KindEpic)
	if err != nil {
		t.Fatalf("failed to get epic: %v", err)
	}
	if !got.TimeDefined || !got.StartTime.Equal(start) || got.Duration != time.Hour {
		t.Errorf("restored epic = %+v", got)
	}
}
