package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/recur/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func int64Ptr(n int64) *int64 { return &n }

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	// Create
	task, err := s.Create(ctx, models.TaskFields{
		Description:     strPtr("Water plants"),
		RepeatEnabled:   boolPtr(true),
		CooldownSeconds: int64Ptr(7200),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.ID == "" {
		t.Error("Task ID should not be empty")
	}
	if task.Created.IsZero() {
		t.Error("Created should be set")
	}
	if !task.LastCompleted.IsZero() {
		t.Errorf("New task should never have been completed, got %v", task.LastCompleted)
	}

	// Get
	got, err := s.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Description != "Water plants" || !got.RepeatEnabled || got.CooldownSeconds != 7200 {
		t.Errorf("Unexpected task: %+v", got)
	}
	if !got.Created.Equal(task.Created) {
		t.Errorf("Created did not round-trip: %v != %v", got.Created, task.Created)
	}

	// Update
	last := time.Date(2024, 2, 29, 23, 59, 59, 123456789, time.FixedZone("CET", 3600))
	got.LastCompleted = last
	got.Description = "Water all plants"
	if err := s.Update(ctx, *got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	updated, _ := s.Get(ctx, task.ID)
	if !updated.LastCompleted.Equal(last) {
		t.Errorf("LastCompleted did not round-trip: %v != %v", updated.LastCompleted, last)
	}
	if updated.Description != "Water all plants" {
		t.Errorf("Expected updated description, got %s", updated.Description)
	}

	// List
	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("Expected 1 task, got %d", len(tasks))
	}

	// Delete
	if err := s.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound after delete, got %v", err)
	}
}

func TestCreate_RequiresDescription(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	for _, fields := range []models.TaskFields{{}, {Description: strPtr("   ")}} {
		if _, err := s.Create(context.Background(), fields); !errors.Is(err, ErrEmptyDescription) {
			t.Errorf("Expected ErrEmptyDescription, got %v", err)
		}
	}
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	if err := s.Update(ctx, models.Task{ID: "missing", Description: "x"}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Update: expected ErrTaskNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Delete: expected ErrTaskNotFound, got %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	var created []string
	for _, d := range []string{"first", "second", "third"} {
		task, err := s.Create(ctx, models.TaskFields{Description: strPtr(d)})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		created = append(created, task.ID)
		time.Sleep(2 * time.Millisecond)
	}

	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}
	for i, task := range tasks {
		if want := created[len(created)-1-i]; task.ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, task.ID)
		}
	}
}

func TestTimestampEncoding(t *testing.T) {
	cases := []time.Time{
		{},
		time.Unix(0, 0),
		time.Date(2023, 12, 31, 23, 59, 59, 1, time.UTC),
		time.Date(2024, 6, 1, 8, 30, 0, 500000000, time.FixedZone("PDT", -7*3600)),
	}
	for _, want := range cases {
		got, err := parseTime(formatTime(want))
		if err != nil {
			t.Fatalf("parseTime(%v) failed: %v", want, err)
		}
		if !got.Equal(want) || got.IsZero() != want.IsZero() {
			t.Errorf("Round trip mismatch: %v != %v", got, want)
		}
	}
	if formatTime(time.Time{}) != "" {
		t.Error("Zero time should encode as the empty string")
	}
	if _, err := parseTime("yesterday"); err == nil {
		t.Error("Expected error for malformed timestamp")
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	events, cancel := s.Subscribe()
	defer cancel()

	task, err := s.Create(ctx, models.TaskFields{Description: strPtr("Stretch")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	task.Completed = true
	if err := s.Update(ctx, *task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := s.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	want := []models.ChangeAction{models.ChangeCreate, models.ChangeUpdate, models.ChangeDelete}
	for _, action := range want {
		select {
		case ev := <-events:
			if ev.Action != action {
				t.Errorf("Expected %s event, got %s", action, ev.Action)
			}
			if ev.Task.ID != task.ID {
				t.Errorf("Expected event for %s, got %s", task.ID, ev.Task.ID)
			}
			if action == models.ChangeUpdate && !ev.Task.Completed {
				t.Error("Update event should carry the new state")
			}
		case <-time.After(time.Second):
			t.Fatalf("Timed out waiting for %s event", action)
		}
	}

	cancel()
	if _, ok := <-events; ok {
		t.Error("Channel should be closed after cancel")
	}
}

func TestAudit(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	if _, err := s.WriteAudit("task.create", "abc", "success", "t1", ""); err != nil {
		t.Fatalf("WriteAudit failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := s.WriteAudit("task.delete", "def", "error", "t1", "boom"); err != nil {
		t.Fatalf("WriteAudit failed: %v", err)
	}

	entries, err := s.ListAudit(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListAudit failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != "task.delete" || entries[0].Details != "boom" {
		t.Errorf("Expected newest entry first, got %+v", entries[0])
	}
}
