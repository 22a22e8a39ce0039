// Package board holds the live task collection and its sorted view.
//
// A Board is the orchestration layer around the pure task semantics: it
// folds storage results and change events into an in-memory collection,
// re-derives the sorted view whenever the collection or the current time
// changes, and forwards user intents to storage.
package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/fentz26/recur/internal/audit"
	"github.com/fentz26/recur/internal/models"
	"github.com/fentz26/recur/internal/tasks"
)

// ErrTaskNotFound indicates the board holds no task with the requested ID.
var ErrTaskNotFound = errors.New("task not found")

// Storage is the persistence collaborator.
type Storage interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, fields models.TaskFields) (*models.Task, error)
	Update(ctx context.Context, task models.Task) error
	Delete(ctx context.Context, id string) error
}

// Recorder writes audit entries for user intents.
type Recorder interface {
	Record(action string, inputs interface{}, outcome, taskID, details string) (*models.AuditEntry, error)
}

// Entry is a task together with its derived state at the board's time.
type Entry struct {
	Task  models.Task
	State tasks.Derived
}

// Board is safe for concurrent use.
type Board struct {
	storage  Storage
	recorder Recorder
	order    tasks.Ordering

	mu    sync.RWMutex
	tasks map[string]models.Task
	now   time.Time
	view  []Entry
	// undo holds, per recurring task, the completion its latest done replaced.
	undo map[string]replacedCompletion
}

type replacedCompletion struct {
	previous time.Time
	doneAt   time.Time
}

// New creates an empty board. recorder may be nil.
func New(storage Storage, recorder Recorder, order tasks.Ordering) *Board {
	if order == nil {
		order = tasks.RecurringOrder
	}
	return &Board{
		storage:  storage,
		recorder: recorder,
		order:    order,
		tasks:    make(map[string]models.Task),
		undo:     make(map[string]replacedCompletion),
	}
}

// Load replaces the collection with the current contents of storage.
func (b *Board) Load(ctx context.Context) error {
	list, err := b.storage.List(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = make(map[string]models.Task, len(list))
	for _, t := range list {
		b.tasks[t.ID] = t
	}
	b.rederive()
	return nil
}

// Apply folds a pushed change event into the collection.
func (b *Board) Apply(ev models.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch ev.Action {
	case models.ChangeCreate, models.ChangeUpdate:
		b.tasks[ev.Task.ID] = ev.Task
	case models.ChangeDelete:
		delete(b.tasks, ev.Task.ID)
	default:
		log.Printf("Ignoring change event with unknown action %q", ev.Action)
		return
	}
	b.rederive()
}

// SetNow records the latest clock value and re-derives the view.
func (b *Board) SetNow(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	b.rederive()
}

// Now returns the time the current view was derived at.
func (b *Board) Now() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.now
}

// View returns the sorted entries at the board's time.
func (b *Board) View() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.view)
}

// Get returns one entry.
func (b *Board) Get(id string) (Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tasks[id]
	if !ok {
		return Entry{}, ErrTaskNotFound
	}
	return Entry{Task: t, State: tasks.Derive(t, b.now)}, nil
}

// rederive rebuilds the sorted view. Callers hold b.mu.
func (b *Board) rederive() {
	list := make([]models.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		list = append(list, t)
	}
	sorted := tasks.Sort(list, b.order(b.now))

	view := make([]Entry, len(sorted))
	for i, t := range sorted {
		view[i] = Entry{Task: t, State: tasks.Derive(t, b.now)}
	}
	b.view = view
}

// --- Intents ---

// Create creates a task in storage and adds it to the board.
func (b *Board) Create(ctx context.Context, fields models.TaskFields) (*models.Task, error) {
	task, err := b.storage.Create(ctx, fields)
	if err != nil {
		b.record(audit.ActionCreate, fields, audit.OutcomeError, "", err.Error())
		return nil, err
	}

	b.mu.Lock()
	b.tasks[task.ID] = *task
	b.rederive()
	b.mu.Unlock()

	b.record(audit.ActionCreate, fields, audit.OutcomeSuccess, task.ID, "")
	return task, nil
}

// Edit applies fields to a task.
func (b *Board) Edit(ctx context.Context, id string, fields models.TaskFields) (*models.Task, error) {
	return b.modify(ctx, audit.ActionEdit, id, fields, func(t models.Task) models.Task {
		return fields.ApplyTo(t)
	})
}

// SetDone marks a task done or not done at the given instant. Recurring
// tasks restart their cooldown from at. Undoing a recurring task right after
// a done restores the completion that done replaced.
func (b *Board) SetDone(ctx context.Context, id string, done bool, at time.Time) (*models.Task, error) {
	action := audit.ActionDone
	if !done {
		action = audit.ActionUndo
	}
	inputs := map[string]interface{}{"done": done, "at": at}

	var before models.Task
	updated, err := b.modify(ctx, action, id, inputs, func(t models.Task) models.Task {
		before = t
		next := tasks.MarkDone(t, done, at)
		if r, ok := b.undo[id]; ok && !done && t.RepeatEnabled && t.LastCompleted.Equal(r.doneAt) {
			next.LastCompleted = r.previous
		}
		return next
	})
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if done && before.RepeatEnabled {
		b.undo[id] = replacedCompletion{previous: before.LastCompleted, doneAt: updated.LastCompleted}
	} else {
		delete(b.undo, id)
	}
	b.mu.Unlock()
	return updated, nil
}

// modify updates the board first and then storage, restoring the previous
// task if storage rejects the change.
func (b *Board) modify(ctx context.Context, action, id string, inputs interface{}, change func(models.Task) models.Task) (*models.Task, error) {
	b.mu.Lock()
	old, ok := b.tasks[id]
	if !ok {
		b.mu.Unlock()
		b.record(action, inputs, audit.OutcomeError, id, ErrTaskNotFound.Error())
		return nil, ErrTaskNotFound
	}
	updated := change(old)
	b.tasks[id] = updated
	b.rederive()
	b.mu.Unlock()

	if err := b.storage.Update(ctx, updated); err != nil {
		b.mu.Lock()
		if cur, ok := b.tasks[id]; ok && cur == updated {
			b.tasks[id] = old
			b.rederive()
		}
		b.mu.Unlock()
		b.record(action, inputs, audit.OutcomeError, id, err.Error())
		return nil, fmt.Errorf("update task: %w", err)
	}

	b.record(action, inputs, audit.OutcomeSuccess, id, "")
	return &updated, nil
}

// Delete removes a task from storage and the board.
func (b *Board) Delete(ctx context.Context, id string) error {
	b.mu.RLock()
	_, ok := b.tasks[id]
	b.mu.RUnlock()
	if !ok {
		b.record(audit.ActionDelete, id, audit.OutcomeError, id, ErrTaskNotFound.Error())
		return ErrTaskNotFound
	}

	if err := b.storage.Delete(ctx, id); err != nil {
		b.record(audit.ActionDelete, id, audit.OutcomeError, id, err.Error())
		return fmt.Errorf("delete task: %w", err)
	}

	b.mu.Lock()
	delete(b.tasks, id)
	delete(b.undo, id)
	b.rederive()
	b.mu.Unlock()

	b.record(audit.ActionDelete, id, audit.OutcomeSuccess, id, "")
	return nil
}

func (b *Board) record(action string, inputs interface{}, outcome, taskID, details string) {
	if b.recorder == nil {
		return
	}
	if _, err := b.recorder.Record(action, inputs, outcome, taskID, details); err != nil {
		log.Printf("Failed to record %s for task %s: %v", action, taskID, err)
	}
}
