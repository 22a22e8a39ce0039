// Package store provides SQLite-backed persistence for recur.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fentz26/recur/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// subscriberBuffer is the number of change events a slow subscriber may lag
// behind before events are dropped for it.
const subscriberBuffer = 64

var (
	// ErrTaskNotFound indicates no task has the requested ID.
	ErrTaskNotFound = errors.New("task not found")
	// ErrEmptyDescription indicates a task was created without a description.
	ErrEmptyDescription = errors.New("task description is required")
)

// Store provides access to the recur SQLite database.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	subs   map[int]chan models.ChangeEvent
	nextID int
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{
		db:   db,
		subs: make(map[int]chan models.ChangeEvent),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection and all subscriptions.
func (s *Store) Close() error {
	s.mu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		repeat_enabled INTEGER NOT NULL DEFAULT 0,
		cooldown_seconds INTEGER NOT NULL DEFAULT 0,
		last_completed TEXT NOT NULL DEFAULT '',
		created TEXT NOT NULL,
		updated TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS audit (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		task_id TEXT,
		details TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created);
	CREATE INDEX IF NOT EXISTS idx_audit_task_id ON audit(task_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// formatTime encodes t for storage. The zero time, meaning "never", is
// stored as the empty string.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// parseTime decodes a stored timestamp. The empty string decodes to the zero
// time.
func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}

const taskColumns = `id, description, completed, repeat_enabled, cooldown_seconds, last_completed, created, updated`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var lastCompleted, created, updated string
	if err := row.Scan(&task.ID, &task.Description, &task.Completed, &task.RepeatEnabled,
		&task.CooldownSeconds, &lastCompleted, &created, &updated); err != nil {
		return nil, err
	}

	var err error
	if task.LastCompleted, err = parseTime(lastCompleted); err != nil {
		return nil, err
	}
	if task.Created, err = parseTime(created); err != nil {
		return nil, err
	}
	if task.Updated, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &task, nil
}

// --- Task Operations ---

// List returns all tasks, newest first.
func (s *Store) List(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// Get retrieves a task by ID.
func (s *Store) Get(ctx context.Context, id string) (*models.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// Create inserts a new task built from fields. Unset fields take their zero
// value; a recurring task created this way has never been completed.
func (s *Store) Create(ctx context.Context, fields models.TaskFields) (*models.Task, error) {
	if fields.Description == nil || strings.TrimSpace(*fields.Description) == "" {
		return nil, ErrEmptyDescription
	}

	now := time.Now().UTC()
	task := fields.ApplyTo(models.Task{
		ID:      uuid.New().String(),
		Created: now,
		Updated: now,
	})

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Description, task.Completed, task.RepeatEnabled, task.CooldownSeconds,
		formatTime(task.LastCompleted), formatTime(task.Created), formatTime(task.Updated),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	s.publish(models.ChangeEvent{Action: models.ChangeCreate, Task: task})
	return &task, nil
}

// Update overwrites a stored task with task. ID and Created are immutable.
func (s *Store) Update(ctx context.Context, task models.Task) error {
	task.Updated = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE tasks SET description = ?, completed = ?, repeat_enabled = ?, cooldown_seconds = ?, last_completed = ?, updated = ? WHERE id = ?`,
		task.Description, task.Completed, task.RepeatEnabled, task.CooldownSeconds,
		formatTime(task.LastCompleted), formatTime(task.Updated), task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	// Re-read so the event carries the stored Created value.
	stored, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, task.ID))
	if err != nil {
		return fmt.Errorf("query task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.publish(models.ChangeEvent{Action: models.ChangeUpdate, Task: *stored})
	return nil
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	task, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("query task: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.publish(models.ChangeEvent{Action: models.ChangeDelete, Task: *task})
	return nil
}

// --- Change Notifications ---

// Subscribe returns a channel receiving every change made through this
// Store, and a function that ends the subscription. Events are dropped for a
// subscriber that falls too far behind, so subscribers should also reload
// periodically.
func (s *Store) Subscribe() (<-chan models.ChangeEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan models.ChangeEvent, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
	return ch, cancel
}

func (s *Store) publish(ev models.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("Dropping %s event for task %s: subscriber %d is full", ev.Action, ev.Task.ID, id)
		}
	}
}

// --- Audit Operations ---

// WriteAudit writes an audit entry.
func (s *Store) WriteAudit(action, inputsHash, outcome, taskID, details string) (*models.AuditEntry, error) {
	entry := &models.AuditEntry{
		ID:         uuid.New().String(),
		Action:     action,
		InputsHash: inputsHash,
		Outcome:    outcome,
		TaskID:     taskID,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO audit (id, action, inputs_hash, outcome, task_id, details, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action, entry.InputsHash, entry.Outcome, entry.TaskID, entry.Details, formatTime(entry.Timestamp),
	)
	if err != nil {
		return nil, fmt.Errorf("insert audit: %w", err)
	}
	return entry, nil
}

// ListAudit returns the most recent audit entries, newest first.
func (s *Store) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, inputs_hash, outcome, task_id, details, timestamp FROM audit ORDER BY timestamp DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var taskID, details sql.NullString
		var ts string
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.InputsHash, &entry.Outcome, &taskID, &details, &ts); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if taskID.Valid {
			entry.TaskID = taskID.String
		}
		if details.Valid {
			entry.Details = details.String
		}
		if entry.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
