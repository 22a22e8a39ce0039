// Package models defines the core domain types for recur.
package models

import "time"

// Task is a one-shot or recurring item on the user's list.
type Task struct {
	ID          string `json:"id"`
	Description string `json:"description"`

	// Completed is the manual done flag of a one-shot task. It is ignored
	// while RepeatEnabled is set.
	Completed     bool `json:"completed"`
	RepeatEnabled bool `json:"repeat_enabled"`

	// CooldownSeconds of 0 or 1 means "use the default".
	CooldownSeconds int64 `json:"cooldown_seconds"`

	// LastCompleted is the zero time when the task was never completed.
	LastCompleted time.Time `json:"last_completed"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

// TaskFields is a partial task used for creation and edits. Nil fields are
// left unchanged (or defaulted on creation).
type TaskFields struct {
	Description     *string `json:"description,omitempty"`
	Completed       *bool   `json:"completed,omitempty"`
	RepeatEnabled   *bool   `json:"repeat_enabled,omitempty"`
	CooldownSeconds *int64  `json:"cooldown_seconds,omitempty"`
}

// ApplyTo returns a copy of t with the set fields overwritten.
func (f TaskFields) ApplyTo(t Task) Task {
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Completed != nil {
		t.Completed = *f.Completed
	}
	if f.RepeatEnabled != nil {
		t.RepeatEnabled = *f.RepeatEnabled
	}
	if f.CooldownSeconds != nil {
		t.CooldownSeconds = *f.CooldownSeconds
	}
	return t
}

// IsEmpty reports whether no field is set.
func (f TaskFields) IsEmpty() bool {
	return f.Description == nil && f.Completed == nil && f.RepeatEnabled == nil && f.CooldownSeconds == nil
}

// ChangeAction names the kind of change carried by a ChangeEvent.
type ChangeAction string

const (
	ChangeCreate ChangeAction = "create"
	ChangeUpdate ChangeAction = "update"
	ChangeDelete ChangeAction = "delete"
)

// ChangeEvent is a live notification that a stored task changed.
type ChangeEvent struct {
	Action ChangeAction `json:"action"`
	Task   Task         `json:"task"`
}

// AuditEntry records a user intent for the audit trail.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	TaskID     string    `json:"task_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
