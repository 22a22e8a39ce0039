// Package tasks derives the effective state of a task at a given instant
// and builds the display order of a task list.
//
// Nothing in this package reads a clock: every function takes "now"
// explicitly and is safe to call from any goroutine.
package tasks

import (
	"math"
	"time"

	"github.com/fentz26/recur/internal/models"
	"github.com/fentz26/recur/internal/optional"
)

// DefaultCooldownSeconds replaces stored cooldowns of one second or less.
const DefaultCooldownSeconds = 86400

// maxDuration stands in for the pending time of a task that was never
// completed. It also caps cooldowns too long to express as a Duration.
const maxDuration = time.Duration(math.MaxInt64)

// maxCooldownSeconds is the longest cooldown that converts to a Duration
// without wrapping.
const maxCooldownSeconds = int64(maxDuration / time.Second)

var unixEpoch = time.Unix(0, 0)

// NeverCompleted reports whether t is the "never completed" sentinel: the
// zero time or the Unix epoch.
func NeverCompleted(t time.Time) bool {
	return t.IsZero() || t.Equal(unixEpoch)
}

// EffectiveCooldown returns the cooldown applied to a recurring task.
// Cooldowns longer than about 292 years saturate at the largest Duration.
func EffectiveCooldown(task models.Task) time.Duration {
	secs := task.CooldownSeconds
	if secs <= 1 {
		secs = DefaultCooldownSeconds
	}
	if secs > maxCooldownSeconds {
		return maxDuration
	}
	return time.Duration(secs) * time.Second
}

// DueAt returns the instant the task's cooldown window ends. It is false for
// one-shot tasks and for recurring tasks that were never completed.
func DueAt(task models.Task) (time.Time, bool) {
	if !task.RepeatEnabled || NeverCompleted(task.LastCompleted) {
		return time.Time{}, false
	}
	return task.LastCompleted.Add(EffectiveCooldown(task)), true
}

// IsCompleted reports whether the task counts as done at now. A recurring
// task is done from its last completion until the cooldown elapses; the
// boundary instant itself is not done.
func IsCompleted(task models.Task, now time.Time) bool {
	if !task.RepeatEnabled {
		return task.Completed
	}
	due, ok := DueAt(task)
	if !ok {
		return false
	}
	return now.Before(due)
}

// PendingDuration returns how long a recurring task has been due. It is
// absent for one-shot tasks and for tasks still inside their cooldown.
func PendingDuration(task models.Task, now time.Time) optional.Value[time.Duration] {
	if !task.RepeatEnabled || IsCompleted(task, now) {
		return optional.None[time.Duration]()
	}
	due, ok := DueAt(task)
	if !ok {
		return optional.Of(maxDuration)
	}
	return optional.Of(now.Sub(due))
}

// TimeUntilDue returns the cooldown left on a recurring task. It is absent
// for one-shot tasks and for tasks that are already due.
func TimeUntilDue(task models.Task, now time.Time) optional.Value[time.Duration] {
	if !task.RepeatEnabled || !IsCompleted(task, now) {
		return optional.None[time.Duration]()
	}
	due, _ := DueAt(task)
	return optional.Of(due.Sub(now))
}

// Derived is the effective state of a task at one instant.
type Derived struct {
	Completed bool
	Pending   optional.Value[time.Duration]
	UntilDue  optional.Value[time.Duration]
}

// Derive computes all derived values of task at now.
func Derive(task models.Task, now time.Time) Derived {
	return Derived{
		Completed: IsCompleted(task, now),
		Pending:   PendingDuration(task, now),
		UntilDue:  TimeUntilDue(task, now),
	}
}

// MarkDone returns a copy of task marked done or not done at now. One-shot
// tasks flip their Completed flag; recurring tasks restart their cooldown
// from now, or forget their last completion when marked not done. Callers
// that remember the completion a done replaced restore it themselves.
func MarkDone(task models.Task, done bool, now time.Time) models.Task {
	if !task.RepeatEnabled {
		task.Completed = done
		return task
	}
	if done {
		task.LastCompleted = now
	} else {
		task.LastCompleted = time.Time{}
	}
	return task
}
