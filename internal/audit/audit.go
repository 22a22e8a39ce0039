// Package audit keeps the trail of task changes shown by "recur log".
//
// Each change the board makes on a user's behalf is recorded with its
// outcome. The request itself is kept only as a fingerprint, so the log
// shows that a task was edited without copying its description around.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/recur/internal/models"
)

// Actions recorded by the board.
const (
	ActionCreate = "task.create"
	ActionEdit   = "task.edit"
	ActionDone   = "task.done"
	ActionUndo   = "task.undo"
	ActionDelete = "task.delete"
)

// Outcomes recorded with each entry.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// unhashable is the fingerprint of a request that cannot be JSON encoded.
const unhashable = "unhashable"

// Sink persists audit entries. The store implements it.
type Sink interface {
	WriteAudit(action, inputsHash, outcome, taskID, details string) (*models.AuditEntry, error)
}

// Writer turns task changes into audit entries.
type Writer struct {
	sink Sink
}

// NewWriter returns a Writer that appends to sink.
func NewWriter(sink Sink) *Writer {
	return &Writer{sink: sink}
}

// Record appends one task change. taskID is empty when a create fails
// before an ID was assigned; details carries the error text on failure.
func (w *Writer) Record(action string, request interface{}, outcome, taskID, details string) (*models.AuditEntry, error) {
	return w.sink.WriteAudit(action, Fingerprint(request), outcome, taskID, details)
}

// Fingerprint identifies a change request without storing it. Equal
// requests share a fingerprint, so repeated edits show up in the log.
func Fingerprint(request interface{}) string {
	data, err := json.Marshal(request)
	if err != nil {
		return unhashable
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
