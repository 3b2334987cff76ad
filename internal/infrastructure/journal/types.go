package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityTask     = "task"
	EntityCategory = "category"

	OperationCreate     = "create"
	OperationUpdate     = "update"
	OperationComplete   = "complete"
	OperationUncomplete = "uncomplete"
	OperationSkip       = "skip"
	OperationUnskip     = "unskip"
	OperationDelete     = "delete"
	OperationReorder    = "reorder"
)

// Entry is one recorded mutation: the entity state before and after the
// write. Before is empty for creates, After is empty for deletes.
type Entry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}
