package domain

import "time"

// TaskStatus enumerates the lifecycle states of a task. Exactly one holds at any time.
type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusCompleted TaskStatus = "COMPLETED"
	StatusSkipped   TaskStatus = "SKIPPED"
)

// TaskPriority is an optional importance marker; the empty string means unset.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "HIGH"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityLow    TaskPriority = "LOW"
)

// Limits applied to free-text task fields after trimming, counted in runes
// so multibyte text gets the full allowance.
const (
	TaskTitleMaxLength      = 500
	TaskMemoMaxLength       = 10000
	TaskSkipReasonMaxLength = 1000
)

// Task represents one user-owned to-do item.
//
// ScheduledAt is a pure calendar date (YYYY-MM-DD) interpreted in the fixed
// application timezone; it carries no time-of-day. CompletedAt and SkippedAt
// are instants and never both set.
type Task struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Title        string       `json:"title"`
	Memo         string       `json:"memo,omitempty"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority,omitempty"`
	ScheduledAt  string       `json:"scheduled_at,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	SkippedAt    *time.Time   `json:"skipped_at,omitempty"`
	SkipReason   string       `json:"skip_reason,omitempty"`
	CategoryID   string       `json:"category_id,omitempty"`
	Category     *Category    `json:"category,omitempty"`
	DisplayOrder *int         `json:"display_order,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (t *Task) IsPending() bool {
	return t != nil && t.Status == StatusPending
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// ValidStatus reports whether s is one of the known task states.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority. The empty string is
// valid and means "unset".
func ValidPriority(p TaskPriority) bool {
	switch p {
	case "", PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
