package transport

// CreateTaskRequest carries a new task. ScheduledAt is a plain YYYY-MM-DD
// calendar date; empty means unscheduled.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Memo        string `json:"memo"`
	ScheduledAt string `json:"scheduled_at"`
	CategoryID  string `json:"category_id"`
	Priority    string `json:"priority"`
}

// UpdateTaskRequest is a patch: absent fields stay untouched, fields present
// with an empty value clear the nullable ones.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Memo        *string `json:"memo"`
	ScheduledAt *string `json:"scheduled_at"`
	CategoryID  *string `json:"category_id"`
	Priority    *string `json:"priority"`
}

type SkipTaskRequest struct {
	Reason string `json:"reason"`
}

type ReorderTasksRequest struct {
	TaskIDs []string `json:"task_ids"`
}

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateCategoryRequest is a patch like UpdateTaskRequest.
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type AuthRequest struct {
	Email string `json:"email"`
	TTL   int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

type ChangeEmailRequest struct {
	Email string `json:"email"`
}
