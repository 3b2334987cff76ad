package repository

import (
	"context"
	"time"

	"github.com/taskdeck/backend/domain"
)

// SearchFilter is the typed filter for free-form task search. Zero values mean
// "no constraint"; pointer fields distinguish "unset" from an explicit empty
// value (CategoryID pointing at "" matches tasks with no category).
type SearchFilter struct {
	UserID     string
	Keyword    string
	Status     domain.TaskStatus
	CategoryID *string
	Priority   domain.TaskPriority
	DateFrom   string
	DateTo     string
}

// TaskRepository exposes the owner-scoped query shapes the classifier and
// aggregator are built on. Every method returns tasks joined with their
// (possibly absent) category.
//
// Ordering contract: ListScheduledOn, ListUndated, ListAll and Search order by
// display_order ascending with NULLs last, tie-broken by created_at descending.
// ListOverdue orders by scheduled_at ascending (oldest first). The
// completion/skip window queries order by their timestamp descending.
type TaskRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, userID, id string) error

	// ListScheduledOn returns tasks whose schedule date equals date exactly.
	// With pendingOnly set, only PENDING tasks are returned.
	ListScheduledOn(ctx context.Context, userID, date string, pendingOnly bool) ([]domain.Task, error)
	// ListCompletedBetween returns COMPLETED tasks whose completion instant
	// falls within [start, end].
	ListCompletedBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.Task, error)
	// ListSkippedBetween is symmetric to ListCompletedBetween for SKIPPED tasks.
	ListSkippedBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.Task, error)
	// ListOverdue returns PENDING tasks scheduled strictly before today.
	ListOverdue(ctx context.Context, userID, today string) ([]domain.Task, error)
	// ListUndated returns PENDING tasks with no schedule date.
	ListUndated(ctx context.Context, userID string) ([]domain.Task, error)
	// ListMonthWindow returns tasks touching the month by schedule date
	// (firstDate..lastDate) or by completion/skip instant (start..end), as
	// a union condition.
	ListMonthWindow(ctx context.Context, userID, firstDate, lastDate string, start, end time.Time) ([]domain.Task, error)
	// ListAll returns every task of the owner; a non-nil categoryID filters by
	// category, pointing at "" selects tasks without one.
	ListAll(ctx context.Context, userID string, categoryID *string) ([]domain.Task, error)
	Search(ctx context.Context, filter SearchFilter) ([]domain.Task, error)

	// Reorder assigns display_order = positional index for each id, inside a
	// single transaction. If any id is missing or owned by someone else the
	// whole operation fails and no order changes.
	Reorder(ctx context.Context, userID string, orderedIDs []string) error
}
