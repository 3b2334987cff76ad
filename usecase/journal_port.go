package usecase

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

// MutationJournal records before/after snapshots of successful mutations so
// clients applying optimistic updates have an inversion trail, and operators
// have a local change log. Journaling is best-effort: a journal failure never
// fails the mutation.
type MutationJournal interface {
	RecordTask(ctx context.Context, operation string, before, after *domain.Task) error
	RecordCategory(ctx context.Context, operation string, before, after *domain.Category) error
	// RecordReorder logs a display-order rewrite as the id list in its new order.
	RecordReorder(ctx context.Context, userID string, orderedIDs []string) error
}
