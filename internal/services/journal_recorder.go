package services

import (
	"context"
	"encoding/json"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/internal/infrastructure/journal"
	"github.com/taskdeck/backend/usecase"
)

// JournalRecorder adapts the Bolt journal store to the usecase.MutationJournal port.
type JournalRecorder struct {
	store *journal.Store
}

func NewJournalRecorder(store *journal.Store) *JournalRecorder {
	return &JournalRecorder{store: store}
}

func (j *JournalRecorder) RecordTask(ctx context.Context, operation string, before, after *domain.Task) error {
	if j == nil || j.store == nil {
		return nil
	}
	entry := journal.Entry{
		Entity:    journal.EntityTask,
		Operation: operation,
	}
	if before != nil {
		entry.UserID = before.UserID
		payload, err := json.Marshal(before)
		if err != nil {
			return err
		}
		entry.Before = payload
	}
	if after != nil {
		entry.UserID = after.UserID
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		entry.After = payload
	}
	return j.store.Append(entry)
}

func (j *JournalRecorder) RecordCategory(ctx context.Context, operation string, before, after *domain.Category) error {
	if j == nil || j.store == nil {
		return nil
	}
	entry := journal.Entry{
		Entity:    journal.EntityCategory,
		Operation: operation,
	}
	if before != nil {
		entry.UserID = before.UserID
		payload, err := json.Marshal(before)
		if err != nil {
			return err
		}
		entry.Before = payload
	}
	if after != nil {
		entry.UserID = after.UserID
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		entry.After = payload
	}
	return j.store.Append(entry)
}

// RecordReorder keeps the previous ordering recoverable from the trail: the
// After payload is the id list in its new display order.
func (j *JournalRecorder) RecordReorder(ctx context.Context, userID string, orderedIDs []string) error {
	if j == nil || j.store == nil {
		return nil
	}
	payload, err := json.Marshal(orderedIDs)
	if err != nil {
		return err
	}
	return j.store.Append(journal.Entry{
		Entity:    journal.EntityTask,
		Operation: journal.OperationReorder,
		UserID:    userID,
		After:     payload,
	})
}

var _ usecase.MutationJournal = (*JournalRecorder)(nil)
