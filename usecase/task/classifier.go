package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/pkg/clock"
	"github.com/taskdeck/backend/usecase"
)

// TodayTasks is the action surface for the current day: five disjoint groups
// covering everything the user can act on right now.
type TodayTasks struct {
	Date           string        `json:"date"`
	Overdue        []domain.Task `json:"overdue"`
	DueToday       []domain.Task `json:"due_today"`
	Undated        []domain.Task `json:"undated"`
	CompletedToday []domain.Task `json:"completed_today"`
	SkippedToday   []domain.Task `json:"skipped_today"`
}

// DateTasks is the read view for a specific day other than today. Completed
// and Skipped carry history and are populated for past dates only; a day that
// has not occurred cannot have completion or skip history.
type DateTasks struct {
	Date      string        `json:"date"`
	IsPast    bool          `json:"is_past"`
	IsFuture  bool          `json:"is_future"`
	Scheduled []domain.Task `json:"scheduled"`
	Completed []domain.Task `json:"completed"`
	Skipped   []domain.Task `json:"skipped"`
}

// GetTodayTasks buckets the owner's tasks into the five today groups:
// overdue (pending, scheduled before today, oldest first), due today,
// undated, completed today and skipped today. The groups are pairwise
// disjoint: status separates the last two from the first three, and the
// schedule-date predicates of the first three cannot overlap.
func (uc *UseCase) GetTodayTasks(ctx context.Context, userID string) (*TodayTasks, error) {
	today := uc.clock.Today()

	var cached TodayTasks
	if uc.cacheGet(ctx, userID, usecase.CacheToday, today, &cached) {
		return &cached, nil
	}

	todayStart, todayEnd, err := uc.clock.DateRange(today)
	if err != nil {
		return nil, uc.classify(err, "failed to compute day range")
	}

	overdue, err := uc.tasks.ListOverdue(ctx, userID, today)
	if err != nil {
		return nil, uc.classify(err, "failed to load tasks")
	}
	dueToday, err := uc.tasks.ListScheduledOn(ctx, userID, today, true)
	if err != nil {
		return nil, uc.classify(err, "failed to load tasks")
	}
	undated, err := uc.tasks.ListUndated(ctx, userID)
	if err != nil {
		return nil, uc.classify(err, "failed to load tasks")
	}
	completed, err := uc.tasks.ListCompletedBetween(ctx, userID, todayStart, todayEnd)
	if err != nil {
		return nil, uc.classify(err, "failed to load tasks")
	}
	skipped, err := uc.tasks.ListSkippedBetween(ctx, userID, todayStart, todayEnd)
	if err != nil {
		return nil, uc.classify(err, "failed to load tasks")
	}

	result := &TodayTasks{
		Date:           today,
		Overdue:        orEmpty(overdue),
		DueToday:       orEmpty(dueToday),
		Undated:        orEmpty(undated),
		CompletedToday: orEmpty(completed),
		SkippedToday:   orEmpty(skipped),
	}

	uc.cacheSet(ctx, userID, usecase.CacheToday, today, result)
	return result, nil
}

// GetTasksByDate returns the view for an arbitrary calendar date: everything
// scheduled on it regardless of status, plus, for past dates only, what was
// completed or skipped that day. For future dates the history groups are
// empty by construction, enforced here rather than left to the queries.
func (uc *UseCase) GetTasksByDate(ctx context.Context, userID, date string) (*DateTasks, error) {
	if !clock.ValidDate(date) {
		return nil, domain.NewError(domain.ErrCodeValidation, "date must be YYYY-MM-DD")
	}

	var cached DateTasks
	if uc.cacheGet(ctx, userID, usecase.CacheDate, date, &cached) {
		return &cached, nil
	}

	today := uc.clock.Today()
	// ISO date strings order lexicographically.
	isPast := date < today
	isFuture := date > today

	scheduled, err := uc.tasks.ListScheduledOn(ctx, userID, date, false)
	if err != nil {
		return nil, uc.classify(err, "failed to load tasks")
	}

	completed := []domain.Task{}
	skipped := []domain.Task{}
	if isPast {
		start, end, err := uc.clock.DateRange(date)
		if err != nil {
			return nil, uc.classify(err, "failed to compute day range")
		}
		if completed, err = uc.tasks.ListCompletedBetween(ctx, userID, start, end); err != nil {
			return nil, uc.classify(err, "failed to load tasks")
		}
		if skipped, err = uc.tasks.ListSkippedBetween(ctx, userID, start, end); err != nil {
			return nil, uc.classify(err, "failed to load tasks")
		}
	}

	result := &DateTasks{
		Date:      date,
		IsPast:    isPast,
		IsFuture:  isFuture,
		Scheduled: orEmpty(scheduled),
		Completed: orEmpty(completed),
		Skipped:   orEmpty(skipped),
	}

	uc.cacheSet(ctx, userID, usecase.CacheDate, date, result)
	return result, nil
}

func (uc *UseCase) cacheGet(ctx context.Context, userID string, partition usecase.CachePartition, key string, dest interface{}) bool {
	if uc.cache == nil {
		return false
	}
	hit, err := uc.cache.Get(ctx, userID, partition, key, dest)
	if err != nil {
		uc.logger.Warn("cache read failed", zap.String("partition", string(partition)), zap.Error(err))
		return false
	}
	return hit
}

func (uc *UseCase) cacheSet(ctx context.Context, userID string, partition usecase.CachePartition, key string, value interface{}) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, userID, partition, key, value); err != nil {
		uc.logger.Warn("cache write failed", zap.String("partition", string(partition)), zap.Error(err))
	}
}

func orEmpty(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return []domain.Task{}
	}
	return tasks
}
