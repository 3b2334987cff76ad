// Package task implements the task-management core: mutations, the day
// classifier, search, and the monthly statistics aggregator. All operations
// are owner-scoped and return tagged domain errors.
package task

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/internal/infrastructure/journal"
	"github.com/taskdeck/backend/pkg/clock"
	"github.com/taskdeck/backend/repository"
	"github.com/taskdeck/backend/usecase"
)

type UseCase struct {
	tasks      repository.TaskRepository
	categories repository.CategoryRepository
	clock      *clock.Clock
	cache      usecase.QueryCache
	journal    usecase.MutationJournal
	logger     *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	categories repository.CategoryRepository,
	clk *clock.Clock,
	cache usecase.QueryCache,
	mutationJournal usecase.MutationJournal,
	logger *zap.Logger,
) *UseCase {
	if clk == nil {
		clk = clock.NewJST()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:      tasks,
		categories: categories,
		clock:      clk,
		cache:      cache,
		journal:    mutationJournal,
		logger:     logger,
	}
}

// CreateTaskInput carries the explicit fields of a new task. Empty strings
// mean "unset" for the optional fields.
type CreateTaskInput struct {
	UserID      string
	Title       string
	Memo        string
	ScheduledAt string
	CategoryID  string
	Priority    domain.TaskPriority
}

// UpdateTaskInput has patch semantics: nil pointers leave the field
// untouched, pointers at an empty value clear nullable fields.
type UpdateTaskInput struct {
	UserID      string
	ID          string
	Title       *string
	Memo        *string
	ScheduledAt *string
	CategoryID  *string
	Priority    *domain.TaskPriority
}

func (uc *UseCase) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "title must not be empty")
	}
	if utf8.RuneCountInString(title) > domain.TaskTitleMaxLength {
		return nil, domain.NewError(domain.ErrCodeValidation, "title is too long")
	}
	memo := strings.TrimSpace(input.Memo)
	if utf8.RuneCountInString(memo) > domain.TaskMemoMaxLength {
		return nil, domain.NewError(domain.ErrCodeValidation, "memo is too long")
	}
	if input.ScheduledAt != "" && !clock.ValidDate(input.ScheduledAt) {
		return nil, domain.NewError(domain.ErrCodeValidation, "scheduled date must be YYYY-MM-DD")
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, domain.NewError(domain.ErrCodeValidation, "unknown priority")
	}

	if input.CategoryID != "" {
		if _, err := uc.categories.GetByID(ctx, input.UserID, input.CategoryID); err != nil {
			return nil, uc.classify(err, "failed to verify category")
		}
	}

	task := &domain.Task{
		UserID:      input.UserID,
		Title:       title,
		Memo:        memo,
		Status:      domain.StatusPending,
		Priority:    input.Priority,
		ScheduledAt: input.ScheduledAt,
		CategoryID:  input.CategoryID,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, uc.classify(err, "failed to create task")
	}

	uc.afterMutation(ctx, input.UserID, journal.OperationCreate, nil, created)
	return uc.withCategory(ctx, created)
}

func (uc *UseCase) UpdateTask(ctx context.Context, input UpdateTaskInput) (*domain.Task, error) {
	// Validate the whole patch before touching anything.
	var title string
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, domain.NewError(domain.ErrCodeValidation, "title must not be empty")
		}
		if utf8.RuneCountInString(title) > domain.TaskTitleMaxLength {
			return nil, domain.NewError(domain.ErrCodeValidation, "title is too long")
		}
	}
	var memo string
	if input.Memo != nil {
		memo = strings.TrimSpace(*input.Memo)
		if utf8.RuneCountInString(memo) > domain.TaskMemoMaxLength {
			return nil, domain.NewError(domain.ErrCodeValidation, "memo is too long")
		}
	}
	if input.ScheduledAt != nil && *input.ScheduledAt != "" && !clock.ValidDate(*input.ScheduledAt) {
		return nil, domain.NewError(domain.ErrCodeValidation, "scheduled date must be YYYY-MM-DD")
	}
	if input.Priority != nil && !domain.ValidPriority(*input.Priority) {
		return nil, domain.NewError(domain.ErrCodeValidation, "unknown priority")
	}

	existing, err := uc.tasks.GetByID(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, uc.classify(err, "failed to load task")
	}

	if input.CategoryID != nil && *input.CategoryID != "" {
		if _, err := uc.categories.GetByID(ctx, input.UserID, *input.CategoryID); err != nil {
			return nil, uc.classify(err, "failed to verify category")
		}
	}

	before := *existing
	updated := *existing
	if input.Title != nil {
		updated.Title = title
	}
	if input.Memo != nil {
		updated.Memo = memo
	}
	if input.ScheduledAt != nil {
		updated.ScheduledAt = *input.ScheduledAt
	}
	if input.CategoryID != nil {
		updated.CategoryID = *input.CategoryID
		updated.Category = nil
	}
	if input.Priority != nil {
		updated.Priority = *input.Priority
	}

	if err := uc.tasks.Update(ctx, &updated); err != nil {
		return nil, uc.classify(err, "failed to update task")
	}

	uc.afterMutation(ctx, input.UserID, journal.OperationUpdate, &before, &updated)
	return uc.withCategory(ctx, &updated)
}

// CompleteTask transitions a task to COMPLETED, stamping the completion
// instant and clearing any skip state.
func (uc *UseCase) CompleteTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	existing, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, uc.classify(err, "failed to load task")
	}

	before := *existing
	updated := *existing
	now := uc.clock.Now()
	updated.Status = domain.StatusCompleted
	updated.CompletedAt = &now
	updated.SkippedAt = nil
	updated.SkipReason = ""

	if err := uc.tasks.Update(ctx, &updated); err != nil {
		return nil, uc.classify(err, "failed to complete task")
	}

	uc.afterMutation(ctx, userID, journal.OperationComplete, &before, &updated)
	return uc.withCategory(ctx, &updated)
}

// UncompleteTask reverts a completed task to PENDING.
func (uc *UseCase) UncompleteTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	existing, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, uc.classify(err, "failed to load task")
	}

	before := *existing
	updated := *existing
	updated.Status = domain.StatusPending
	updated.CompletedAt = nil

	if err := uc.tasks.Update(ctx, &updated); err != nil {
		return nil, uc.classify(err, "failed to update task")
	}

	uc.afterMutation(ctx, userID, journal.OperationUncomplete, &before, &updated)
	return uc.withCategory(ctx, &updated)
}

// SkipTask marks a task SKIPPED with an optional reason, clearing any
// completion state.
func (uc *UseCase) SkipTask(ctx context.Context, userID, id, reason string) (*domain.Task, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > domain.TaskSkipReasonMaxLength {
		return nil, domain.NewError(domain.ErrCodeValidation, "skip reason is too long")
	}

	existing, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, uc.classify(err, "failed to load task")
	}

	before := *existing
	updated := *existing
	now := uc.clock.Now()
	updated.Status = domain.StatusSkipped
	updated.SkippedAt = &now
	updated.SkipReason = reason
	updated.CompletedAt = nil

	if err := uc.tasks.Update(ctx, &updated); err != nil {
		return nil, uc.classify(err, "failed to update task")
	}

	uc.afterMutation(ctx, userID, journal.OperationSkip, &before, &updated)
	return uc.withCategory(ctx, &updated)
}

// UnskipTask reverts a skipped task to PENDING, clearing the skip state.
func (uc *UseCase) UnskipTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	existing, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, uc.classify(err, "failed to load task")
	}

	before := *existing
	updated := *existing
	updated.Status = domain.StatusPending
	updated.SkippedAt = nil
	updated.SkipReason = ""

	if err := uc.tasks.Update(ctx, &updated); err != nil {
		return nil, uc.classify(err, "failed to update task")
	}

	uc.afterMutation(ctx, userID, journal.OperationUnskip, &before, &updated)
	return uc.withCategory(ctx, &updated)
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) error {
	existing, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return uc.classify(err, "failed to load task")
	}

	if err := uc.tasks.Delete(ctx, userID, id); err != nil {
		return uc.classify(err, "failed to delete task")
	}

	uc.afterMutation(ctx, userID, journal.OperationDelete, existing, nil)
	return nil
}

// ReorderTasks assigns display_order by position for the given ids,
// atomically. Any foreign or unknown id fails the whole call.
func (uc *UseCase) ReorderTasks(ctx context.Context, userID string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return domain.NewError(domain.ErrCodeValidation, "task id list must not be empty")
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if id == "" {
			return domain.NewError(domain.ErrCodeValidation, "task id must not be empty")
		}
		if _, dup := seen[id]; dup {
			return domain.NewError(domain.ErrCodeValidation, "duplicate task id")
		}
		seen[id] = struct{}{}
	}

	if err := uc.tasks.Reorder(ctx, userID, orderedIDs); err != nil {
		return uc.classify(err, "failed to reorder tasks")
	}

	if uc.journal != nil {
		if err := uc.journal.RecordReorder(ctx, userID, orderedIDs); err != nil {
			uc.logger.Warn("failed to journal task reorder", zap.Error(err))
		}
	}
	uc.invalidate(ctx, userID)
	return nil
}

// classify passes tagged domain errors through and hides everything else
// behind a generic INTERNAL_ERROR, keeping the storage detail in the logs.
func (uc *UseCase) classify(err error, message string) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	uc.logger.Error(message, zap.Error(err))
	return domain.WrapError(domain.ErrCodeInternal, message, err)
}

// afterMutation journals the transition and drops the owner's cached query
// results. Both are best-effort.
func (uc *UseCase) afterMutation(ctx context.Context, userID, operation string, before, after *domain.Task) {
	if uc.journal != nil {
		if err := uc.journal.RecordTask(ctx, operation, before, after); err != nil {
			uc.logger.Warn("failed to journal task mutation",
				zap.String("operation", operation), zap.Error(err))
		}
	}
	uc.invalidate(ctx, userID)
}

func (uc *UseCase) invalidate(ctx context.Context, userID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, userID, usecase.TaskCachePartitions...); err != nil {
		uc.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}

// withCategory reloads the task so the response carries the joined category,
// matching what the list queries return.
func (uc *UseCase) withCategory(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task.CategoryID == "" {
		task.Category = nil
		return task, nil
	}
	reloaded, err := uc.tasks.GetByID(ctx, task.UserID, task.ID)
	if err != nil {
		// The mutation already succeeded; fall back to the bare task.
		uc.logger.Warn("failed to reload task with category", zap.Error(err))
		return task, nil
	}
	return reloaded, nil
}
