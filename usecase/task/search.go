package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/pkg/clock"
	"github.com/taskdeck/backend/repository"
	"github.com/taskdeck/backend/usecase"
)

// SearchResult pairs the matched tasks with their count.
type SearchResult struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// SearchTasks runs the free-filter query: case-insensitive keyword match on
// title or memo, optional status/category/priority filters and an inclusive
// schedule-date range.
func (uc *UseCase) SearchTasks(ctx context.Context, filter repository.SearchFilter) (*SearchResult, error) {
	if filter.Status != "" && !domain.ValidStatus(filter.Status) {
		return nil, domain.NewError(domain.ErrCodeValidation, "unknown status")
	}
	if !domain.ValidPriority(filter.Priority) {
		return nil, domain.NewError(domain.ErrCodeValidation, "unknown priority")
	}
	if filter.DateFrom != "" && !clock.ValidDate(filter.DateFrom) {
		return nil, domain.NewError(domain.ErrCodeValidation, "date from must be YYYY-MM-DD")
	}
	if filter.DateTo != "" && !clock.ValidDate(filter.DateTo) {
		return nil, domain.NewError(domain.ErrCodeValidation, "date to must be YYYY-MM-DD")
	}

	key := searchCacheKey(filter)
	var cached SearchResult
	if uc.cacheGet(ctx, filter.UserID, usecase.CacheSearch, key, &cached) {
		return &cached, nil
	}

	tasks, err := uc.tasks.Search(ctx, filter)
	if err != nil {
		return nil, uc.classify(err, "failed to search tasks")
	}

	result := &SearchResult{
		Tasks: orEmpty(tasks),
		Total: len(tasks),
	}
	uc.cacheSet(ctx, filter.UserID, usecase.CacheSearch, key, result)
	return result, nil
}

// GetAllTasks lists every task of the owner, optionally narrowed to one
// category. A non-nil categoryID pointing at "" selects uncategorized tasks.
func (uc *UseCase) GetAllTasks(ctx context.Context, userID string, categoryID *string) ([]domain.Task, error) {
	key := "all"
	if categoryID != nil {
		if *categoryID == "" {
			key = "uncategorized"
		} else {
			key = "cat:" + *categoryID
		}
	}

	var cached []domain.Task
	if uc.cacheGet(ctx, userID, usecase.CacheAll, key, &cached) {
		return cached, nil
	}

	tasks, err := uc.tasks.ListAll(ctx, userID, categoryID)
	if err != nil {
		return nil, uc.classify(err, "failed to load tasks")
	}

	tasks = orEmpty(tasks)
	uc.cacheSet(ctx, userID, usecase.CacheAll, key, tasks)
	return tasks, nil
}

// searchCacheKey flattens the filter into a stable cache key.
func searchCacheKey(filter repository.SearchFilter) string {
	category := "-"
	if filter.CategoryID != nil {
		if *filter.CategoryID == "" {
			category = "none"
		} else {
			category = *filter.CategoryID
		}
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		strings.ToLower(strings.TrimSpace(filter.Keyword)),
		filter.Status,
		category,
		filter.Priority,
		filter.DateFrom,
		filter.DateTo,
	)
}
