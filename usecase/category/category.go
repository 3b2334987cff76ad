// Package category implements category CRUD. Deleting a category detaches
// its tasks rather than deleting them.
package category

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/internal/infrastructure/journal"
	"github.com/taskdeck/backend/repository"
	"github.com/taskdeck/backend/usecase"
)

type UseCase struct {
	categories repository.CategoryRepository
	cache      usecase.QueryCache
	journal    usecase.MutationJournal
	logger     *zap.Logger
}

func New(categories repository.CategoryRepository, cache usecase.QueryCache, mutationJournal usecase.MutationJournal, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		categories: categories,
		cache:      cache,
		journal:    mutationJournal,
		logger:     logger,
	}
}

// UpdateCategoryInput has patch semantics: nil pointers leave fields untouched.
type UpdateCategoryInput struct {
	UserID string
	ID     string
	Name   *string
	Color  *string
}

func (uc *UseCase) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	categories, err := uc.categories.List(ctx, userID)
	if err != nil {
		return nil, uc.classify(err, "failed to load categories")
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func (uc *UseCase) CreateCategory(ctx context.Context, userID, name, color string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "category name must not be empty")
	}
	if utf8.RuneCountInString(name) > domain.CategoryNameMaxLength {
		return nil, domain.NewError(domain.ErrCodeValidation, "category name is too long")
	}
	if !domain.ValidHexColor(color) {
		return nil, domain.NewError(domain.ErrCodeValidation, "color must be #RRGGBB")
	}

	created, err := uc.categories.Create(ctx, &domain.Category{
		UserID: userID,
		Name:   name,
		Color:  color,
	})
	if err != nil {
		return nil, uc.classify(err, "failed to create category")
	}

	uc.afterMutation(ctx, userID, journal.OperationCreate, nil, created)
	return created, nil
}

func (uc *UseCase) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*domain.Category, error) {
	var name string
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.NewError(domain.ErrCodeValidation, "category name must not be empty")
		}
		if utf8.RuneCountInString(name) > domain.CategoryNameMaxLength {
			return nil, domain.NewError(domain.ErrCodeValidation, "category name is too long")
		}
	}
	if input.Color != nil && !domain.ValidHexColor(*input.Color) {
		return nil, domain.NewError(domain.ErrCodeValidation, "color must be #RRGGBB")
	}

	existing, err := uc.categories.GetByID(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, uc.classify(err, "failed to load category")
	}

	before := *existing
	updated := *existing
	if input.Name != nil {
		updated.Name = name
	}
	if input.Color != nil {
		updated.Color = *input.Color
	}

	if err := uc.categories.Update(ctx, &updated); err != nil {
		return nil, uc.classify(err, "failed to update category")
	}

	uc.afterMutation(ctx, input.UserID, journal.OperationUpdate, &before, &updated)
	return &updated, nil
}

// DeleteCategory removes the category and clears the reference on every task
// pointing at it, in one transaction.
func (uc *UseCase) DeleteCategory(ctx context.Context, userID, id string) error {
	existing, err := uc.categories.GetByID(ctx, userID, id)
	if err != nil {
		return uc.classify(err, "failed to load category")
	}

	if err := uc.categories.DeleteAndDetach(ctx, userID, id); err != nil {
		return uc.classify(err, "failed to delete category")
	}

	uc.afterMutation(ctx, userID, journal.OperationDelete, existing, nil)
	return nil
}

func (uc *UseCase) classify(err error, message string) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	uc.logger.Error(message, zap.Error(err))
	return domain.WrapError(domain.ErrCodeInternal, message, err)
}

func (uc *UseCase) afterMutation(ctx context.Context, userID, operation string, before, after *domain.Category) {
	if uc.journal != nil {
		if err := uc.journal.RecordCategory(ctx, operation, before, after); err != nil {
			uc.logger.Warn("failed to journal category mutation",
				zap.String("operation", operation), zap.Error(err))
		}
	}
	if uc.cache != nil {
		// Category renames and deletions surface in task payloads everywhere.
		if err := uc.cache.Invalidate(ctx, userID, usecase.TaskCachePartitions...); err != nil {
			uc.logger.Warn("cache invalidation failed", zap.Error(err))
		}
	}
}
