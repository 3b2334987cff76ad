package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

type CategoryRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Category, error)
	List(ctx context.Context, userID string) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	// DeleteAndDetach removes the category and clears category_id on every
	// task referencing it, in one transaction. Tasks themselves survive.
	DeleteAndDetach(ctx context.Context, userID, id string) error
}
