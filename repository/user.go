package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	UpdateEmail(ctx context.Context, id, email string) error
	// DeleteCascade removes the user together with all owned tasks and
	// categories in one transaction.
	DeleteCascade(ctx context.Context, id string) error
}
