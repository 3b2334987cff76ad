package repository

import (
	"context"

	"github.com/taskdeck/backend/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttlSeconds int) error
	// RevokeAll drops every session belonging to the user (account deletion).
	RevokeAll(ctx context.Context, userID string) error
}
