// Package account implements account-level operations: profile reads, email
// changes and full account deletion.
package account

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, uc.classify(err, "failed to load user")
	}
	return user, nil
}

// ChangeEmail validates the new address and checks it is not held by another
// account before writing.
func (uc *UseCase) ChangeEmail(ctx context.Context, userID, newEmail string) error {
	newEmail = strings.TrimSpace(newEmail)
	if !domain.ValidEmail(newEmail) {
		return domain.NewError(domain.ErrCodeValidation, "invalid email address")
	}

	existing, err := uc.users.GetByEmail(ctx, newEmail)
	if err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return uc.classify(err, "failed to check email")
	}
	if existing != nil && existing.ID != userID {
		return domain.NewError(domain.ErrCodeValidation, "email address already in use")
	}

	if err := uc.users.UpdateEmail(ctx, userID, newEmail); err != nil {
		return uc.classify(err, "failed to change email")
	}
	return nil
}

// DeleteAccount removes the user and everything they own. The relational
// rows go in one transaction; sessions are revoked afterwards so a failed
// cascade leaves the account intact and still authenticated.
func (uc *UseCase) DeleteAccount(ctx context.Context, userID string) error {
	if err := uc.users.DeleteCascade(ctx, userID); err != nil {
		return uc.classify(err, "failed to delete account")
	}

	if err := uc.sessions.RevokeAll(ctx, userID); err != nil {
		uc.logger.Warn("failed to revoke sessions after account deletion",
			zap.String("user_id", userID), zap.Error(err))
	}
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
