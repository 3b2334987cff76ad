// Package auth issues and maintains sessions. A login resolves the account
// by email, stores a session in redis and signs a JWT carrying the owner and
// session ids; the middleware trusts the signature, the session store is the
// revocation authority.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/domain"
	"github.com/taskdeck/backend/repository"
)

// Credentials is what a successful login or refresh returns.
type Credentials struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	secret   []byte
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, secret string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		logger:   logger,
	}
}

// Register creates the account for an unseen email address and issues
// credentials straight away. An existing address just logs in; there is no
// password, the address is the identity.
func (uc *UseCase) Register(ctx context.Context, email string, ttl time.Duration) (*Credentials, error) {
	email = strings.TrimSpace(email)
	if !domain.ValidEmail(email) {
		return nil, domain.NewError(domain.ErrCodeValidation, "invalid email address")
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, uc.classify(err, "failed to resolve account")
		}
		user = &domain.User{ID: uuid.NewString(), Email: email}
		if err := uc.users.Upsert(ctx, user); err != nil {
			return nil, uc.classify(err, "failed to create account")
		}
	}
	return uc.issue(ctx, user.ID, ttl)
}

// Login resolves the account by email and issues fresh credentials. An
// unknown address comes back UNAUTHORIZED, not NOT_FOUND, so the response
// does not reveal which addresses exist.
func (uc *UseCase) Login(ctx context.Context, email string, ttl time.Duration) (*Credentials, error) {
	email = strings.TrimSpace(email)
	if !domain.ValidEmail(email) {
		return nil, domain.NewError(domain.ErrCodeValidation, "invalid email address")
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, uc.classify(err, "failed to resolve account")
	}
	return uc.issue(ctx, user.ID, ttl)
}

func (uc *UseCase) issue(ctx context.Context, userID string, ttl time.Duration) (*Credentials, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, uc.classify(err, "failed to store session")
	}

	token, err := uc.sign(session)
	if err != nil {
		return nil, uc.classify(err, "failed to sign token")
	}
	return &Credentials{Token: token, Session: session}, nil
}

// Refresh extends an existing session and re-signs its token.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string, ttl time.Duration) (*Credentials, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, uc.classify(err, "failed to load session")
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthorized
	}

	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, uc.classify(err, "failed to extend session")
	}
	session.ExpiresAt = time.Now().Add(ttl)

	token, err := uc.sign(session)
	if err != nil {
		return nil, uc.classify(err, "failed to sign token")
	}
	return &Credentials{Token: token, Session: session}, nil
}

// Validate checks that the session behind a token is still alive. Expired
// sessions are deleted on sight.
func (uc *UseCase) Validate(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Delete(ctx, sessionID); err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return uc.classify(err, "failed to revoke session")
	}
	return nil
}

func (uc *UseCase) sign(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    session.UserID,
		"session_id": session.ID,
		"exp":        session.ExpiresAt.Unix(),
		"iat":        time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
}

func (uc *UseCase) classify(err error, message string) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	uc.logger.Error(message, zap.Error(err))
	return domain.WrapError(domain.ErrCodeInternal, message, err)
}
