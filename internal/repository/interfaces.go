package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/lonepengu/backend/internal/domain"
)

type UserRepository interface {
	// CreateIfAbsent inserts the user unless a row with the same email
	// already exists, reporting whether the insert happened. Losing the
	// race to a concurrent insert is not an error.
	CreateIfAbsent(ctx context.Context, user *domain.User) (created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// TouchLogin bumps last_login and overwrites name/avatar only when the
	// caller supplied them; existing values are never nulled out.
	TouchLogin(ctx context.Context, id uuid.UUID, name, avatarURL *string) error
	// UpdateProfile applies the non-nil fields and returns the fresh row.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL *string, metadata datatypes.JSON) (*domain.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByAccessToken(ctx context.Context, accessToken string) (*domain.Session, error)
	// GetActiveByRefreshToken only matches sessions with is_valid=true.
	GetActiveByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	// Invalidate flips is_valid to false; matching zero rows is not an error.
	Invalidate(ctx context.Context, accessToken string) error
	// Rotate rewrites the access token and expiry on an existing session
	// and touches last_used_at.
	Rotate(ctx context.Context, id uuid.UUID, accessToken string, expiresAt time.Time) error
	TouchLastUsed(ctx context.Context, accessToken string) error
}

type PreferencesRepository interface {
	Create(ctx context.Context, prefs *domain.UserPreferences) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error)
	Update(ctx context.Context, prefs *domain.UserPreferences) (*domain.UserPreferences, error)
}

// Tx is a transactional view of the store. Rollback after Commit is a no-op,
// so callers can unconditionally defer it and commit only on full success.
type Tx interface {
	Users() UserRepository
	Sessions() SessionRepository
	Preferences() PreferencesRepository
	Commit() error
	Rollback() error
}

// Store is the durable backend shared by the services. Begin hands out a
// scoped transactional view; the non-transactional repositories are for
// single-statement operations.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Preferences() PreferencesRepository
	Begin(ctx context.Context) (Tx, error)
}
