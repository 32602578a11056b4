package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lonepengu/backend/internal/domain"
	"github.com/lonepengu/backend/internal/repository"
)

// IdentityResolver maps an external identity assertion (email + provider) to
// a stable internal user, creating one on first sight. It runs inside a
// caller-supplied transaction so that a login never commits a user row
// without its session.
type IdentityResolver struct{}

func NewIdentityResolver() *IdentityResolver {
	return &IdentityResolver{}
}

type ResolveInput struct {
	Email      string
	Provider   domain.AuthProvider
	ProviderID *string
	Name       *string
	AvatarURL  *string
}

// Resolve returns the user for the asserted email, creating it (with a
// default preferences row) when absent. On revisit it bumps last_login and
// fills name/avatar only when newly supplied. The provider must have been
// validated by the caller before the transaction opened.
func (r *IdentityResolver) Resolve(ctx context.Context, tx repository.Tx, in ResolveInput) (*domain.User, bool, error) {
	users := tx.Users()

	existing, err := users.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if err == nil {
		return r.revisit(ctx, users, existing, in)
	}

	user := &domain.User{
		Email:        in.Email,
		Name:         in.Name,
		AuthProvider: in.Provider,
		ProviderID:   in.ProviderID,
		AvatarURL:    in.AvatarURL,
		LastLogin:    time.Now(),
	}
	created, err := users.CreateIfAbsent(ctx, user)
	if err != nil {
		return nil, false, err
	}
	if !created {
		// Lost the race to a concurrent first login for the same email.
		// The winner's row is committed by now; proceed as existing user.
		existing, err := users.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, false, err
		}
		return r.revisit(ctx, users, existing, in)
	}

	if err := tx.Preferences().Create(ctx, domain.DefaultPreferences(user.ID)); err != nil {
		return nil, false, err
	}

	return user, true, nil
}

func (r *IdentityResolver) revisit(ctx context.Context, users repository.UserRepository, user *domain.User, in ResolveInput) (*domain.User, bool, error) {
	if err := users.TouchLogin(ctx, user.ID, in.Name, in.AvatarURL); err != nil {
		return nil, false, err
	}
	if in.Name != nil {
		user.Name = in.Name
	}
	if in.AvatarURL != nil {
		user.AvatarURL = in.AvatarURL
	}
	return user, false, nil
}
