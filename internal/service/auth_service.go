package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/lonepengu/backend/internal/config"
	"github.com/lonepengu/backend/internal/domain"
	"github.com/lonepengu/backend/internal/repository"
	"github.com/lonepengu/backend/internal/token"
)

// AuthService owns the session lifecycle: it is the only caller of the token
// codec and identity resolver, and the only reader/writer of session rows.
type AuthService struct {
	store    repository.Store
	resolver *IdentityResolver
	codec    *token.Codec
	cfg      *config.Config
}

func NewAuthService(store repository.Store, codec *token.Codec, cfg *config.Config) *AuthService {
	return &AuthService{
		store:    store,
		resolver: NewIdentityResolver(),
		codec:    codec,
		cfg:      cfg,
	}
}

type LoginInput struct {
	Email      string
	Provider   domain.AuthProvider
	ProviderID *string
	Name       *string
	AvatarURL  *string
	DeviceInfo *string
	IPAddress  string
}

type LoginResult struct {
	User         *domain.User
	IsNewUser    bool
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Login resolves the identity, mints both tokens, and persists the session
// in one transaction; a failure at any step leaves no user, preferences, or
// session row behind.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if !domain.ValidProvider(input.Provider) {
		return nil, domain.ErrInvalidProvider
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, isNew, err := s.resolver.Resolve(ctx, tx, ResolveInput{
		Email:      input.Email,
		Provider:   input.Provider,
		ProviderID: input.ProviderID,
		Name:       input.Name,
		AvatarURL:  input.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Issue(user.ID, user.Email, token.PurposeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.Issue(user.ID, user.Email, token.PurposeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.cfg.AccessTokenTTL)
	session := &domain.Session{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		DeviceInfo:   input.DeviceInfo,
		IPAddress:    input.IPAddress,
		ExpiresAt:    expiresAt,
		IsValid:      true,
	}
	if err := tx.Sessions().Create(ctx, session); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		IsNewUser:    isNew,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Logout invalidates the session matching the access token. Unknown tokens
// are a silent success; a client may retry logout after the session is gone.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	return s.store.Sessions().Invalidate(ctx, accessToken)
}

type ValidationResult struct {
	Valid bool
	User  *domain.User
}

// Validate checks the access token against its session row and fails closed:
// no row, invalidated, or expired all yield Valid=false without error. On
// success the session's last_used_at is touched best-effort.
func (s *AuthService) Validate(ctx context.Context, accessToken string) (*ValidationResult, error) {
	session, err := s.store.Sessions().GetByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidationResult{Valid: false}, nil
		}
		return nil, err
	}

	if !session.Active(time.Now()) {
		return &ValidationResult{Valid: false}, nil
	}

	user, err := s.store.Users().GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidationResult{Valid: false}, nil
		}
		return nil, err
	}

	if err := s.store.Sessions().TouchLastUsed(ctx, accessToken); err != nil {
		log.Printf("ERROR [auth.Validate] failed to touch last_used_at: %v", err)
	}

	return &ValidationResult{Valid: true, User: user}, nil
}

type RefreshResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Refresh rotates the access token on the session matching the refresh
// token. The refresh token itself is never rotated; it stays valid until its
// own expiry or an explicit logout.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}
	if claims.Purpose != token.PurposeRefresh {
		return nil, domain.ErrWrongTokenPurpose
	}

	session, err := s.store.Sessions().GetActiveByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	user, err := s.store.Users().GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	accessToken, err := s.codec.Issue(user.ID, user.Email, token.PurposeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.cfg.AccessTokenTTL)
	if err := s.store.Sessions().Rotate(ctx, session.ID, accessToken, expiresAt); err != nil {
		return nil, err
	}

	return &RefreshResult{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}
