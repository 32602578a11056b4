package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lonepengu/backend/internal/domain"
	"github.com/lonepengu/backend/internal/repository"
)

// UserService covers profile and preferences reads/writes for an already
// authenticated user. Partial updates never null out existing values.
type UserService struct {
	store repository.Store
}

func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateProfileInput struct {
	Name      *string
	AvatarURL *string
	Metadata  datatypes.JSON
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.store.Users().UpdateProfile(ctx, userID, input.Name, input.AvatarURL, input.Metadata)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetPreferences self-heals a missing row: users created before the
// preferences table existed get defaults seeded on first read.
func (s *UserService) GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	prefs, err := s.store.Preferences().GetByUserID(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prefs = domain.DefaultPreferences(userID)
	if err := s.store.Preferences().Create(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

type UpdatePreferencesInput struct {
	ThemeMode            *string
	NotificationsEnabled *bool
	EmailNotifications   *bool
	LastActiveRoute      *string
}

func (s *UserService) UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*domain.UserPreferences, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.ThemeMode != nil {
		prefs.ThemeMode = *input.ThemeMode
	}
	if input.NotificationsEnabled != nil {
		prefs.NotificationsEnabled = *input.NotificationsEnabled
	}
	if input.EmailNotifications != nil {
		prefs.EmailNotifications = *input.EmailNotifications
	}
	if input.LastActiveRoute != nil {
		prefs.LastActiveRoute = input.LastActiveRoute
	}

	return s.store.Preferences().Update(ctx, prefs)
}

type AppState struct {
	LastRoute *string
	State     datatypes.JSON
}

// GetAppState returns the persisted client state for background restoration.
// A missing preferences row yields an empty state, not an error.
func (s *UserService) GetAppState(ctx context.Context, userID uuid.UUID) (*AppState, error) {
	prefs, err := s.store.Preferences().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AppState{}, nil
		}
		return nil, err
	}
	return &AppState{
		LastRoute: prefs.LastActiveRoute,
		State:     prefs.AppState,
	}, nil
}

func (s *UserService) SaveAppState(ctx context.Context, userID uuid.UUID, lastRoute *string, state datatypes.JSON) error {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return err
	}

	if lastRoute != nil {
		prefs.LastActiveRoute = lastRoute
	}
	if state != nil {
		prefs.AppState = state
	}

	_, err = s.store.Preferences().Update(ctx, prefs)
	return err
}
