package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lonepengu/backend/internal/domain"
)

type preferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *preferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) Create(ctx context.Context, prefs *domain.UserPreferences) error {
	return r.db.WithContext(ctx).Create(prefs).Error
}

func (r *preferencesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	var prefs domain.UserPreferences
	err := r.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *preferencesRepository) Update(ctx context.Context, prefs *domain.UserPreferences) (*domain.UserPreferences, error) {
	err := r.db.WithContext(ctx).Save(prefs).Error
	if err != nil {
		return nil, err
	}
	return prefs, nil
}
