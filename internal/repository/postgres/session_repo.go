package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lonepengu/backend/internal/domain"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByAccessToken(ctx context.Context, accessToken string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).First(&session, "access_token = ?", accessToken).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) GetActiveByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		First(&session, "refresh_token = ? AND is_valid = TRUE", refreshToken).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Invalidate(ctx context.Context, accessToken string) error {
	// Deliberately not an error when nothing matches; logout is idempotent.
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("access_token = ?", accessToken).
		Update("is_valid", false).Error
}

func (r *sessionRepository) Rotate(ctx context.Context, id uuid.UUID, accessToken string, expiresAt time.Time) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token": accessToken,
			"expires_at":   expiresAt,
			"last_used_at": now,
		}).Error
}

func (r *sessionRepository) TouchLastUsed(ctx context.Context, accessToken string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("access_token = ?", accessToken).
		Update("last_used_at", time.Now()).Error
}
