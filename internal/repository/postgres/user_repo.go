package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lonepengu/backend/internal/domain"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

// CreateIfAbsent relies on the unique index on email: two concurrent
// first-time logins for the same address cannot both insert, and the loser
// sees created=false instead of a constraint error.
func (r *userRepository) CreateIfAbsent(ctx context.Context, user *domain.User) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(user)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) TouchLogin(ctx context.Context, id uuid.UUID, name, avatarURL *string) error {
	updates := map[string]interface{}{
		"last_login": time.Now(),
	}
	if name != nil {
		updates["name"] = *name
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}

	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL *string, metadata datatypes.JSON) (*domain.User, error) {
	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}
	if metadata != nil {
		updates["metadata"] = metadata
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&domain.User{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	return r.GetByID(ctx, id)
}
