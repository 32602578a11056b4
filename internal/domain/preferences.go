package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserPreferences struct {
	UserID               uuid.UUID      `json:"userId" gorm:"type:uuid;primary_key"`
	ThemeMode            string         `json:"themeMode" gorm:"not null;default:'system'"`
	NotificationsEnabled bool           `json:"notificationsEnabled" gorm:"not null;default:true"`
	EmailNotifications   bool           `json:"emailNotifications" gorm:"not null;default:true"`
	LastActiveRoute      *string        `json:"lastActiveRoute"`
	AppState             datatypes.JSON `json:"appState"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

// DefaultPreferences returns the row seeded for a newly created user.
func DefaultPreferences(userID uuid.UUID) *UserPreferences {
	return &UserPreferences{
		UserID:               userID,
		ThemeMode:            "system",
		NotificationsEnabled: true,
		EmailNotifications:   true,
	}
}
