package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuthProvider is the upstream identity source asserted at login.
type AuthProvider string

const (
	ProviderGoogle AuthProvider = "google"
	ProviderEmail  AuthProvider = "email"
	ProviderApple  AuthProvider = "apple"
)

// ValidProvider reports whether p is one of the accepted auth providers.
func ValidProvider(p AuthProvider) bool {
	switch p {
	case ProviderGoogle, ProviderEmail, ProviderApple:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	Name         *string        `json:"name"`
	AuthProvider AuthProvider   `json:"authProvider" gorm:"not null"`
	ProviderID   *string        `json:"providerId"`
	AvatarURL    *string        `json:"avatarUrl"`
	Metadata     datatypes.JSON `json:"metadata"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastLogin    time.Time      `json:"lastLogin"`
}
