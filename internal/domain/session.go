package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is one issued login for one device. A user accumulates one row per
// login; refresh rewrites the access token and expiry on the existing row,
// logout flips IsValid to false. Expired and invalidated rows are kept for an
// external pruning job to collect.
type Session struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	AccessToken  string     `json:"-" gorm:"uniqueIndex;not null"`
	RefreshToken string     `json:"-" gorm:"index;not null"`
	DeviceInfo   *string    `json:"deviceInfo"`
	IPAddress    string     `json:"ipAddress"`
	ExpiresAt    time.Time  `json:"expiresAt" gorm:"not null"`
	IsValid      bool       `json:"isValid" gorm:"not null;default:true"`
	LastUsedAt   *time.Time `json:"lastUsedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Active reports whether the session can still authenticate requests at t.
func (s *Session) Active(t time.Time) bool {
	return s.IsValid && s.ExpiresAt.After(t)
}
