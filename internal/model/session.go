package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionLifetime is how long a server-side session stays valid.
// Sessions are never revoked on their own; expired rows are removed by
// the taskctl sweep-sessions command.
const SessionLifetime = 7 * 24 * time.Hour

// Session is a store-backed proof of authentication. Its ID doubles as the
// opaque cookie value handed to browser clients.
type Session struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:char(36);not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets the opaque session ID before creating the record.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the session is no longer valid at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
