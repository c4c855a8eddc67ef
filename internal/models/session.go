package models

import (
	"time"

	"gorm.io/gorm"
)

// Session is a server-side login session. Logging in removes every prior
// session of the user before inserting a new row, so at most one session is
// live per user at any time.
type Session struct {
	gorm.Model

	Token     string    `gorm:"uniqueIndex;not null"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
