package auth

import (
	"errors"
	"time"

	"github.com/delta/research-portal/internal/models"
	"gorm.io/gorm"
)

// SessionDuration is how long a login session stays valid.
const SessionDuration = 7 * 24 * time.Hour

const sessionTokenLength = 32

var ErrInvalidSession = errors.New("invalid or expired session")

// CreateSession removes every existing session of the user and inserts a
// fresh one. The delete must land before the insert so that at most one
// session is live per user; concurrent logins resolve last-writer-wins.
func CreateSession(db *gorm.DB, userID uint) (*models.Session, error) {
	session := models.Session{
		Token:     GenerateToken(sessionTokenLength),
		UserID:    userID,
		ExpiresAt: time.Now().Add(SessionDuration),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Create(&session).Error
	})

	if err != nil {
		return nil, err
	}

	return &session, nil
}

// LookupSession resolves a session token to its user. The session row must
// exist, be unexpired, and still point at an existing user.
func LookupSession(db *gorm.DB, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	var session models.Session

	if err := db.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, ErrInvalidSession
	}

	var user models.User

	if err := db.First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	return &user, nil
}

// DeleteSessions removes every session of the user.
func DeleteSessions(db *gorm.DB, userID uint) error {
	return db.Unscoped().Where("user_id = ?", userID).Delete(&models.Session{}).Error
}
