package auth

import (
	"github.com/alleghenyre/propsearch/internal/utils"
	"gorm.io/gorm"
)

// SessionInfo looks sessions up for the session middleware.
type SessionInfo struct {
	DB *gorm.DB
}

func (si SessionInfo) FindSessionByID(id string) (utils.SessionData, error) {
	var session Session
	if err := si.DB.First(&session, "session_id = ?", id).Error; err != nil {
		return utils.SessionData{}, err
	}

	var user User
	if err := si.DB.Select("user_id", "role").First(&user, "user_id = ?", session.UserID).Error; err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		UserID:    session.UserID,
		Role:      user.Role,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
