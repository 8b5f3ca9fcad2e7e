package auth

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	// SessionTTL is how long a login stays valid.
	SessionTTL = 6 * time.Hour

	CookieName = "session_id"
)

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
}

type User struct {
	UserID         string    `gorm:"primaryKey" json:"user_id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"not null" json:"-"`
	Role           string    `gorm:"default:'user';not null" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Session) TableName() string { return "sessions" }
func (User) TableName() string    { return "users" }
