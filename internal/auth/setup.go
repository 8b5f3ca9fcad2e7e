package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alleghenyre/propsearch/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Session{}); err != nil {
		return fmt.Errorf("migrate auth tables: %w", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account, or promotes an existing
// account with that email. The password of an existing account is left
// alone. Does nothing when email is empty.
func EnsureAdmin(db *gorm.DB, email, password string, log *zap.Logger) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	var existing User
	err := db.First(&existing, "email = ?", email).Error
	switch {
	case err == nil:
		if existing.Role == RoleAdmin {
			return nil
		}
		log.Info("Promoting bootstrap admin", zap.String("email", email))
		return db.Model(&existing).Update("role", RoleAdmin).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("look up admin: %w", err)
	}

	if len(password) < minPasswordLen {
		return fmt.Errorf("admin password must be at least %d characters", minPasswordLen)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := User{
		UserID:         utils.GenerateUUID(),
		Email:          email,
		HashedPassword: string(hashed),
		Role:           RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("Created bootstrap admin", zap.String("email", email))
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
