package auth

import (
	"context"
	"errors"
	"strings"

	"fodi-backend/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUser is the minimal identity carried by a session and threaded
// through request handlers.
type SessionUser struct {
	ID    uint            `json:"id"`
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Role  models.UserRole `json:"role"`
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type GormUserFinder struct {
	DB *gorm.DB
}

func (f GormUserFinder) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := f.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authorize checks a credentials grant. A nil result means the login is
// denied; the reason is only logged.
func Authorize(ctx context.Context, users UserFinder, creds Credentials) *SessionUser {
	email := strings.TrimSpace(strings.ToLower(creds.Email))
	log := zap.L().With(zap.String("email", email))

	if email == "" || creds.Password == "" {
		log.Info("authorize: missing email or password")
		return nil
	}

	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("authorize: user not found")
		} else {
			log.Error("authorize: user lookup failed", zap.Error(err))
		}
		return nil
	}

	if user.PasswordHash == "" {
		log.Warn("authorize: user has no password hash", zap.Uint("user_id", user.ID))
		return nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		log.Info("authorize: password mismatch", zap.Uint("user_id", user.ID))
		return nil
	}

	log.Info("authorize: success", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return &SessionUser{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}
