package auth

import (
	"strings"
	"time"

	"fodi-backend/internal/config"
	"fodi-backend/internal/database"
	"fodi-backend/internal/metrics"
	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string      `json:"token"`
	Expires time.Time   `json:"expires"`
	User    SessionUser `json:"user"`
}

// POST /api/auth/register-admin creates the first admin. Refused once any
// admin exists.
func RegisterAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Имя, email и пароль обязательны")
		}

		var count int64
		if err := database.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось проверить администраторов")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Администратор уже существует")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось захешировать пароль")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось создать пользователя")
		}

		zap.L().Info("admin registered", zap.Uint("user_id", user.ID))
		return c.Status(fiber.StatusCreated).JSON(SessionUser{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, users UserFinder) fiber.Handler {
	maxAge := time.Duration(cfg.SessionMaxAgeDays) * 24 * time.Hour

	return func(c *fiber.Ctx) error {
		var creds Credentials
		if err := c.BodyParser(&creds); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}

		user := Authorize(c.UserContext(), users, creds)
		if user == nil {
			metrics.LoginAttempts.WithLabelValues("denied").Inc()
			return fiber.NewError(fiber.StatusUnauthorized, "Неверный email или пароль")
		}

		token, expires, err := TokenFromUser(cfg.JWTSecret, user, maxAge, time.Now())
		if err != nil {
			metrics.LoginAttempts.WithLabelValues("error").Inc()
			return fiber.NewError(fiber.StatusInternalServerError, "Не удалось создать токен")
		}

		metrics.LoginAttempts.WithLabelValues("success").Inc()
		return c.JSON(LoginResponse{Token: token, Expires: expires, User: *user})
	}
}

// GET /api/auth/session
func SessionHandler(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.SplitN(c.Get("Authorization"), " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Требуется вход")
		}
		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Токен недействителен или истёк")
		}
		return c.JSON(SessionFromClaims(claims))
	}
}

// GET /api/auth/redirect?callbackUrl=...
func RedirectHandler(baseURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"url": ResolveRedirect(c.Query("callbackUrl"), baseURL),
		})
	}
}
