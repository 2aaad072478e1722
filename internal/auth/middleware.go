package auth

import (
	"strings"

	"fodi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const CtxSessionUserKey = "session_user"

func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Отсутствует заголовок Authorization")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Формат Authorization: 'Bearer <token>'")
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Токен недействителен или истёк")
		}

		session := SessionFromClaims(claims)
		c.Locals(CtxSessionUserKey, &session.User)
		return c.Next()
	}
}

// CurrentUser returns the caller placed on the request by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) (*SessionUser, error) {
	u, ok := c.Locals(CtxSessionUserKey).(*SessionUser)
	if !ok || u == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Требуется вход")
	}
	return u, nil
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := CurrentUser(c)
		if err != nil {
			return err
		}
		for _, r := range allowedRoles {
			if r == u.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Недостаточно прав")
	}
}
