// Package middleware provides the fiber middleware guarding reviewer routes.
package middleware

import (
	"errors"

	"github.com/amirasaad/transfers/pkg/config"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtProtected validates the bearer token with the HS256 secret of cfg and
// stores it under the "user" local.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
		ContextKey:   "user",
	})
}

// RequireRole only lets through tokens whose "role" claim equals role. An
// empty role accepts any token JwtProtected accepted.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role == "" {
			return c.Next()
		}
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || !HasRole(token, role) {
			return c.Status(fiber.StatusForbidden).
				JSON(fiber.Map{"status": fiber.StatusForbidden, "message": "Reviewer role required", "data": nil})
		}
		return c.Next()
	}
}

// HasRole reports whether the token's "role" claim equals role.
func HasRole(token *jwt.Token, role string) bool {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	got, _ := claims["role"].(string)
	return got == role
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": fiber.StatusBadRequest, "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": fiber.StatusUnauthorized, "message": "Invalid or expired JWT", "data": nil})
}
