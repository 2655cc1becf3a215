// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/token"

	"github.com/gofiber/fiber/v2"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// setAuthenticatedUser stores the user ID in Fiber locals and syncs it into
// the user context for logging and downstream services.
func setAuthenticatedUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}

// AuthRequired returns middleware that enforces a valid access token.
func AuthRequired(issuer *token.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		userID, err := issuer.VerifyAccessToken(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewInvalidTokenError("Invalid or expired token"))
		}

		setAuthenticatedUser(c, userID)
		return c.Next()
	}
}

// OptionalAuth returns middleware that resolves the user ID when a valid
// access token is presented but lets anonymous requests through. Public
// read paths use this so owners and moderators can see their own
// unpublished content.
func OptionalAuth(issuer *token.Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return c.Next()
		}

		userID, err := issuer.VerifyAccessToken(raw)
		if err != nil {
			// A presented-but-invalid token is rejected rather than treated
			// as anonymous, so expired sessions surface to the client.
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewInvalidTokenError("Invalid or expired token"))
		}

		setAuthenticatedUser(c, userID)
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID from locals, or 0 when
// the request is anonymous.
func CurrentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}
