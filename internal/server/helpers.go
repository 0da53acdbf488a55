package server

import (
	"time"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

const sessionCookieName = "token"

// parseID reads a positive numeric route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + name + " parameter")
	}
	return uint(id), nil
}

// parsePagination reads limit/offset query parameters with sane bounds.
func parsePagination(c *fiber.Ctx, defaultLimit int) (limit, offset int) {
	limit = c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// sendSessionToken issues a session token for user, sets it as the session
// cookie, and writes the standard auth envelope. The cookie's lifetime is
// configured separately from the token's own validity window.
func (s *Server) sendSessionToken(c *fiber.Ctx, user *models.User, status int, message string) error {
	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    tok,
		Expires:  time.Now().Add(time.Duration(s.config.CookieExpireDays) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"token":   tok,
		"user":    user,
	})
}

// clearSessionCookie expires the session cookie with attributes matching the
// ones it was set with, so browsers actually drop it.
func clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
