package httpapi

import (
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func sessionCookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
	}
}

func (h *handler) setSessionCookies(c *fiber.Ctx, pair *services.TokenPair) {
	now := time.Now()
	c.Cookie(sessionCookie(common.AccessTokenCookieName, pair.AccessToken, now.Add(h.accessTTL)))
	c.Cookie(sessionCookie(common.RefreshTokenCookieName, pair.RefreshToken, now.Add(h.refreshTTL)))
}

// clearSessionCookies overwrites both cookies with empty, already expired values.
func clearSessionCookies(c *fiber.Ctx) {
	expired := time.Unix(0, 0)
	c.Cookie(sessionCookie(common.AccessTokenCookieName, "", expired))
	c.Cookie(sessionCookie(common.RefreshTokenCookieName, "", expired))
}
