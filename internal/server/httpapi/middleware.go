package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

const (
	localsAccount   = "account"
	localsRequestID = "requestid"
)

// requestLogger puts the request id into the user context and logs every
// request after it was handled. Errors are passed to the error handler here
// so the logged status is the one sent.
func requestLogger(logger logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if id, ok := c.Locals(localsRequestID).(string); ok && id != "" {
			c.SetUserContext(logging.ContextWithRequestID(c.UserContext(), id))
		}

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().Config().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logger.Info(c.UserContext(), "HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"ip", c.IP(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start),
		)
		return nil
	}
}

// accessToken reads the access token from its cookie or from an
// "Authorization: Bearer" header.
func accessToken(c *fiber.Ctx) string {
	if t := c.Cookies(common.AccessTokenCookieName); t != "" {
		return t
	}
	h := c.Get(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// verifyJWT resolves the access token to an account and stores it in the
// request locals. Requests without a valid token end with 401.
func (h *handler) verifyJWT(c *fiber.Ctx) error {
	token := accessToken(c)
	if token == "" {
		return fmt.Errorf("unauthorized request: %w", common.ErrorUnauthorized)
	}

	claims, err := h.tokens.VerifyAccessToken(token)
	if err != nil {
		return fmt.Errorf("invalid access token: %w", common.ErrorUnauthorized)
	}

	account, err := h.accounts.CurrentAccount(c.UserContext(), claims.UserID)
	if err != nil {
		return err
	}

	c.Locals(localsAccount, account)
	return c.Next()
}

// currentAccount returns the account stored by verifyJWT.
func currentAccount(c *fiber.Ctx) (*models.Account, error) {
	a, ok := c.Locals(localsAccount).(*models.Account)
	if !ok || a == nil {
		return nil, fmt.Errorf("unauthorized request: %w", common.ErrorUnauthorized)
	}
	return a, nil
}
