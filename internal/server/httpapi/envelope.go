package httpapi

import (
	"errors"
	"sort"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope of every successful reply.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the envelope of every failed reply.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

const internalErrorMessage = "Something went wrong"

func respond(c *fiber.Ctx, status int, data any, message string) error {
	if data == nil {
		data = fiber.Map{}
	}
	return c.Status(status).JSON(Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < fiber.StatusBadRequest,
	})
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{common.ErrorBadRequest, fiber.StatusBadRequest},
	{common.ErrorInvalidCredentials, fiber.StatusBadRequest},
	{common.ErrorUnauthorized, fiber.StatusUnauthorized},
	{common.ErrorNotFound, fiber.StatusNotFound},
	{common.ErrorConflict, fiber.StatusConflict},
}

// errorHandler turns service errors into the failure envelope. Internal and
// unknown errors get a fixed message; their detail only goes to the log.
func errorHandler(logger logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := internalErrorMessage
		details := []string{}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		} else {
			for _, m := range statusBySentinel {
				if errors.Is(err, m.err) {
					status = m.status
					message = publicMessage(err, m.err)
					break
				}
			}
		}

		var verr validation.Errors
		if errors.As(err, &verr) {
			details = validationDetails(verr)
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}

		return c.Status(status).JSON(ErrorResponse{
			StatusCode: status,
			Message:    message,
			Success:    false,
			Errors:     details,
		})
	}
}

// publicMessage strips the sentinel suffix from a wrapped error, so
// "user does not exist: not found" becomes "user does not exist".
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimSuffix(msg, ": "+sentinel.Error()); trimmed != msg && trimmed != "" {
		return trimmed
	}
	return msg
}

func validationDetails(verr validation.Errors) []string {
	out := make([]string, 0, len(verr))
	for field, e := range verr {
		out = append(out, field+": "+e.Error())
	}
	sort.Strings(out)
	return out
}
