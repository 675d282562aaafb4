// Package httpapi exposes the account workflows over HTTP using fiber.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// Services groups the workflows served by the HTTP API.
type Services struct {
	Accounts *services.AccountService
	Sessions *services.SessionService
	Media    *services.MediaService
	Tokens   *services.TokenService
}

type HTTPServer struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

// NewHTTPServer builds the fiber application. uploadDir must exist; multipart
// files are staged there before they are handed to the blob store.
func NewHTTPServer(cfg *config.Config, uploadDir string, l logging.Logger, svc Services) *HTTPServer {
	logger := l.With("module", "http_server")

	app := fiber.New(fiber.Config{
		AppName:               "profilekeeper",
		BodyLimit:             cfg.MaxUploadBytes,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(requestid.New(requestid.Config{ContextKey: localsRequestID}))
	app.Use(requestLogger(logger))
	app.Use(recover.New())
	app.Use(cors.New(corsConfig(cfg.CorsOrigin)))

	h := &handler{
		accounts:   svc.Accounts,
		sessions:   svc.Sessions,
		media:      svc.Media,
		tokens:     svc.Tokens,
		uploadDir:  uploadDir,
		accessTTL:  cfg.AccessTokenValidityDuration,
		refreshTTL: cfg.RefreshTokenValidityDuration,
		logger:     logger,
	}
	h.register(app)

	return &HTTPServer{address: cfg.EndpointAddrHTTP, app: app, logger: logger}
}

func corsConfig(origin string) cors.Config {
	if origin == "" {
		return cors.ConfigDefault
	}
	return cors.Config{
		AllowOrigins:     origin,
		AllowCredentials: true,
	}
}

func (h *handler) register(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return respond(c, fiber.StatusOK, fiber.Map{"status": "ok"}, "OK")
	})

	users := app.Group("/api/v1/users")
	users.Post("/register", h.registerUser)
	users.Post("/login", h.loginUser)
	users.Post("/refresh-token", h.refreshAccessToken)

	users.Post("/logout", h.verifyJWT, h.logoutUser)
	users.Post("/change-password", h.verifyJWT, h.changePassword)
	users.Get("/current-user", h.verifyJWT, h.getCurrentUser)
	users.Post("/update-account", h.verifyJWT, h.updateAccountDetails)
	users.Post("/update-user-images", h.verifyJWT, h.updateUserImages)
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}
