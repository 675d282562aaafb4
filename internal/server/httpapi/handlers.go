package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type handler struct {
	accounts   *services.AccountService
	sessions   *services.SessionService
	media      *services.MediaService
	tokens     *services.TokenService
	uploadDir  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     logging.Logger
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" form:"usernameOrEmail"`
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
}

func (r loginRequest) identifier() string {
	for _, v := range []string{r.UsernameOrEmail, r.Username, r.Email} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type updateAccountRequest struct {
	FullName *string `json:"fullName" form:"fullName"`
	Email    *string `json:"email" form:"email"`
}

type loginResponse struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("invalid request body: %w", common.ErrorBadRequest)
	}
	return nil
}

func (h *handler) registerUser(c *fiber.Ctx) error {
	files, cleanup, err := h.stageImages(c)
	defer cleanup()
	if err != nil {
		return err
	}

	in := services.RegisterInput{
		FullName: c.FormValue("fullName"),
		Email:    c.FormValue("email"),
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}

	account, err := h.accounts.Register(c.UserContext(), in, files)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, account, "User created successfully!")
}

func (h *handler) loginUser(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	account, pair, err := h.sessions.Login(c.UserContext(), req.identifier(), req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, pair)
	return respond(c, fiber.StatusOK, loginResponse{
		User:         account,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
}

func (h *handler) logoutUser(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Logout(c.UserContext(), account.ID); err != nil {
		return err
	}

	clearSessionCookies(c)
	return respond(c, fiber.StatusOK, nil, "User logged out")
}

func (h *handler) refreshAccessToken(c *fiber.Ctx) error {
	token := c.Cookies(common.RefreshTokenCookieName)
	if token == "" && len(c.Body()) > 0 {
		var req refreshRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		token = strings.TrimSpace(req.RefreshToken)
	}

	pair, err := h.sessions.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}

	h.setSessionCookies(c, pair)
	return respond(c, fiber.StatusOK, pair, "Access token refreshed")
}

func (h *handler) changePassword(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.sessions.ChangePassword(c.UserContext(), account.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, nil, "Password changed successfully")
}

func (h *handler) getCurrentUser(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, account, "Current user fetched successfully")
}

func (h *handler) updateAccountDetails(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	updated, err := h.accounts.UpdateDetails(c.UserContext(), account.ID, req.FullName, req.Email)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "Account details updated successfully")
}

func (h *handler) updateUserImages(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}

	files, cleanup, err := h.stageImages(c)
	defer cleanup()
	if err != nil {
		return err
	}

	updated, err := h.media.CreateOrReplaceImages(c.UserContext(), account.ID, files)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, updated, "Images updated successfully")
}
