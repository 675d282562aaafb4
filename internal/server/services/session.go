package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
)

// SessionService drives the login, logout, refresh and password change
// flows on top of TokenService and the account repository.
type SessionService struct {
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
	hasher      *auth.PasswordHasher
	logger      logging.Logger
}

func NewSessionService(m repomanager.RepositoryManager, tokens *TokenService, hasher *auth.PasswordHasher, logger logging.Logger) *SessionService {
	return &SessionService{repomanager: m, tokens: tokens, hasher: hasher, logger: logger}
}

// Login looks the account up by lowercase username or email and checks
// the password. It returns ErrorNotFound when nothing matches and
// ErrorUnauthorized on a wrong password.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (*models.Account, *TokenPair, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, nil, fmt.Errorf("username or email and password are required: %w", common.ErrorBadRequest)
	}

	identifier = strings.ToLower(identifier)
	account, err := s.repomanager.Accounts().FindByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, fmt.Errorf("user does not exist: %w", common.ErrorNotFound)
		}
		return nil, nil, fmt.Errorf("find account: %w", common.ErrorInternal)
	}

	ok, err := s.hasher.Compare(account.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "password hash check failed", "account_id", account.ID, "error", err)
		return nil, nil, fmt.Errorf("compare password: %w", common.ErrorInternal)
	}
	if !ok {
		return nil, nil, fmt.Errorf("invalid user credentials: %w", common.ErrorUnauthorized)
	}

	pair, err := s.tokens.IssueTokenPair(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "user logged in", "account_id", account.ID)
	return account.Public(), pair, nil
}

// Logout forgets the stored refresh token of the account.
func (s *SessionService) Logout(ctx context.Context, accountID string) error {
	if err := s.repomanager.Accounts().SetRefreshToken(ctx, accountID, ""); err != nil {
		return fmt.Errorf("clear refresh token: %w", common.ErrorInternal)
	}
	s.logger.Info(ctx, "user logged out", "account_id", accountID)
	return nil
}

// Refresh validates presented against the stored refresh token and rotates
// the pair. Every failure is ErrorUnauthorized except store errors.
func (s *SessionService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, fmt.Errorf("refresh token is missing: %w", common.ErrorUnauthorized)
	}

	accountID, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts().FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("invalid refresh token: %w", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("find account: %w", common.ErrorInternal)
	}

	if account.RefreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(account.RefreshToken), []byte(presented)) != 1 {
		s.logger.Warn(ctx, "stale refresh token presented", "account_id", account.ID)
		return nil, fmt.Errorf("refresh token is expired or used: %w", common.ErrorUnauthorized)
	}

	return s.tokens.RotateTokenPair(ctx, account, presented)
}

// ChangePassword replaces the password hash after checking oldPassword.
func (s *SessionService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	repo := s.repomanager.Accounts()

	account, err := repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("account not found: %w", common.ErrorUnauthorized)
		}
		return fmt.Errorf("find account: %w", common.ErrorInternal)
	}

	ok, err := s.hasher.Compare(account.PasswordHash, oldPassword)
	if err != nil {
		return fmt.Errorf("compare password: %w", common.ErrorInternal)
	}
	if !ok {
		return fmt.Errorf("invalid old password: %w", common.ErrorInvalidCredentials)
	}

	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("new password is required: %w", common.ErrorBadRequest)
	}
	if len(newPassword) > auth.MaxPasswordBytes {
		return fmt.Errorf("new password must be no more than %d bytes long: %w", auth.MaxPasswordBytes, common.ErrorBadRequest)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", common.ErrorInternal)
	}
	if _, err := repo.Update(ctx, account.ID, models.AccountUpdate{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("store password: %w", common.ErrorInternal)
	}
	return nil
}
