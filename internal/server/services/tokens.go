// Package services contains server-side business logic. This file implements
// TokenService, which mints access/refresh JWTs and keeps the single active
// refresh token of every account in the repository.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenService struct {
	repomanager                  repomanager.RepositoryManager
	accessSecret                 []byte
	refreshSecret                []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewTokenService constructs a TokenService using repositories and server config.
func NewTokenService(m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{
		repomanager:                  m,
		accessSecret:                 []byte(cfg.AccessTokenSecret),
		refreshSecret:                []byte(cfg.RefreshTokenSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// IssueAccessToken signs the account id together with its public identity.
func (s *TokenService) IssueAccessToken(a *models.Account) (string, error) {
	claims := auth.Claims{UserID: a.ID, Username: a.Username, Email: a.Email, FullName: a.FullName}
	return auth.GenerateToken(claims, auth.AudienceAccess, s.accessSecret, s.accessTokenValidityDuration)
}

// IssueRefreshToken signs the account id only.
func (s *TokenService) IssueRefreshToken(a *models.Account) (string, error) {
	return auth.GenerateToken(auth.Claims{UserID: a.ID}, auth.AudienceRefresh, s.refreshSecret, s.refreshTokenValidityDuration)
}

// IssueTokenPair loads the account, mints a pair and stores the refresh
// token, invalidating whatever refresh token was stored before.
func (s *TokenService) IssueTokenPair(ctx context.Context, accountID string) (*TokenPair, error) {
	repo := s.repomanager.Accounts()

	account, err := repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", common.ErrorInternal)
	}

	pair, err := s.mint(account)
	if err != nil {
		return nil, err
	}

	if err := repo.SetRefreshToken(ctx, account.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", common.ErrorInternal)
	}
	return pair, nil
}

// RotateTokenPair replaces presented with a fresh pair. The store swaps the
// token only if presented is still current, so of two concurrent rotations
// with the same token exactly one succeeds; the other gets ErrorUnauthorized.
func (s *TokenService) RotateTokenPair(ctx context.Context, account *models.Account, presented string) (*TokenPair, error) {
	pair, err := s.mint(account)
	if err != nil {
		return nil, err
	}

	swapped, err := s.repomanager.Accounts().SwapRefreshToken(ctx, account.ID, presented, pair.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", common.ErrorInternal)
	}
	if !swapped {
		return nil, fmt.Errorf("refresh token already used: %w", common.ErrorUnauthorized)
	}
	return pair, nil
}

// VerifyRefreshToken checks signature, expiry and audience of a refresh
// token and returns the account id it was issued for.
func (s *TokenService) VerifyRefreshToken(token string) (string, error) {
	id, err := auth.GetUserIDFromToken(token, auth.AudienceRefresh, s.refreshSecret)
	if err != nil {
		return "", unauthorized(err)
	}
	return id, nil
}

// VerifyAccessToken checks an access token and returns its claims.
func (s *TokenService) VerifyAccessToken(token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, auth.AudienceAccess, s.accessSecret)
	if err != nil {
		return nil, unauthorized(err)
	}
	return claims, nil
}

func (s *TokenService) mint(a *models.Account) (*TokenPair, error) {
	access, err := s.IssueAccessToken(a)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", common.ErrorInternal)
	}
	refresh, err := s.IssueRefreshToken(a)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", common.ErrorInternal)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func unauthorized(err error) error {
	if errors.Is(err, common.ErrTokenExpired) {
		return fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenExpired)
	}
	return fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrInvalidToken)
}
