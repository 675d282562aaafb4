// Package accounts persists user accounts. Three backends share one
// contract: PostgreSQL, MongoDB and an in-memory store.
//
// Implementations return common.ErrorNotFound for absent records and
// common.ErrorConflict when a username or email is already taken.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

type Repository interface {
	// Create stores a new account. An empty ID is replaced by a fresh UUID.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	// FindByUsernameOrEmail returns the account whose username equals
	// username or whose email equals email.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Update merges the non-nil fields of u and returns the stored record.
	Update(ctx context.Context, id string, u models.AccountUpdate) (*models.Account, error)
	// SetRefreshToken overwrites the stored refresh token; "" clears it.
	SetRefreshToken(ctx context.Context, id, token string) error
	// SwapRefreshToken replaces current with next only if current is still
	// the stored token. It reports whether the swap happened.
	SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error)
}
