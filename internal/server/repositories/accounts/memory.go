package accounts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in a map and enforces the same unique
// constraints as the database backends. Returned records are copies.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]models.Account)}
}

func (r *MemoryRepository) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if _, ok := r.accounts[account.ID]; ok {
		return nil, fmt.Errorf("id: %w", common.ErrorConflict)
	}
	if err := r.checkUnique(account.ID, account.Username, account.Email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.ID] = *account

	c := *account
	return &c, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.Username == username {
			return &a, nil
		}
	}
	for _, a := range r.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, u models.AccountUpdate) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.Email != nil {
		if err := r.checkUnique(id, "", *u.Email); err != nil {
			return nil, err
		}
	}

	u.Apply(&a)
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return &a, nil
}

func (r *MemoryRepository) SetRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.RefreshToken = token
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return nil
}

func (r *MemoryRepository) SwapRefreshToken(_ context.Context, id, current, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || current == "" || a.RefreshToken != current {
		return false, nil
	}
	a.RefreshToken = next
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return true, nil
}

// checkUnique must be called with mu held. Empty values are not checked.
func (r *MemoryRepository) checkUnique(selfID, username, email string) error {
	for id, a := range r.accounts {
		if id == selfID {
			continue
		}
		if username != "" && a.Username == username {
			return fmt.Errorf("username: %w", common.ErrorConflict)
		}
		if email != "" && a.Email == email {
			return fmt.Errorf("email: %w", common.ErrorConflict)
		}
	}
	return nil
}
