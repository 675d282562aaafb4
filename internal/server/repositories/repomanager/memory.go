package repomanager

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/accounts"
)

// MemoryRepositoryManager keeps all data in process memory. It is used by
// tests and by the "memory" storage driver for local runs.
type MemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{accounts: accounts.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
