package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/blobstore"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/accounts"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type fakeManager struct {
	repo accounts.Repository
}

func (m *fakeManager) RunMigrations(context.Context) error { return nil }
func (m *fakeManager) Accounts() accounts.Repository       { return m.repo }
func (m *fakeManager) Close(context.Context) error         { return nil }

// faultyRepo wraps a working repository and fails selected calls.
type faultyRepo struct {
	accounts.Repository
	createErr   error
	findByIDErr error
	findCalls   int
	failFindAt  int
	updateErr   error
	setTokenErr error
	swapErr     error
}

func (r *faultyRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.Repository.Create(ctx, a)
}

func (r *faultyRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	r.findCalls++
	if r.findByIDErr != nil && (r.failFindAt == 0 || r.failFindAt == r.findCalls) {
		return nil, r.findByIDErr
	}
	return r.Repository.FindByID(ctx, id)
}

func (r *faultyRepo) Update(ctx context.Context, id string, u models.AccountUpdate) (*models.Account, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	return r.Repository.Update(ctx, id, u)
}

func (r *faultyRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	if r.setTokenErr != nil {
		return r.setTokenErr
	}
	return r.Repository.SetRefreshToken(ctx, id, token)
}

func (r *faultyRepo) SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	if r.swapErr != nil {
		return false, r.swapErr
	}
	return r.Repository.SwapRefreshToken(ctx, id, current, next)
}

// fakeBlobs records calls in order. Paths listed in failPaths fail to upload.
type fakeBlobs struct {
	mu        sync.Mutex
	failPaths map[string]bool
	deleteErr error
	calls     []string
	deleted   []string
	n         int
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{failPaths: map[string]bool{}} }

func (b *fakeBlobs) Upload(_ context.Context, localPath string) blobstore.UploadResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "upload:"+localPath)
	if b.failPaths[localPath] {
		return blobstore.UploadResult{Err: errors.New("upload failed")}
	}
	b.n++
	id := fmt.Sprintf("asset%d", b.n)
	return blobstore.UploadResult{Asset: &blobstore.Asset{
		ID:  id,
		URL: "http://blob.local/media/images/" + id + ".png",
		Key: "images/" + id + ".png",
	}}
}

func (b *fakeBlobs) Delete(_ context.Context, ids ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.calls = append(b.calls, "delete:"+id)
	}
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.deleted = append(b.deleted, ids...)
	return nil
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:            "access-k",
		RefreshTokenSecret:           "refresh-k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 24 * time.Hour,
	}
}

type fixture struct {
	repo     *faultyRepo
	blobs    *fakeBlobs
	tokens   *TokenService
	sessions *SessionService
	accounts *AccountService
	media    *MediaService
	hasher   *auth.PasswordHasher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := &faultyRepo{Repository: accounts.NewMemoryRepository()}
	m := &fakeManager{repo: repo}
	blobs := newFakeBlobs()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	logger := discardLogger()
	tokens := NewTokenService(m, testConfig())

	return &fixture{
		repo:     repo,
		blobs:    blobs,
		tokens:   tokens,
		sessions: NewSessionService(m, tokens, hasher, logger),
		accounts: NewAccountService(m, hasher, blobs, logger),
		media:    NewMediaService(m, blobs, logger),
		hasher:   hasher,
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) *models.Account {
	t.Helper()
	a, err := f.accounts.Register(context.Background(), RegisterInput{
		FullName: "Full " + username, Email: email, Username: username, Password: password,
	}, ImageFiles{})
	require.NoError(t, err)
	return a
}
