package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries the text fields of a registration request.
type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
}

// Validate checks that every field is present once surrounding blanks are
// trimmed.
func (in RegisterInput) Validate() error {
	t := in.trimmed()
	return validation.ValidateStruct(&t,
		validation.Field(&t.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&t.Email, validation.Required, validation.Length(3, 254)),
		validation.Field(&t.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&t.Password, validation.Required, validation.By(fitsBcrypt)),
	)
}

// fitsBcrypt limits a password to what bcrypt can hash. The limit is in
// bytes; validation.Length counts runes.
func fitsBcrypt(value any) error {
	if p, _ := value.(string); len(p) > auth.MaxPasswordBytes {
		return fmt.Errorf("must be no more than %d bytes long", auth.MaxPasswordBytes)
	}
	return nil
}

func (in RegisterInput) trimmed() RegisterInput {
	return RegisterInput{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Username: strings.TrimSpace(in.Username),
		Password: strings.TrimSpace(in.Password),
	}
}

// AccountService registers accounts and edits their text details.
type AccountService struct {
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	blobs       BlobStore
	logger      logging.Logger
}

func NewAccountService(m repomanager.RepositoryManager, hasher *auth.PasswordHasher, blobs BlobStore, logger logging.Logger) *AccountService {
	return &AccountService{repomanager: m, hasher: hasher, blobs: blobs, logger: logger}
}

// Register creates an account. Image uploads are best effort: a failed
// upload leaves the URL empty. If the store rejects the account as a
// duplicate, the images uploaded for it are deleted again.
func (s *AccountService) Register(ctx context.Context, in RegisterInput, files ImageFiles) (*models.Account, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorBadRequest, err)
	}

	repo := s.repomanager.Accounts()
	username := strings.ToLower(strings.TrimSpace(in.Username))

	exists, err := repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", common.ErrorInternal)
	}
	if exists {
		return nil, fmt.Errorf("user with username already exists: %w", common.ErrorConflict)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("password is too long: %w", common.ErrorBadRequest)
		}
		return nil, fmt.Errorf("hash password: %w", common.ErrorInternal)
	}

	uploads := uploadImages(ctx, s.blobs, files)
	account := &models.Account{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
	}
	if uploads.avatar != nil {
		account.AvatarURL = uploads.avatar.URL()
	}
	if uploads.cover != nil {
		account.CoverImageURL = uploads.cover.URL()
	}

	created, err := repo.Create(ctx, account)
	if err != nil {
		s.discard(ctx, uploads.uploadedIDs())
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("user with username or email already exists: %w", common.ErrorConflict)
		}
		return nil, fmt.Errorf("create account: %w", common.ErrorInternal)
	}

	stored, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("something went wrong while registering the user: %w", common.ErrorInternal)
	}

	s.logger.Info(ctx, "user registered", "account_id", stored.ID, "username", stored.Username)
	return stored.Public(), nil
}

// CurrentAccount returns the public view of the account.
func (s *AccountService) CurrentAccount(ctx context.Context, accountID string) (*models.Account, error) {
	a, err := s.repomanager.Accounts().FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("account not found: %w", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("find account: %w", common.ErrorInternal)
	}
	return a.Public(), nil
}

// UpdateDetails changes full name and/or email; nil leaves a field as is.
// Emails are stored lowercase.
func (s *AccountService) UpdateDetails(ctx context.Context, accountID string, fullName, email *string) (*models.Account, error) {
	var u models.AccountUpdate
	if fullName != nil {
		if v := strings.TrimSpace(*fullName); v != "" {
			u.FullName = &v
		}
	}
	if email != nil {
		if v := strings.ToLower(strings.TrimSpace(*email)); v != "" {
			u.Email = &v
		}
	}
	if u.IsEmpty() {
		return nil, fmt.Errorf("full name or email is required: %w", common.ErrorBadRequest)
	}

	a, err := s.repomanager.Accounts().Update(ctx, accountID, u)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorConflict):
			return nil, fmt.Errorf("email is already in use: %w", common.ErrorConflict)
		case errors.Is(err, common.ErrorNotFound):
			return nil, fmt.Errorf("account not found: %w", common.ErrorUnauthorized)
		default:
			return nil, fmt.Errorf("update account: %w", common.ErrorInternal)
		}
	}
	return a.Public(), nil
}

// discard deletes assets that ended up unreferenced.
func (s *AccountService) discard(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := s.blobs.Delete(ctx, ids...); err != nil {
		s.logger.Warn(ctx, "orphaned assets not deleted", "ids", ids, "error", err)
	}
}
