package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/blobstore"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
)

// MediaService replaces the avatar and cover image of an account.
type MediaService struct {
	repomanager repomanager.RepositoryManager
	blobs       BlobStore
	logger      logging.Logger
}

func NewMediaService(m repomanager.RepositoryManager, blobs BlobStore, logger logging.Logger) *MediaService {
	return &MediaService{repomanager: m, blobs: blobs, logger: logger}
}

// CreateOrReplaceImages uploads the provided images and points the account
// at them. Ordering:
//
//  1. all uploads finish before anything is deleted;
//  2. the account is saved with the URLs of the successful uploads;
//  3. only then are the assets they replace deleted.
//
// A failed upload keeps the previous URL and its asset. A failed deletion
// still leaves the new image in place but is reported as ErrorInternal.
func (s *MediaService) CreateOrReplaceImages(ctx context.Context, accountID string, files ImageFiles) (*models.Account, error) {
	if files.Empty() {
		return nil, fmt.Errorf("avatar or cover image file is missing: %w", common.ErrorBadRequest)
	}

	repo := s.repomanager.Accounts()
	account, err := repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("account not found: %w", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("find account: %w", common.ErrorInternal)
	}

	uploads := uploadImages(ctx, s.blobs, files)

	var (
		update models.AccountUpdate
		stale  []string
	)
	if r := uploads.avatar; r != nil {
		if r.OK() {
			url := r.Asset.URL
			update.AvatarURL = &url
			stale = appendID(stale, blobstore.AssetIDFromURL(account.AvatarURL))
		} else {
			s.logger.Warn(ctx, "avatar upload failed", "account_id", account.ID, "error", r.Err)
		}
	}
	if r := uploads.cover; r != nil {
		if r.OK() {
			url := r.Asset.URL
			update.CoverImageURL = &url
			stale = appendID(stale, blobstore.AssetIDFromURL(account.CoverImageURL))
		} else {
			s.logger.Warn(ctx, "cover image upload failed", "account_id", account.ID, "error", r.Err)
		}
	}

	if update.IsEmpty() {
		return nil, fmt.Errorf("error while uploading images: %w", common.ErrorInternal)
	}

	updated, err := repo.Update(ctx, account.ID, update)
	if err != nil {
		if derr := s.blobs.Delete(ctx, uploads.uploadedIDs()...); derr != nil {
			s.logger.Warn(ctx, "orphaned assets not deleted", "account_id", account.ID, "error", derr)
		}
		return nil, fmt.Errorf("save image urls: %w", common.ErrorInternal)
	}

	if len(stale) > 0 {
		if err := s.blobs.Delete(ctx, stale...); err != nil {
			s.logger.Error(ctx, "previous images not deleted", "account_id", account.ID, "ids", stale, "error", err)
			return updated.Public(), fmt.Errorf("error while deleting previous images: %w", common.ErrorInternal)
		}
	}

	return updated.Public(), nil
}

func appendID(ids []string, id string) []string {
	if id == "" {
		return ids
	}
	return append(ids, id)
}
