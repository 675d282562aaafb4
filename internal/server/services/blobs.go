package services

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/blobstore"
	"golang.org/x/sync/errgroup"
)

// BlobStore is what the workflows need from the blob store gateway.
// *blobstore.S3Store satisfies it.
type BlobStore interface {
	Upload(ctx context.Context, localPath string) blobstore.UploadResult
	Delete(ctx context.Context, ids ...string) error
}

// ImageFiles are local paths of staged uploads; "" means not provided.
type ImageFiles struct {
	AvatarPath     string
	CoverImagePath string
}

// Empty reports whether no file was provided.
func (f ImageFiles) Empty() bool {
	return f.AvatarPath == "" && f.CoverImagePath == ""
}

type imageUploads struct {
	avatar *blobstore.UploadResult
	cover  *blobstore.UploadResult
}

// uploadImages uploads the provided files concurrently and waits for all of
// them. A slot is nil when its file was not provided.
func uploadImages(ctx context.Context, blobs BlobStore, files ImageFiles) imageUploads {
	var (
		out imageUploads
		g   errgroup.Group
	)
	if files.AvatarPath != "" {
		g.Go(func() error {
			r := blobs.Upload(ctx, files.AvatarPath)
			out.avatar = &r
			return nil
		})
	}
	if files.CoverImagePath != "" {
		g.Go(func() error {
			r := blobs.Upload(ctx, files.CoverImagePath)
			out.cover = &r
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// uploadedIDs returns the asset ids of the successful uploads.
func (u imageUploads) uploadedIDs() []string {
	var ids []string
	for _, r := range []*blobstore.UploadResult{u.avatar, u.cover} {
		if r != nil && r.OK() {
			ids = append(ids, r.Asset.ID)
		}
	}
	return ids
}
