package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWithImages(t *testing.T, f *fixture) *models.Account {
	t.Helper()
	a := f.register(t, "alice", "a@x.io", "pw")
	avatar := "http://blob.local/media/images/old-avatar.png"
	cover := "http://blob.local/media/images/old-cover.jpg"
	_, err := f.repo.Update(context.Background(), a.ID, models.AccountUpdate{AvatarURL: &avatar, CoverImageURL: &cover})
	require.NoError(t, err)
	return a
}

func TestCreateOrReplaceImages_NoFiles(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "alice", "a@x.io", "pw")

	_, err := f.media.CreateOrReplaceImages(context.Background(), a.ID, ImageFiles{})
	assert.True(t, errors.Is(err, common.ErrorBadRequest))
}

func TestCreateOrReplaceImages_ReplacesAfterUpload(t *testing.T) {
	f := newFixture(t)
	a := seedWithImages(t, f)

	got, err := f.media.CreateOrReplaceImages(context.Background(), a.ID, ImageFiles{AvatarPath: "/tmp/new.png"})
	require.NoError(t, err)

	assert.Equal(t, "http://blob.local/media/images/asset1.png", got.AvatarURL)
	assert.Equal(t, "http://blob.local/media/images/old-cover.jpg", got.CoverImageURL)
	assert.Equal(t, []string{"upload:/tmp/new.png", "delete:old-avatar"}, f.blobs.calls)
}

func TestCreateOrReplaceImages_BothUploadsBeforeAnyDelete(t *testing.T) {
	f := newFixture(t)
	a := seedWithImages(t, f)

	got, err := f.media.CreateOrReplaceImages(context.Background(), a.ID,
		ImageFiles{AvatarPath: "/tmp/a.png", CoverImagePath: "/tmp/c.png"})
	require.NoError(t, err)

	require.Len(t, f.blobs.calls, 4)
	assert.ElementsMatch(t, []string{"upload:/tmp/a.png", "upload:/tmp/c.png"}, f.blobs.calls[:2])
	assert.ElementsMatch(t, []string{"delete:old-avatar", "delete:old-cover"}, f.blobs.calls[2:])
	assert.NotContains(t, got.AvatarURL, "old-")
	assert.NotContains(t, got.CoverImageURL, "old-")
}

func TestCreateOrReplaceImages_FailedUploadKeepsOldAsset(t *testing.T) {
	f := newFixture(t)
	a := seedWithImages(t, f)
	f.blobs.failPaths["/tmp/bad.png"] = true

	_, err := f.media.CreateOrReplaceImages(context.Background(), a.ID, ImageFiles{AvatarPath: "/tmp/bad.png"})
	assert.True(t, errors.Is(err, common.ErrorInternal))
	assert.Empty(t, f.blobs.deleted)

	stored, err := f.repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://blob.local/media/images/old-avatar.png", stored.AvatarURL)
}

func TestCreateOrReplaceImages_PartialFailure(t *testing.T) {
	f := newFixture(t)
	a := seedWithImages(t, f)
	f.blobs.failPaths["/tmp/bad-cover.png"] = true

	got, err := f.media.CreateOrReplaceImages(context.Background(), a.ID,
		ImageFiles{AvatarPath: "/tmp/a.png", CoverImagePath: "/tmp/bad-cover.png"})
	require.NoError(t, err)

	assert.Equal(t, []string{"old-avatar"}, f.blobs.deleted)
	assert.NotContains(t, got.AvatarURL, "old-avatar")
	assert.Equal(t, "http://blob.local/media/images/old-cover.jpg", got.CoverImageURL)
}

func TestCreateOrReplaceImages_FirstImageNothingToDelete(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "alice", "a@x.io", "pw")

	got, err := f.media.CreateOrReplaceImages(context.Background(), a.ID, ImageFiles{CoverImagePath: "/tmp/c.png"})
	require.NoError(t, err)
	assert.NotEmpty(t, got.CoverImageURL)
	assert.Equal(t, []string{"upload:/tmp/c.png"}, f.blobs.calls)
}

func TestCreateOrReplaceImages_DeleteFailureStillPersists(t *testing.T) {
	f := newFixture(t)
	a := seedWithImages(t, f)
	f.blobs.deleteErr = errors.New("blob store down")

	_, err := f.media.CreateOrReplaceImages(context.Background(), a.ID, ImageFiles{AvatarPath: "/tmp/new.png"})
	assert.True(t, errors.Is(err, common.ErrorInternal))

	stored, err := f.repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://blob.local/media/images/asset1.png", stored.AvatarURL)
}

func TestCreateOrReplaceImages_SaveFailureDiscardsNewUploads(t *testing.T) {
	f := newFixture(t)
	a := seedWithImages(t, f)
	f.repo.updateErr = errors.New("db down")

	_, err := f.media.CreateOrReplaceImages(context.Background(), a.ID, ImageFiles{AvatarPath: "/tmp/new.png"})
	assert.True(t, errors.Is(err, common.ErrorInternal))
	assert.Equal(t, []string{"asset1"}, f.blobs.deleted, "old assets survive, the orphan is removed")
}

func TestCreateOrReplaceImages_UnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.media.CreateOrReplaceImages(context.Background(), "missing", ImageFiles{AvatarPath: "/tmp/a.png"})
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))
	assert.Empty(t, f.blobs.calls)
}
