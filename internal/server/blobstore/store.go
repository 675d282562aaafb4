// Package blobstore stores profile images in an S3-compatible bucket and
// addresses them by the asset id embedded in their public URL.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/google/uuid"
)

// ErrNoFile is reported for an upload without a local file.
var ErrNoFile = errors.New("no file to upload")

// ObjectAPI is the part of *s3.Client the store needs.
type ObjectAPI interface {
	manager.UploadAPIClient
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Asset is a stored object. ID is the last URL path segment without its
// extension.
type Asset struct {
	ID  string
	URL string
	Key string
}

// UploadResult is the outcome of one upload: exactly one of Asset and Err
// is set.
type UploadResult struct {
	Asset *Asset
	Err   error
}

// OK reports whether the upload succeeded.
func (r UploadResult) OK() bool { return r.Err == nil && r.Asset != nil }

// URL returns the asset URL or "" for a failed upload.
func (r UploadResult) URL() string {
	if !r.OK() {
		return ""
	}
	return r.Asset.URL
}

type S3Store struct {
	client        ObjectAPI
	uploader      *manager.Uploader
	bucket        string
	prefix        string
	publicBaseURL string
	logger        logging.Logger
}

// NewS3Store returns a store writing into bucket under prefix. Public URLs
// are publicBaseURL + "/" + key.
func NewS3Store(client ObjectAPI, bucket, prefix, publicBaseURL string, logger logging.Logger) *S3Store {
	return &S3Store{
		client:        client,
		uploader:      manager.NewUploader(client),
		bucket:        bucket,
		prefix:        strings.Trim(prefix, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// Upload sends the file at localPath to the bucket under a fresh id. The
// local file is removed on every path, whether the upload succeeded or not.
func (s *S3Store) Upload(ctx context.Context, localPath string) (res UploadResult) {
	if localPath == "" {
		return UploadResult{Err: ErrNoFile}
	}
	defer func() {
		if err := filex.Remove(localPath); err != nil {
			s.logger.Warn(ctx, "temp file cleanup failed", "path", localPath, "error", err)
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return UploadResult{Err: fmt.Errorf("open upload: %w", err)}
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(localPath))
	id := uuid.NewString()
	key := path.Join(s.prefix, id+ext)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		s.logger.Warn(ctx, "upload failed", "key", key, "error", err)
		return UploadResult{Err: fmt.Errorf("upload %s: %w", key, err)}
	}

	return UploadResult{Asset: &Asset{ID: id, URL: s.publicBaseURL + "/" + key, Key: key}}
}

// Delete removes the objects with the given asset ids. Empty ids are
// skipped and unknown ids are not an error.
func (s *S3Store) Delete(ctx context.Context, ids ...string) error {
	var objects []types.ObjectIdentifier
	for _, id := range ids {
		if id == "" {
			continue
		}
		keys, err := s.keysFor(ctx, id)
		if err != nil {
			return err
		}
		for _, k := range keys {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}
	}
	if len(objects) == 0 {
		return nil
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	if len(out.Errors) > 0 {
		errs := make([]error, 0, len(out.Errors))
		for _, e := range out.Errors {
			errs = append(errs, fmt.Errorf("delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
		}
		return errors.Join(errs...)
	}
	return nil
}

func (s *S3Store) keysFor(ctx context.Context, id string) ([]string, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(path.Join(s.prefix, id)),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", id, err)
	}

	var keys []string
	for _, o := range out.Contents {
		k := aws.ToString(o.Key)
		if AssetIDFromURL(k) == id {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// AssetIDFromURL returns the last path segment of u without its extension,
// or "" when u has no path.
func AssetIDFromURL(u string) string {
	if u == "" {
		return ""
	}
	p := u
	if parsed, err := url.Parse(u); err == nil && parsed.Path != "" {
		p = parsed.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
