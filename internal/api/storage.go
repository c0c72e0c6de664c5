package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
)

// ObjectStore abstracts the bucket operations the handlers need, so
// tests can substitute a fake for Google Cloud Storage.
type ObjectStore interface {
	// Download fetches bucket/object into destDir, keeping the object's
	// base name, and returns the local path.
	Download(ctx context.Context, bucket, object, destDir string) (string, error)
	// SignedUploadURL returns a V4 signed URL permitting a direct PUT of
	// the named object.
	SignedUploadURL(ctx context.Context, bucket, object, contentType string, expires time.Duration) (string, error)
}

// GCSStore implements ObjectStore against Google Cloud Storage using
// Application Default Credentials.
type GCSStore struct {
	client *storage.Client
}

func NewGCSStore(ctx context.Context) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

func (s *GCSStore) Download(ctx context.Context, bucket, object, destDir string) (string, error) {
	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("object does not exist in bucket %s: %s", bucket, object)
		}
		return "", fmt.Errorf("failed to open %s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	localPath := filepath.Join(destDir, filepath.Base(object))
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", fmt.Errorf("failed to download %s/%s: %w", bucket, object, err)
	}
	return localPath, nil
}

func (s *GCSStore) SignedUploadURL(_ context.Context, bucket, object, contentType string, expires time.Duration) (string, error) {
	url, err := s.client.Bucket(bucket).SignedURL(object, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      "PUT",
		Expires:     time.Now().Add(expires),
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %s/%s: %w", bucket, object, err)
	}
	return url, nil
}
