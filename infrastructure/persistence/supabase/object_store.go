package supabase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	storage "github.com/supabase-community/storage-go"
	"go.uber.org/zap"

	appErrors "github.com/Jabramco/memebase/pkg/errors"
)

// ObjectStore implements ports.ObjectStore on a public Supabase Storage bucket
type ObjectStore struct {
	// The storage client applies per-upload options to shared headers, so
	// uploads are serialized.
	mu      sync.Mutex
	storage *storage.Client
	bucket  string
	prefix  string
	logger  *zap.Logger
}

// NewObjectStore creates a new ObjectStore
func NewObjectStore(client *storage.Client, bucket string, logger *zap.Logger) *ObjectStore {
	return &ObjectStore{
		storage: client,
		bucket:  bucket,
		prefix:  client.GetPublicUrl(bucket, "").SignedURL,
		logger:  logger,
	}
}

// PutImage uploads data to path and returns its public URL
func (s *ObjectStore) PutImage(ctx context.Context, data []byte, path, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	upsert := false
	if _, err := s.storage.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		s.logger.Error("Failed to upload image",
			zap.String("bucket", s.bucket),
			zap.String("path", path),
			zap.Error(err),
		)
		return "", appErrors.NewExternalError("supabase storage", err)
	}

	return s.storage.GetPublicUrl(s.bucket, path).SignedURL, nil
}

// DeleteImage removes the object behind a public URL of this bucket
func (s *ObjectStore) DeleteImage(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := strings.TrimPrefix(url, s.prefix)
	if path == url || path == "" {
		return appErrors.NewValidationError(fmt.Sprintf("%s is not in bucket %s", url, s.bucket))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.storage.RemoveFile(s.bucket, []string{path}); err != nil {
		return appErrors.NewExternalError("supabase storage", err)
	}
	return nil
}
