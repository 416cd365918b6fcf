package blob

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"lumen/internal/middleware"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSStore keeps image bytes in a Google Cloud Storage bucket. Object names
// are uuid-derived so uploads never collide regardless of the original name.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore returns a GCSStore writing into the given bucket.
func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

// Save uploads content as a new object and returns its name as the stored path.
func (s *GCSStore) Save(ctx context.Context, content []byte, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		middleware.BlobOperations.WithLabelValues("gcs", "save", "error").Inc()
		return "", fmt.Errorf("writing object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		middleware.BlobOperations.WithLabelValues("gcs", "save", "error").Inc()
		return "", fmt.Errorf("finalizing object %s: %w", name, err)
	}

	middleware.BlobOperations.WithLabelValues("gcs", "save", "ok").Inc()
	return path.Join(publicPrefix, name), nil
}

// Delete removes the object previously stored at p.
func (s *GCSStore) Delete(ctx context.Context, p string) error {
	name := path.Base(p)
	if name == "." || name == "/" {
		return fmt.Errorf("invalid blob path %q", p)
	}
	err := s.client.Bucket(s.bucket).Object(name).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		err = nil
	}
	if err != nil {
		middleware.BlobOperations.WithLabelValues("gcs", "delete", "error").Inc()
		return err
	}
	middleware.BlobOperations.WithLabelValues("gcs", "delete", "ok").Inc()
	return nil
}
