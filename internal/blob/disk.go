package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"lumen/internal/middleware"
)

// publicPrefix is the path prefix under which stored files are addressed.
const publicPrefix = "/uploads/images"

// DiskStore writes image bytes to a local directory. Stored paths are
// returned relative to publicPrefix so they can be served statically.
type DiskStore struct {
	dir string
}

// NewDiskStore returns a DiskStore rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Save writes content under a generated filename derived from the original
// base name, a nanosecond timestamp and the original extension.
func (s *DiskStore) Save(ctx context.Context, content []byte, originalName string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		middleware.BlobOperations.WithLabelValues("disk", "save", "error").Inc()
		return "", fmt.Errorf("creating upload dir: %w", err)
	}

	name := generateFilename(originalName)
	if err := os.WriteFile(filepath.Join(s.dir, name), content, 0o644); err != nil {
		middleware.BlobOperations.WithLabelValues("disk", "save", "error").Inc()
		return "", fmt.Errorf("writing blob %s: %w", name, err)
	}

	middleware.BlobOperations.WithLabelValues("disk", "save", "ok").Inc()
	return path.Join(publicPrefix, name), nil
}

// Delete removes the file previously stored at p. Missing files are not an error.
func (s *DiskStore) Delete(ctx context.Context, p string) error {
	name := path.Base(p)
	if name == "." || name == "/" {
		return fmt.Errorf("invalid blob path %q", p)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		err = nil
	}
	if err != nil {
		middleware.BlobOperations.WithLabelValues("disk", "delete", "error").Inc()
		return err
	}
	middleware.BlobOperations.WithLabelValues("disk", "delete", "ok").Inc()
	return nil
}

// generateFilename builds a collision-resistant name from the original one:
// base name + nanosecond timestamp + original extension.
func generateFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	base = sanitizeBase(base)
	return fmt.Sprintf("%s%d%s", base, time.Now().UnixNano(), ext)
}

// sanitizeBase keeps filenames shell- and URL-friendly.
func sanitizeBase(base string) string {
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
