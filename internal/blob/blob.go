// Package blob abstracts the external store holding uploaded image bytes.
package blob

import (
	"context"
)

// Store persists uploaded image bytes under a generated name and deletes them
// by the path it previously returned. Deletes are best-effort from the
// caller's point of view; a failed delete never blocks the surrounding
// database operation.
type Store interface {
	Save(ctx context.Context, content []byte, originalName string) (string, error)
	Delete(ctx context.Context, path string) error
}
