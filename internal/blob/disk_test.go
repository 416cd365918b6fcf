package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir)
	ctx := context.Background()

	p, err := store.Save(ctx, []byte("image-bytes"), "Scan1.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "/uploads/images/"), "path %q", p)
	assert.True(t, strings.HasSuffix(p, ".jpg"), "extension should be lowercased: %q", p)
	assert.Contains(t, p, "Scan1")

	onDisk := filepath.Join(dir, filepath.Base(p))
	content, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), content)

	require.NoError(t, store.Delete(ctx, p))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op, not an error.
	assert.NoError(t, store.Delete(ctx, p))
}

func TestDiskStore_UniqueNames(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	first, err := store.Save(ctx, []byte("a"), "same.png")
	require.NoError(t, err)
	second, err := store.Save(ctx, []byte("b"), "same.png")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSanitizeBase(t *testing.T) {
	assert.Equal(t, "my_photo_1", sanitizeBase("my photo 1"))
	assert.Equal(t, "image", sanitizeBase(""))
	assert.Equal(t, "a_b", sanitizeBase("a/b"))
}
