package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoStore_Unit(t *testing.T) {
	// No disk I/O is performed: everything happens in an in-memory filesystem.
	memFs := afero.NewMemMapFs()
	store := NewAferoStore(memFs)
	ctx := context.Background()

	filePath := "test/dir/my-file.txt"
	fileContent := "hello world, this is a test"

	t.Run("Save", func(t *testing.T) {
		bytesWritten, err := store.Save(ctx, filePath, bytes.NewReader([]byte(fileContent)))
		require.NoError(t, err)
		assert.Equal(t, int64(len(fileContent)), bytesWritten)

		readBytes, err := afero.ReadFile(memFs, filePath)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))

		leftover, err := afero.Exists(memFs, filePath+".tmp")
		require.NoError(t, err)
		assert.False(t, leftover, "temporary file should be renamed away")
	})

	t.Run("Save overwrites", func(t *testing.T) {
		_, err := store.Save(ctx, filePath, bytes.NewReader([]byte("v2")))
		require.NoError(t, err)

		readBytes, err := afero.ReadFile(memFs, filePath)
		require.NoError(t, err)
		assert.Equal(t, "v2", string(readBytes))
	})

	t.Run("Open", func(t *testing.T) {
		file, err := store.Open(ctx, filePath)
		require.NoError(t, err)
		defer file.Close()

		readBytes, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "v2", string(readBytes))
	})

	t.Run("Exists", func(t *testing.T) {
		ok, err := store.Exists(ctx, filePath)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, filePath))

		ok, err := store.Exists(ctx, filePath)
		require.NoError(t, err)
		assert.False(t, ok, "file should not exist after deleting")

		assert.NoError(t, store.Delete(ctx, filePath), "deleting twice is fine")
	})

	t.Run("Open non-existent file", func(t *testing.T) {
		_, err := store.Open(ctx, "path/to/nothing.txt")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Save honours cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Save(cancelled, "other.txt", bytes.NewReader(nil))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
