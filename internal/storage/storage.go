package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nfrund/editorimages/internal/domain"
	"github.com/spf13/afero"
)

// AferoStore implements Store on top of an afero filesystem. Production code
// hands it a base-path filesystem rooted at the data directory; tests use
// afero.NewMemMapFs.
type AferoStore struct {
	fs afero.Fs
}

// NewAferoStore creates a new AferoStore.
func NewAferoStore(fs afero.Fs) *AferoStore {
	return &AferoStore{fs: fs}
}

// NewDiskStore returns an AferoStore confined to dir on the OS filesystem.
func NewDiskStore(dir string) (*AferoStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return NewAferoStore(afero.NewBasePathFs(osFs, dir)), nil
}

// Save writes the content of the reader to path, replacing any existing file.
// The content lands in a temporary sibling first so readers never observe a
// half-written file.
func (s *AferoStore) Save(ctx context.Context, path string, reader io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	tmp := path + ".tmp"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, reader)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return 0, err
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return 0, err
	}
	return n, nil
}

// Open opens a file for reading. A missing file yields domain.ErrNotFound.
func (s *AferoStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := s.fs.OpenFile(path, os.O_RDONLY, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	return f, err
}

// Exists reports whether path is present.
func (s *AferoStore) Exists(ctx context.Context, path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// Delete removes a file. Deleting a missing file is not an error.
func (s *AferoStore) Delete(ctx context.Context, path string) error {
	err := s.fs.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
