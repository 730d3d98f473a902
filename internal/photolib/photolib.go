// Package photolib is the write-only photo library edited images are saved to.
package photolib

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/nfrund/editorimages/internal/storage"
)

// Library stores PNG files under photos/<year>/.
type Library struct {
	store storage.Store
	now   func() time.Time
}

// New creates a library on store.
func New(store storage.Store) *Library {
	return &Library{store: store, now: time.Now}
}

// Save encodes img as PNG and returns the path it was written to.
func (l *Library) Save(ctx context.Context, img image.Image) (string, error) {
	name := path.Join("photos", l.now().Format("2006"), uuid.NewString()+".png")

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(png.Encode(pw, img))
	}()

	n, err := l.store.Save(ctx, name, pr)
	// Unblocks the encoder if Save stopped reading early.
	pr.CloseWithError(err)
	if err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	slog.InfoContext(ctx, "photolib: saved", "path", name, "bytes", n)
	return name, nil
}
