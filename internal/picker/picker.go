// Package picker supplies the image the editor draws over.
package picker

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Picker returns one image, or nil when the user cancelled.
type Picker interface {
	Pick(ctx context.Context) (image.Image, error)
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".webp": true,
}

// IsImageFile reports whether name has a supported image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

func decode(fsys afero.Fs, name string) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return img, nil
}

// Decode reads an image in any of the supported formats.
func Decode(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	slog.Debug("picker: decoded image", "format", format, "bounds", img.Bounds().String())
	return img, nil
}

// FilePicker picks a single file by path. An empty path means cancel.
type FilePicker struct {
	fs   afero.Fs
	path string
}

// NewFilePicker creates a picker for path on fsys.
func NewFilePicker(fsys afero.Fs, path string) *FilePicker {
	return &FilePicker{fs: fsys, path: path}
}

func (p *FilePicker) Pick(ctx context.Context) (image.Image, error) {
	if p.path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil
	}
	return decode(p.fs, p.path)
}

// FolderPicker waits for the first image that lands in a directory, like a
// scanner or camera inbox. Cancelling ctx cancels the pick.
type FolderPicker struct {
	dir string
	fs  afero.Fs
}

// NewFolderPicker watches dir on the OS filesystem.
func NewFolderPicker(dir string) *FolderPicker {
	return &FolderPicker{dir: dir, fs: afero.NewOsFs()}
}

func (p *FolderPicker) Pick(ctx context.Context) (image.Image, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox %s: %w", p.dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file system watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.dir); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", p.dir, err)
	}
	slog.InfoContext(ctx, "picker: waiting for an image", "dir", p.dir)

	for {
		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "picker: cancelled")
			return nil, nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil, nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !IsImageFile(event.Name) {
				continue
			}

			// A file may be announced before it is fully written; a later
			// Write event retries the decode.
			img, err := decode(p.fs, event.Name)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					slog.DebugContext(ctx, "picker: image not ready", "path", event.Name, "error", err)
				}
				continue
			}
			return img, nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil, nil
			}
			slog.ErrorContext(ctx, "picker: file system watcher error", "error", err)
		}
	}
}
