package photolib

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/editorimages/internal/storage"
)

func TestLibrary_Save(t *testing.T) {
	ctx := context.Background()
	store := storage.NewAferoStore(afero.NewMemMapFs())
	lib := New(store)
	lib.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	name, err := lib.Save(ctx, img)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^photos/2024/[0-9a-f-]{36}\.png$`), name)

	rc, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer rc.Close()

	decoded, err := png.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	r, _, _, a := decoded.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)

	other, err := lib.Save(ctx, img)
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
}
