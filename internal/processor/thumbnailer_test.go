package processor

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return &buf
}

func TestThumbnailDownscalesLongestEdge(t *testing.T) {
	out, err := Thumbnailer{MaxEdge: 100}.Thumbnail(encodePNG(t, 400, 200))
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	out, err := Thumbnailer{MaxEdge: 512}.Thumbnail(encodePNG(t, 60, 40))
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	_, err := Thumbnailer{MaxEdge: 100}.Thumbnail(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}
