// Package processor turns source images into webp thumbnails for the
// favorites carousels.
package processor

import (
	"bytes"
	"image"
	"io"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Thumbnailer downscales an image so its longest edge fits MaxEdge and
// encodes it as webp. Images already small enough are re-encoded as-is.
type Thumbnailer struct {
	MaxEdge int
	Quality float32
}

func (t Thumbnailer) Thumbnail(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	img = t.fit(img)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: t.quality()}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit shrinks by the dominant axis ratio; upscaling is never done.
func (t Thumbnailer) fit(img image.Image) image.Image {
	if t.MaxEdge <= 0 {
		return img
	}

	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())
	if w == 0 || h == 0 {
		return img
	}

	ratio := w / float64(t.MaxEdge)
	if hRatio := h / float64(t.MaxEdge); hRatio > ratio {
		ratio = hRatio
	}
	if ratio <= 1 {
		return img
	}

	return imaging.Resize(img, int(w/ratio), int(h/ratio), imaging.Lanczos)
}

func (t Thumbnailer) quality() float32 {
	if t.Quality <= 0 {
		return 80
	}
	return t.Quality
}
