package framestretch

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"
)

// ToRGBAImage wraps a rasterized RGBA buffer in an *image.RGBA so it can
// be encoded or drawn on.
func ToRGBAImage(rgba []byte, width, height int) (*image.RGBA, error) {
	if len(rgba) != width*height*4 {
		return nil, fmt.Errorf("%w: have %d bytes, want %dx%dx4",
			ErrInvalidDimensions, len(rgba), width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, rgba)
	return img, nil
}

// WritePNG encodes an image to a PNG file.
func WritePNG(outputPath string, img image.Image) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create png file: %w", err)
	}
	defer f.Close()
	return png.Encode(f, img)
}

// EncodePNGBytes encodes an image to in-memory PNG bytes, e.g. for
// pushing to a browser client.
func EncodePNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Thumbnail downscales an image to at most maxWidth pixels wide, keeping
// the aspect ratio. Images already small enough pass through unchanged.
func Thumbnail(img image.Image, maxWidth uint) image.Image {
	if maxWidth == 0 || uint(img.Bounds().Dx()) <= maxWidth {
		return img
	}
	return resize.Resize(maxWidth, 0, img, resize.Lanczos3)
}
