package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/gift"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 2048
	DefaultMaxPixels    = 40_000_000
	MinDimension        = 16
)

var ErrUnsupportedImage = errors.New("unsupported image")

// Normalizer decodes uploads, bounds their size and re-encodes them as PNG so
// every image sent to the model has a known mime type.
type Normalizer struct {
	MaxDimension int
	// MaxPixels bounds the declared width*height of an upload before it is
	// decoded.
	MaxPixels int
}

func NewNormalizer(maxDimension, maxPixels int) *Normalizer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Normalizer{MaxDimension: maxDimension, MaxPixels: maxPixels}
}

func (n *Normalizer) Normalize(r io.Reader) (Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width < MinDimension || cfg.Height < MinDimension {
		return Image{}, fmt.Errorf("%w: %s image is smaller than %dx%d", ErrUnsupportedImage, format, MinDimension, MinDimension)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(n.MaxPixels) {
		return Image{}, fmt.Errorf("%w: %s image of %dx%d exceeds %d pixels", ErrUnsupportedImage, format, cfg.Width, cfg.Height, n.MaxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	bounds := src.Bounds()

	dst := src
	if bounds.Dx() > n.MaxDimension || bounds.Dy() > n.MaxDimension {
		g := gift.New(gift.ResizeToFit(n.MaxDimension, n.MaxDimension, gift.LanczosResampling))
		resized := image.NewNRGBA(g.Bounds(bounds))
		g.Draw(resized, src)
		dst = resized
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return Image{}, fmt.Errorf("failed to encode image: %w", err)
	}
	return Image{Data: buf.Bytes(), MIMEType: "image/png"}, nil
}
