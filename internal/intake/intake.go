// Package intake turns uploaded photos into the encoded payload sent to the
// generation backend.
package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"studio/internal/domain"
	"studio/internal/infra"
)

const (
	// DefaultMaxBytes rejects uploads over 10 MB.
	DefaultMaxBytes int64 = 10 << 20
	// DefaultMaxDimension bounds both sides of the re-encoded image.
	DefaultMaxDimension = 1920
	// DefaultMaxPixels caps the decoded raster at 48 megapixels.
	DefaultMaxPixels int64 = 48_000_000
	// JPEGQuality is the fixed re-encode quality.
	JPEGQuality = 80
)

type Options struct {
	MaxBytes     int64
	MaxDimension int
	// MaxPixels bounds width*height declared by the image header.
	MaxPixels int64
	Logger    *infra.Logger
}

// Intake validates, downscales and re-encodes uploads.
type Intake struct {
	maxBytes     int64
	maxDimension int
	maxPixels    int64
	logger       zerolog.Logger
}

// Image is a prepared upload.
type Image struct {
	// DataURL is a data:image/jpeg;base64 payload.
	DataURL        string
	Width          int
	Height         int
	OriginalWidth  int
	OriginalHeight int
	Format         string
}

func New(opts Options) *Intake {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Intake{maxBytes: maxBytes, maxDimension: maxDim, maxPixels: maxPixels, logger: logger}
}

// MaxBytes is the upload ceiling in bytes.
func (i *Intake) MaxBytes() int64 {
	return i.maxBytes
}

// Check rejects uploads by declared type and size before any decoding.
// An empty contentType is accepted here and sniffed by Prepare.
func (i *Intake) Check(contentType string, size int64) error {
	if contentType != "" && !isImageType(contentType) {
		return fmt.Errorf("%w: %s", domain.ErrNotAnImage, contentType)
	}
	if size > i.maxBytes {
		return fmt.Errorf("%w: %d bytes", domain.ErrImageTooLarge, size)
	}
	return nil
}

// Prepare reads r, checks it and returns the re-encoded image.
func (i *Intake) Prepare(ctx context.Context, contentType string, r io.Reader) (Image, error) {
	if err := i.Check(contentType, 0); err != nil {
		return Image{}, err
	}
	raw, err := io.ReadAll(io.LimitReader(r, i.maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("intake: read upload: %w", err)
	}
	if int64(len(raw)) > i.maxBytes {
		return Image{}, fmt.Errorf("%w: over %d bytes", domain.ErrImageTooLarge, i.maxBytes)
	}
	if contentType == "" {
		if sniffed := http.DetectContentType(raw); !isImageType(sniffed) {
			return Image{}, fmt.Errorf("%w: %s", domain.ErrNotAnImage, sniffed)
		}
	}
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", domain.ErrNotAnImage, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > i.maxPixels {
		return Image{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", domain.ErrImageTooLarge, cfg.Width, cfg.Height, i.maxPixels)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", domain.ErrNotAnImage, err)
	}
	bounds := src.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), i.maxDimension)

	// JPEG has no alpha; transparent regions become white.
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return Image{}, fmt.Errorf("intake: encode jpeg: %w", err)
	}

	i.logger.Debug().
		Str("format", format).
		Int("orig_width", bounds.Dx()).
		Int("orig_height", bounds.Dy()).
		Int("width", width).
		Int("height", height).
		Int("input_size", len(raw)).
		Int("output_size", buf.Len()).
		Msg("intake: image prepared")

	return Image{
		DataURL:        "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:          width,
		Height:         height,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		Format:         format,
	}, nil
}

func isImageType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// fitWithin scales width and height down so neither exceeds limit, keeping
// the aspect ratio. Images already within the limit are returned unchanged.
func fitWithin(width, height, limit int) (int, int) {
	if width <= limit && height <= limit {
		return width, height
	}
	if width > height {
		return limit, max(1, int(float64(height)*float64(limit)/float64(width)))
	}
	return max(1, int(float64(width)*float64(limit)/float64(height))), limit
}
