// Package qr adapts third-party QR libraries to the two shapes the panel
// needs: a PNG data URI for downloading and an SVG for on-screen display.
package qr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DataURIPrefix starts every image produced by PNGEncoder.
const DataURIPrefix = "data:image/png;base64,"

// defaultScale is the pixels-per-module used when the requested width is too
// small to hold the symbol plus its quiet zone.
const defaultScale = 4

// Options configures a single encode.
type Options struct {
	Width  int                  // target pixel width (and height)
	Margin int                  // quiet zone, in modules
	Level  qrcode.RecoveryLevel // error correction
}

// DefaultOptions matches the download affordance of the panel.
func DefaultOptions() Options {
	return Options{Width: 600, Margin: 3, Level: qrcode.Medium}
}

// Encoder turns text into an image data URI.
type Encoder interface {
	Encode(ctx context.Context, text string, opts Options) (string, error)
}

// PNGEncoder encodes with github.com/skip2/go-qrcode.
type PNGEncoder struct{}

// Encode returns a PNG data URI for text. Empty text is rejected by the
// underlying encoder.
func (PNGEncoder) Encode(ctx context.Context, text string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := EncodePNG(text, opts)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len(DataURIPrefix) + base64.StdEncoding.EncodedLen(len(b)))
	sb.WriteString(DataURIPrefix)
	sb.WriteString(base64.StdEncoding.EncodeToString(b))
	return sb.String(), nil
}

// EncodePNG generates the PNG bytes of a QR code for text.
func EncodePNG(text string, opts Options) ([]byte, error) {
	q, err := qrcode.New(text, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	// The quiet zone is drawn by rasterize so its width is configurable.
	q.DisableBorder = true

	img := rasterize(q.Bitmap(), opts.Width, opts.Margin)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDataURI returns the PNG bytes held by a data URI from PNGEncoder.
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, DataURIPrefix) {
		return nil, fmt.Errorf("not a png data uri")
	}
	b, err := base64.StdEncoding.DecodeString(uri[len(DataURIPrefix):])
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return b, nil
}

// rasterize draws a borderless module bitmap into a width x width image with
// margin modules of quiet zone on every side. The scale is fractional so the
// output is exactly width pixels wide whenever width can hold the symbol.
func rasterize(bitmap [][]bool, width, margin int) *image.Paletted {
	modules := len(bitmap)
	total := modules + 2*margin

	scale := float64(defaultScale)
	size := total * defaultScale
	if width >= total {
		scale = float64(width) / float64(total)
		size = width
	}
	scaledMargin := float64(margin) * scale

	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{color.White, color.Black})
	for y := 0; y < size; y++ {
		fy := float64(y)
		if fy < scaledMargin || fy >= float64(size)-scaledMargin {
			continue
		}
		row := int(math.Floor((fy - scaledMargin) / scale))
		if row >= modules {
			continue
		}
		for x := 0; x < size; x++ {
			fx := float64(x)
			if fx < scaledMargin || fx >= float64(size)-scaledMargin {
				continue
			}
			col := int(math.Floor((fx - scaledMargin) / scale))
			if col < modules && bitmap[row][col] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}
