// Package imaging normalizes uploaded images for storage. Only PNG and JPEG
// inputs are accepted; output is always JPEG.
package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"

	"github.com/go-faster/errors"

	// Registered decoders for image.Decode.
	_ "image/png"
)

// ErrUnsupportedFormat is returned for uploads that are neither PNG nor JPEG.
var ErrUnsupportedFormat = errors.New("only PNG and JPEG images are allowed")

// Processor converts uploads to JPEG at a configurable quality.
type Processor struct {
	quality int
}

// NewProcessor creates a Processor. A non-positive quality falls back to the
// jpeg package default.
func NewProcessor(quality int) *Processor {
	if quality <= 0 {
		quality = jpeg.DefaultQuality
	}
	return &Processor{quality: quality}
}

// ToJPEG decodes a PNG or JPEG image from r and re-encodes it as JPEG.
// Transparent PNG regions are flattened onto a white background, matching
// what a JPEG can represent.
func (p *Processor) ToJPEG(r io.Reader) (io.Reader, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(ErrUnsupportedFormat, err.Error())
	}
	if format != "png" && format != "jpeg" {
		return nil, ErrUnsupportedFormat
	}

	if format == "png" {
		img = flatten(img)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	return &buf, nil
}

// flatten draws img onto an opaque white canvas of the same size.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Over)
	return canvas
}
