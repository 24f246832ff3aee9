package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// ImageProcessor validates and normalizes uploaded cover images.
type ImageProcessor struct {
	MaxSize  int64 // bytes (default: 5MB)
	MaxWidth int   // px, covers are downscaled to fit
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{
		MaxSize:  5 * 1024 * 1024, // 5MB
		MaxWidth: 1600,
	}
}

// Validate checks size and format. Only JPEG/PNG are accepted.
func (p *ImageProcessor) Validate(data []byte) error {
	if int64(len(data)) > p.MaxSize {
		return fmt.Errorf("image exceeds %dMB", p.MaxSize/(1024*1024))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not an image: %w", err)
	}
	switch format {
	case "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("image format %s not allowed (only jpeg/png)", format)
	}
}

// Normalize downscales the image to fit MaxWidth and re-encodes as JPEG
// quality 90. A single normalized variant is enough for cover images.
func (p *ImageProcessor) Normalize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	resized := imaging.Fit(img, p.MaxWidth, p.MaxWidth, imaging.Lanczos)

	b := new(bytes.Buffer)
	if err := jpeg.Encode(b, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("cannot encode image: %w", err)
	}
	return b.Bytes(), nil
}
