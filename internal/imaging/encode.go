package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// EncodedImage contains a raster encoded for transport
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes a raster as base64 PNG, optionally rescaled
func EncodePNG(r *Raster, scale float64) (*EncodedImage, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	img := r.Image()
	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(r.Width)*scale))
		newHeight := max(1, int(float64(r.Height)*scale))
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// SavePNG writes a raster to path as a lossless 8-bit PNG (gray or RGB)
func SavePNG(path string, r *Raster) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := imgio.Save(path, r.Image(), imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// OpenPNG reads a raster written by SavePNG
func OpenPNG(path string) (*Raster, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return FromImage(img), nil
}
