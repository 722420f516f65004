package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"path/filepath"
	"testing"
)

func TestEncodePNG(t *testing.T) {
	r := newPatternRaster(40, 20, 3)

	result, err := EncodePNG(r, 1.0)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	if result.Width != 20 || result.Height != 40 {
		t.Errorf("dimensions: got %dx%d, want 20x40", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	if !FromImage(img).Equal(r) {
		t.Error("decoded PNG does not match the encoded raster")
	}
}

func TestEncodePNG_WithScale(t *testing.T) {
	tests := []struct {
		name         string
		scale        float64
		wantW, wantH int
	}{
		{"half", 0.5, 10, 20},
		{"double", 2.0, 40, 80},
		{"zero ignored", 0, 20, 40},
		{"negative ignored", -1, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EncodePNG(newPatternRaster(40, 20, 1), tt.scale)
			if err != nil {
				t.Fatalf("EncodePNG failed: %v", err)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestEncodePNG_InvalidRaster(t *testing.T) {
	_, err := EncodePNG(&Raster{Height: 2, Width: 2, Channels: 4, Pix: make([]uint8, 16)}, 1.0)
	if !errors.Is(err, ErrInvalidShape) {
		t.Errorf("got %v, want ErrInvalidShape", err)
	}
}

func TestSaveOpenPNG(t *testing.T) {
	dir := t.TempDir()

	for _, channels := range []int{1, 3} {
		r := newPatternRaster(7, 9, channels)
		path := filepath.Join(dir, "raster.png")

		if err := SavePNG(path, r); err != nil {
			t.Fatalf("SavePNG failed: %v", err)
		}
		back, err := OpenPNG(path)
		if err != nil {
			t.Fatalf("OpenPNG failed: %v", err)
		}
		if !back.Equal(r) {
			t.Errorf("%d-channel raster changed across SavePNG/OpenPNG", channels)
		}
	}
}

func TestOpenPNG_Missing(t *testing.T) {
	if _, err := OpenPNG(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("OpenPNG should fail for a missing file")
	}
}
