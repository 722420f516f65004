package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrInvalidShape is returned when pixel data does not describe a 2D (grayscale)
// or 3D (grayscale or RGB) image array.
var ErrInvalidShape = errors.New("invalid image shape")

// Raster is a dense 8-bit pixel buffer laid out as rows x columns x channels.
//
// Rows are the depth axis for every consumer in this module: row 0 is the
// shallowest sample. Pix holds Height*Width*Channels bytes in row-major order
// with channels interleaved, so the value of channel c at (row y, column x) is
// Pix[(y*Width+x)*Channels+c].
//
// Only 1-channel (grayscale) and 3-channel (RGB) rasters are valid.
type Raster struct {
	// Height is the number of rows.
	Height int

	// Width is the number of columns.
	Width int

	// Channels is 1 for grayscale, 3 for RGB.
	Channels int

	// Pix is the interleaved pixel data.
	Pix []uint8
}

// NewRaster allocates a zero-filled raster. The result is not validated; call
// Validate before handing it to code that relies on a legal shape.
func NewRaster(height, width, channels int) *Raster {
	n := height * width * channels
	if n < 0 {
		n = 0
	}
	return &Raster{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]uint8, n),
	}
}

// FromShape builds a raster from an array shape and its flat pixel data.
//
// A 2D shape (rows, cols) is normalized to a single channel. A 3D shape
// (rows, cols, channels) must have 1 or 3 channels. Any other rank fails with
// ErrInvalidShape, as does pixel data whose length does not match the shape.
// The pixel slice is used directly, not copied.
func FromShape(shape []int, pix []uint8) (*Raster, error) {
	var r *Raster
	switch len(shape) {
	case 2:
		r = &Raster{Height: shape[0], Width: shape[1], Channels: 1, Pix: pix}
	case 3:
		r = &Raster{Height: shape[0], Width: shape[1], Channels: shape[2], Pix: pix}
	default:
		return nil, fmt.Errorf("%w: image array must have 2 or 3 dimensions, got %d", ErrInvalidShape, len(shape))
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate reports whether the raster describes a legal, non-empty image.
func (r *Raster) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil raster", ErrInvalidShape)
	}
	if r.Height <= 0 || r.Width <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidShape, r.Height, r.Width)
	}
	if r.Channels != 1 && r.Channels != 3 {
		return fmt.Errorf("%w: %d channels, want 1 or 3", ErrInvalidShape, r.Channels)
	}
	if want := r.Height * r.Width * r.Channels; len(r.Pix) != want {
		return fmt.Errorf("%w: %d pixel bytes for shape %v, want %d", ErrInvalidShape, len(r.Pix), r.Shape(), want)
	}
	return nil
}

// Shape returns (rows, cols, channels).
func (r *Raster) Shape() []int {
	return []int{r.Height, r.Width, r.Channels}
}

// Stride is the number of bytes in one row.
func (r *Raster) Stride() int {
	return r.Width * r.Channels
}

// Row returns the bytes of row y. The slice aliases Pix.
func (r *Raster) Row(y int) []uint8 {
	s := r.Stride()
	return r.Pix[y*s : (y+1)*s]
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	out := *r
	out.Pix = append([]uint8(nil), r.Pix...)
	return &out
}

// Equal reports whether both rasters have the same shape and identical pixels.
func (r *Raster) Equal(o *Raster) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Height == o.Height && r.Width == o.Width && r.Channels == o.Channels &&
		bytes.Equal(r.Pix, o.Pix)
}

// SelectRows returns a new raster made of the given rows, in the given order.
func (r *Raster) SelectRows(rows []int) *Raster {
	out := NewRaster(len(rows), r.Width, r.Channels)
	for i, y := range rows {
		copy(out.Row(i), r.Row(y))
	}
	return out
}

// RowRange returns a copy of rows [y0, y1).
func (r *Raster) RowRange(y0, y1 int) *Raster {
	out := NewRaster(y1-y0, r.Width, r.Channels)
	s := r.Stride()
	copy(out.Pix, r.Pix[y0*s:y1*s])
	return out
}

// SubRaster copies the pixels inside rect (x = column, y = row). The rectangle
// must lie within the raster.
func (r *Raster) SubRaster(rect image.Rectangle) *Raster {
	out := NewRaster(rect.Dy(), rect.Dx(), r.Channels)
	c := r.Channels
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		src := r.Row(y)[rect.Min.X*c : rect.Max.X*c]
		copy(out.Row(y-rect.Min.Y), src)
	}
	return out
}

// Bounds returns the raster extent as an image rectangle anchored at the origin.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// Mask returns a copy where every pixel whose keep flag is false is zeroed.
// keep is indexed row-major (y*Width + x).
func (r *Raster) Mask(keep []bool) (*Raster, error) {
	if len(keep) != r.Height*r.Width {
		return nil, fmt.Errorf("%w: mask has %d entries, raster has %dx%d pixels",
			ErrInvalidShape, len(keep), r.Height, r.Width)
	}
	out := r.Clone()
	c := r.Channels
	for i, k := range keep {
		if k {
			continue
		}
		clear(out.Pix[i*c : (i+1)*c])
	}
	return out, nil
}

// VStack stacks b below a. The narrower raster is zero-padded on its right edge
// so both share the wider width. Channel counts must match.
func VStack(a, b *Raster) (*Raster, error) {
	if a.Channels != b.Channels {
		return nil, fmt.Errorf("%w: cannot stack %d-channel image on %d-channel image",
			ErrInvalidShape, b.Channels, a.Channels)
	}
	width := max(a.Width, b.Width)
	out := NewRaster(a.Height+b.Height, width, a.Channels)
	for y := 0; y < a.Height; y++ {
		copy(out.Row(y), a.Row(y))
	}
	for y := 0; y < b.Height; y++ {
		copy(out.Row(a.Height+y), b.Row(y))
	}
	return out, nil
}

// FromImage converts a decoded image into a raster.
//
// Grayscale images (*image.Gray, *image.Gray16) become 1-channel rasters and
// everything else becomes a 3-channel RGB raster with alpha discarded.
func FromImage(img image.Image) *Raster {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return FromImageChannels(img, 1)
	default:
		return FromImageChannels(img, 3)
	}
}

// FromImageChannels converts img into a raster with the requested channel count.
// Colour images requested as one channel are reduced to luminance.
func FromImageChannels(img image.Image, channels int) *Raster {
	b := img.Bounds()
	out := NewRaster(b.Dy(), b.Dx(), channels)

	if channels == 1 {
		if g, ok := img.(*image.Gray); ok {
			for y := 0; y < out.Height; y++ {
				off := g.PixOffset(b.Min.X, b.Min.Y+y)
				copy(out.Row(y), g.Pix[off:off+out.Width])
			}
			return out
		}
		for y := 0; y < out.Height; y++ {
			row := out.Row(y)
			for x := 0; x < out.Width; x++ {
				row[x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			}
		}
		return out
	}

	var pix []uint8
	var stride int
	switch src := img.(type) {
	case *image.NRGBA:
		pix, stride = src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride
	case *image.RGBA:
		pix, stride = src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride
	default:
		// imaging.Clone normalizes any image type to NRGBA anchored at (0,0).
		n := imaging.Clone(img)
		pix, stride = n.Pix, n.Stride
	}
	for y := 0; y < out.Height; y++ {
		row := out.Row(y)
		src := pix[y*stride:]
		for x := 0; x < out.Width; x++ {
			row[x*3] = src[x*4]
			row[x*3+1] = src[x*4+1]
			row[x*3+2] = src[x*4+2]
		}
	}
	return out
}

// Image converts the raster into a standard library image: *image.Gray for one
// channel, opaque *image.NRGBA for three.
func (r *Raster) Image() image.Image {
	if r.Channels == 1 {
		g := image.NewGray(r.Bounds())
		copy(g.Pix, r.Pix)
		return g
	}
	n := image.NewNRGBA(r.Bounds())
	for i := 0; i < r.Height*r.Width; i++ {
		n.Pix[i*4] = r.Pix[i*3]
		n.Pix[i*4+1] = r.Pix[i*3+1]
		n.Pix[i*4+2] = r.Pix[i*3+2]
		n.Pix[i*4+3] = 0xff
	}
	return n
}
