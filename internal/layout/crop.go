package layout

import (
	"fmt"

	"github.com/ironsheep/core-column-mcp/internal/imaging"
)

// CropRegion cuts one region out of img.
//
// The region's box is extended along axis so it covers at least
// [span.Low, span.High), then clamped to the image. Pixels inside the box
// whose label is not the region's are zeroed.
func CropRegion(img *imaging.Raster, labels LabelMap, region Region, axis Axis, span Span) (*imaging.Raster, error) {
	if labels.Width != img.Width || labels.Height != img.Height {
		return nil, fmt.Errorf("%w: label map is %dx%d, image is %dx%d",
			ErrInvalidRegion, labels.Width, labels.Height, img.Width, img.Height)
	}

	box := region.Box
	if axis == AxisX {
		box.Min.X, box.Max.X = min(box.Min.X, span.Low), max(box.Max.X, span.High)
	} else {
		box.Min.Y, box.Max.Y = min(box.Min.Y, span.Low), max(box.Max.Y, span.High)
	}
	box = box.Intersect(img.Bounds())
	if box.Empty() {
		return nil, fmt.Errorf("%w: region %d box %v lies outside the %dx%d image",
			ErrInvalidRegion, region.Label, region.Box, img.Width, img.Height)
	}

	keep := make([]bool, 0, box.Dx()*box.Dy())
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			keep = append(keep, labels.At(x, y) == region.Label)
		}
	}
	return img.SubRaster(box).Mask(keep)
}

// Orient rotates a crop so depth increases down its rows. TopToBottom crops
// are returned as is; LeftToRight crops are turned 90 degrees clockwise.
func Orient(img *imaging.Raster, orientation Direction) *imaging.Raster {
	if orientation == LeftToRight {
		return imaging.RotateClockwise(img)
	}
	return img
}
