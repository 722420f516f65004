package imaging

import (
	"github.com/disintegration/imaging"
)

// RotateClockwise rotates the raster 90 degrees clockwise, keeping its channel
// count. The left edge of the input becomes the top edge of the output.
func RotateClockwise(r *Raster) *Raster {
	// imaging.Rotate270 is a counter-clockwise rotation by 270 degrees.
	return FromImageChannels(imaging.Rotate270(r.Image()), r.Channels)
}

// RotateCounterClockwise rotates the raster 90 degrees counter-clockwise.
func RotateCounterClockwise(r *Raster) *Raster {
	return FromImageChannels(imaging.Rotate90(r.Image()), r.Channels)
}
