// Package imaging provides the pixel buffer and image I/O used by the core
// column pipeline.
//
// The central type is Raster, a dense rows x columns x channels byte array.
// Rasters are what the layout code crops and rotates and what depth columns
// store. Conversions to and from the standard library image.Image types live
// here, together with a path-keyed ImageCache for photographs and PNG helpers
// for persistence and transport.
//
// # Coordinate System
//
// Raster coordinates are 0-based with the origin at the top-left corner:
//   - Row (y) increases downward and is the depth axis of a column image
//   - Column (x) increases rightward
//   - Rectangles are min-inclusive and max-exclusive, as with image.Rectangle
//
// # Channels
//
// Only grayscale (1 channel) and RGB (3 channels) rasters are valid. Alpha is
// discarded on conversion from image.Image; grayscale sources stay grayscale.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Raster values are plain data; the
// functions in this package never modify their inputs and always return fresh
// rasters, so callers may share rasters between goroutines for reading.
//
// # Error Handling
//
// Shape problems (wrong rank, unsupported channel counts, pixel data that does
// not match the declared shape) are reported with ErrInvalidShape and can be
// tested with errors.Is. File and codec failures are wrapped with context.
package imaging
