package imaging

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded photographs to avoid
// redundant disk reads when the same core box image is segmented more than once.
//
// Images are keyed by the exact path string passed to Load. Cached images stay
// in memory until removed with Evict or Clear; core box photographs are large,
// so long-running processes should evict images they are done with.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     those registered with the imaging package (JPEG, PNG, GIF, TIFF, BMP).
//
// Returns:
//   - image.Image: The decoded image.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// # Orientation
//
// Photographs taken on phones and tablets frequently carry an EXIF orientation
// tag instead of rotated pixels. Load applies that tag so that box layouts are
// seen the way the photographer saw them.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadRaster loads an image through the cache and converts it to a Raster.
// The raster is a fresh copy; mutating it does not affect the cache.
func (c *ImageCache) LoadRaster(path string) (*Raster, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
// After eviction, the next Load() call for this path will read from disk.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}
