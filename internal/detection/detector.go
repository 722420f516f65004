package detection

import (
	"context"
	"image"
)

// Instance is one detected object.
type Instance struct {
	// Mask marks the object's pixels with non-zero values. It has the same
	// size as the image passed to Detect.
	Mask *image.Gray

	// ClassID indexes the detector's class table; 0 is the background.
	ClassID int

	// Score is the detector confidence in [0, 1].
	Score float64
}

// Box returns the tight bounding box of the mask's non-zero pixels relative
// to the mask origin, or the empty rectangle when the mask is blank.
func (in Instance) Box() image.Rectangle {
	if in.Mask == nil {
		return image.Rectangle{}
	}
	b := in.Mask.Bounds()
	var box image.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := in.Mask.Pix[in.Mask.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x] == 0 {
				continue
			}
			px := image.Rect(x, y-b.Min.Y, x+1, y-b.Min.Y+1)
			if box.Empty() {
				box = px
			} else {
				box = box.Union(px)
			}
		}
	}
	return box
}

// Result holds every instance found in one image.
type Result struct {
	Instances []Instance
}

// OfClass returns the instances with the given class id, in detection order.
func (r *Result) OfClass(id int) []Instance {
	var out []Instance
	for _, in := range r.Instances {
		if in.ClassID == id {
			out = append(out, in)
		}
	}
	return out
}

// Masks returns the instance masks in detection order.
func (r *Result) Masks() []*image.Gray {
	out := make([]*image.Gray, len(r.Instances))
	for i, in := range r.Instances {
		out[i] = in.Mask
	}
	return out
}

// ClassIDs returns the instance class ids in detection order.
func (r *Result) ClassIDs() []int {
	out := make([]int, len(r.Instances))
	for i, in := range r.Instances {
		out[i] = in.ClassID
	}
	return out
}

// Scores returns the instance scores in detection order.
func (r *Result) Scores() []float64 {
	out := make([]float64, len(r.Instances))
	for i, in := range r.Instances {
		out[i] = in.Score
	}
	return out
}

// Detector finds object instances in an image.
//
// Implementations must not modify img and must be safe for concurrent use
// when shared by a segmenter running several images at once.
type Detector interface {
	Detect(ctx context.Context, img image.Image) (*Result, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, img image.Image) (*Result, error)

// Detect calls f(ctx, img).
func (f DetectorFunc) Detect(ctx context.Context, img image.Image) (*Result, error) {
	return f(ctx, img)
}
