package layout

import (
	"fmt"
	"image"
)

// LabelMap assigns every pixel an instance label. 0 is background; instance i
// of the detection set carries label i+1.
type LabelMap struct {
	Width  int
	Height int
	Labels []int
}

// At returns the label at pixel (x, y).
func (m LabelMap) At(x, y int) int {
	return m.Labels[y*m.Width+x]
}

// Bounds returns the map extent anchored at the origin.
func (m LabelMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// MasksToLabels merges binary instance masks into one label map. Any non-zero
// mask pixel belongs to the instance. Where masks overlap, the later instance
// wins. All masks must have the same size.
func MasksToLabels(masks []*image.Gray) (LabelMap, error) {
	if len(masks) == 0 {
		return LabelMap{}, fmt.Errorf("%w: no masks", ErrInvalidRegion)
	}
	size := masks[0].Bounds().Size()
	out := LabelMap{
		Width:  size.X,
		Height: size.Y,
		Labels: make([]int, size.X*size.Y),
	}

	for i, m := range masks {
		b := m.Bounds()
		if b.Size() != size {
			return LabelMap{}, fmt.Errorf("%w: mask %d is %dx%d, want %dx%d",
				ErrInvalidRegion, i, b.Dx(), b.Dy(), size.X, size.Y)
		}
		label := i + 1
		for y := 0; y < size.Y; y++ {
			row := m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < size.X; x++ {
				if row[x] != 0 {
					out.Labels[y*size.X+x] = label
				}
			}
		}
	}
	return out, nil
}

// Region is one labelled instance with its tight bounding box.
type Region struct {
	// Label is the value of the instance's pixels in the label map.
	Label int

	// ClassID is the detector class of the instance.
	ClassID int

	// Score is the detector confidence.
	Score float64

	// Box is the tight bounding box, min-inclusive and max-exclusive, with x
	// the pixel column and y the pixel row.
	Box image.Rectangle
}

// RegionsFromLabels returns one region per label present in the map, in label
// order. classIDs[i] and scores[i] describe label i+1; scores may be nil.
// Labels that were fully overwritten by later instances produce no region.
func RegionsFromLabels(labels LabelMap, classIDs []int, scores []float64) ([]Region, error) {
	if len(labels.Labels) != labels.Width*labels.Height {
		return nil, fmt.Errorf("%w: label map has %d entries for %dx%d",
			ErrInvalidRegion, len(labels.Labels), labels.Width, labels.Height)
	}
	if scores != nil && len(scores) != len(classIDs) {
		return nil, fmt.Errorf("%w: %d scores for %d class ids", ErrInvalidRegion, len(scores), len(classIDs))
	}

	boxes := make([]image.Rectangle, len(classIDs))
	for y := 0; y < labels.Height; y++ {
		for x := 0; x < labels.Width; x++ {
			l := labels.At(x, y)
			if l == 0 {
				continue
			}
			if l < 0 || l > len(classIDs) {
				return nil, fmt.Errorf("%w: label %d at (%d, %d) has no class id", ErrInvalidRegion, l, x, y)
			}
			px := image.Rect(x, y, x+1, y+1)
			if boxes[l-1].Empty() {
				boxes[l-1] = px
			} else {
				boxes[l-1] = boxes[l-1].Union(px)
			}
		}
	}

	var regions []Region
	for i, box := range boxes {
		if box.Empty() {
			continue
		}
		r := Region{Label: i + 1, ClassID: classIDs[i], Box: box}
		if scores != nil {
			r.Score = scores[i]
		}
		regions = append(regions, r)
	}
	return regions, nil
}
