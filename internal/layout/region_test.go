package layout

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// rectMask returns a w x h mask with rect set to 255.
func rectMask(w, h int, rect image.Rectangle) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			m.Pix[m.PixOffset(x, y)] = 255
		}
	}
	return m
}

func TestMasksToLabels(t *testing.T) {
	masks := []*image.Gray{
		rectMask(6, 4, image.Rect(0, 0, 3, 2)),
		rectMask(6, 4, image.Rect(2, 1, 6, 4)),
	}

	labels, err := MasksToLabels(masks)
	if err != nil {
		t.Fatalf("MasksToLabels() error = %v", err)
	}

	want := []int{
		1, 1, 1, 0, 0, 0,
		1, 1, 2, 2, 2, 2,
		0, 0, 2, 2, 2, 2,
		0, 0, 2, 2, 2, 2,
	}
	if labels.Width != 6 || labels.Height != 4 {
		t.Fatalf("label map is %dx%d, want 6x4", labels.Width, labels.Height)
	}
	if diff := cmp.Diff(want, labels.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestMasksToLabels_OffsetBounds(t *testing.T) {
	// Masks cut from a larger image keep a non-zero origin.
	full := rectMask(10, 10, image.Rect(5, 5, 7, 6))
	sub := full.SubImage(image.Rect(4, 4, 8, 8)).(*image.Gray)

	labels, err := MasksToLabels([]*image.Gray{sub})
	if err != nil {
		t.Fatalf("MasksToLabels() error = %v", err)
	}
	if got := labels.At(1, 1); got != 1 {
		t.Errorf("At(1, 1) = %d, want 1", got)
	}
	if got := labels.At(0, 0); got != 0 {
		t.Errorf("At(0, 0) = %d, want 0", got)
	}
}

func TestMasksToLabels_Errors(t *testing.T) {
	if _, err := MasksToLabels(nil); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("no masks: error = %v, want ErrInvalidRegion", err)
	}

	mixed := []*image.Gray{
		rectMask(4, 4, image.Rect(0, 0, 1, 1)),
		rectMask(5, 4, image.Rect(0, 0, 1, 1)),
	}
	if _, err := MasksToLabels(mixed); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("mixed sizes: error = %v, want ErrInvalidRegion", err)
	}
}

func TestRegionsFromLabels(t *testing.T) {
	masks := []*image.Gray{
		rectMask(8, 8, image.Rect(1, 1, 7, 3)),
		rectMask(8, 8, image.Rect(0, 0, 8, 8)), // fully covered by the next two
		rectMask(8, 8, image.Rect(0, 0, 8, 8)),
		rectMask(8, 8, image.Rect(2, 5, 4, 7)),
	}
	labels, err := MasksToLabels(masks)
	if err != nil {
		t.Fatalf("MasksToLabels() error = %v", err)
	}

	regions, err := RegionsFromLabels(labels, []int{1, 2, 2, 1}, []float64{0.9, 0.8, 0.7, 0.6})
	if err != nil {
		t.Fatalf("RegionsFromLabels() error = %v", err)
	}

	// Labels 1 and 2 are overwritten by 3; 4 survives on top of 3.
	want := []Region{
		{Label: 3, ClassID: 2, Score: 0.7, Box: image.Rect(0, 0, 8, 8)},
		{Label: 4, ClassID: 1, Score: 0.6, Box: image.Rect(2, 5, 4, 7)},
	}
	if diff := cmp.Diff(want, regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionsFromLabels_Errors(t *testing.T) {
	labels := LabelMap{Width: 2, Height: 1, Labels: []int{0, 3}}

	if _, err := RegionsFromLabels(labels, []int{1}, nil); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("unknown label: error = %v, want ErrInvalidRegion", err)
	}
	if _, err := RegionsFromLabels(labels, []int{1, 1, 1}, []float64{1}); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("score count: error = %v, want ErrInvalidRegion", err)
	}
	short := LabelMap{Width: 2, Height: 2, Labels: []int{0}}
	if _, err := RegionsFromLabels(short, []int{1}, nil); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("short map: error = %v, want ErrInvalidRegion", err)
	}
}
