package layout

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ironsheep/core-column-mcp/internal/imaging"
)

func labelsOf(regions []Region) []int {
	out := make([]int, len(regions))
	for i, r := range regions {
		out[i] = r.Label
	}
	return out
}

func TestSortRegions(t *testing.T) {
	regions := []Region{
		{Label: 1, Box: image.Rect(50, 20, 60, 30)},
		{Label: 2, Box: image.Rect(10, 40, 20, 50)},
		{Label: 3, Box: image.Rect(30, 0, 40, 10)},
	}

	tests := []struct {
		order Direction
		want  []int
	}{
		{TopToBottom, []int{3, 1, 2}},
		{LeftToRight, []int{2, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			got := SortRegions(regions, tt.order)
			if diff := cmp.Diff(tt.want, labelsOf(got)); diff != "" {
				t.Errorf("SortRegions(%s) order mismatch (-want +got):\n%s", tt.order, diff)
			}
		})
	}

	if diff := cmp.Diff([]int{1, 2, 3}, labelsOf(regions)); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestSortRegions_Stable(t *testing.T) {
	regions := []Region{
		{Label: 1, Box: image.Rect(0, 5, 1, 6)},
		{Label: 2, Box: image.Rect(0, 0, 1, 1)},
		{Label: 3, Box: image.Rect(9, 5, 10, 6)},
	}
	got := labelsOf(SortRegions(regions, TopToBottom))
	if diff := cmp.Diff([]int{2, 1, 3}, got); diff != "" {
		t.Errorf("ties must keep input order (-want +got):\n%s", diff)
	}
}

func TestCropAxis(t *testing.T) {
	if got := CropAxis(TopToBottom); got != AxisX {
		t.Errorf("CropAxis(t2b) = %s, want x", got)
	}
	if got := CropAxis(LeftToRight); got != AxisY {
		t.Errorf("CropAxis(l2r) = %s, want y", got)
	}
}

func TestResolveEndpoints(t *testing.T) {
	classes := DefaultClasses()
	columns := []Region{
		{Label: 1, ClassID: 1, Score: 0.9, Box: image.Rect(100, 10, 900, 60)},
		{Label: 2, ClassID: 1, Score: 0.9, Box: image.Rect(80, 70, 850, 120)},
	}
	trays := []Region{
		{Label: 3, ClassID: 2, Score: 0.5, Box: image.Rect(20, 0, 990, 130)},
		{Label: 4, ClassID: 2, Score: 0.8, Box: image.Rect(50, 5, 950, 125)},
	}
	all := append(append([]Region{}, columns...), trays...)

	withEndpoints := func(order Direction, e Endpoints) Config {
		cfg := DefaultConfig()
		cfg.Order = order
		if order == LeftToRight {
			cfg.Orientation = TopToBottom
		}
		cfg.Endpoints = e
		return cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		columns []Region
		want    Span
	}{
		{"explicit", withEndpoints(TopToBottom, ExplicitEndpoints(815, 6775)), columns,
			Span{Low: 815, High: 6775, Strategy: Explicit}},
		{"class picks best score", withEndpoints(TopToBottom, ClassEndpoints("tray")), columns,
			Span{Low: 50, High: 950, Strategy: ClassRef}},
		{"class along y", withEndpoints(LeftToRight, ClassEndpoints("tray")), columns,
			Span{Low: 5, High: 125, Strategy: ClassRef}},
		{"auto", withEndpoints(TopToBottom, AutoEndpoints()), columns,
			Span{Low: 80, High: 900, Strategy: Auto}},
		{"auto along y", withEndpoints(LeftToRight, AutoEndpoints()), columns,
			Span{Low: 10, High: 120, Strategy: Auto}},
		{"auto all", withEndpoints(TopToBottom, AutoAllEndpoints()), columns,
			Span{Low: 20, High: 990, Strategy: AutoAll}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveEndpoints(tt.cfg, tt.columns, all, classes)
			if err != nil {
				t.Fatalf("ResolveEndpoints() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveEndpoints() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveEndpoints_ClassFallback(t *testing.T) {
	columns := []Region{
		{Label: 1, ClassID: 1, Box: image.Rect(100, 10, 900, 60)},
		{Label: 2, ClassID: 1, Box: image.Rect(80, 70, 850, 120)},
	}

	got, err := ResolveEndpoints(DefaultConfig(), columns, columns, DefaultClasses())
	if err != nil {
		t.Fatalf("ResolveEndpoints() error = %v", err)
	}
	want := Span{Low: 80, High: 900, Strategy: ClassRef, Fallback: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fallback span mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveEndpoints_SkipsEmptyBoxes(t *testing.T) {
	columns := []Region{
		{Label: 1, ClassID: 1, Score: 0.9, Box: image.Rect(100, 10, 900, 60)},
		{Label: 2, ClassID: 1, Score: 0.9, Box: image.Rect(80, 70, 850, 120)},
	}
	tray := Region{Label: 3, ClassID: 2, Score: 0.7, Box: image.Rect(50, 5, 950, 125)}
	blankTray := Region{Label: 4, ClassID: 2, Score: 0.99}
	all := []Region{columns[0], blankTray, columns[1], tray}

	cfg := DefaultConfig()
	got, err := ResolveEndpoints(cfg, columns, all, DefaultClasses())
	if err != nil {
		t.Fatalf("class: error = %v", err)
	}
	if diff := cmp.Diff(Span{Low: 50, High: 950, Strategy: ClassRef}, got); diff != "" {
		t.Errorf("class span mismatch (-want +got):\n%s", diff)
	}

	// Only a blank tray: same as no tray at all.
	got, err = ResolveEndpoints(cfg, columns, []Region{columns[0], columns[1], blankTray}, DefaultClasses())
	if err != nil {
		t.Fatalf("blank class: error = %v", err)
	}
	if diff := cmp.Diff(Span{Low: 80, High: 900, Strategy: ClassRef, Fallback: true}, got); diff != "" {
		t.Errorf("blank class span mismatch (-want +got):\n%s", diff)
	}

	cfg.Endpoints = AutoAllEndpoints()
	got, err = ResolveEndpoints(cfg, columns, []Region{blankTray, columns[0], columns[1]}, DefaultClasses())
	if err != nil {
		t.Fatalf("auto all: error = %v", err)
	}
	if diff := cmp.Diff(Span{Low: 80, High: 900, Strategy: AutoAll}, got); diff != "" {
		t.Errorf("auto all span mismatch (-want +got):\n%s", diff)
	}

	if _, err := ResolveEndpoints(cfg, columns, []Region{blankTray}, DefaultClasses()); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("only blank regions: error = %v, want ErrInvalidRegion", err)
	}
}

func TestResolveEndpoints_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoints = AutoEndpoints()
	if _, err := ResolveEndpoints(cfg, nil, nil, DefaultClasses()); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("no regions: error = %v, want ErrInvalidRegion", err)
	}

	cfg.Endpoints = ClassEndpoints("scale")
	if _, err := ResolveEndpoints(cfg, nil, nil, DefaultClasses()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown class: error = %v, want ErrInvalidConfig", err)
	}
}

// numberedRaster returns a single-channel raster whose pixel i has value i+1.
func numberedRaster(w, h int) *imaging.Raster {
	r := imaging.NewRaster(h, w, 1)
	for i := range r.Pix {
		r.Pix[i] = uint8(i + 1)
	}
	return r
}

func TestCropRegion(t *testing.T) {
	img := numberedRaster(6, 4)
	labels, err := MasksToLabels([]*image.Gray{
		rectMask(6, 4, image.Rect(2, 0, 4, 2)),
		rectMask(6, 4, image.Rect(0, 2, 6, 4)),
	})
	if err != nil {
		t.Fatalf("MasksToLabels() error = %v", err)
	}
	regions, err := RegionsFromLabels(labels, []int{1, 1}, nil)
	if err != nil {
		t.Fatalf("RegionsFromLabels() error = %v", err)
	}

	t.Run("extends along x and masks", func(t *testing.T) {
		got, err := CropRegion(img, labels, regions[0], AxisX, Span{Low: 1, High: 5})
		if err != nil {
			t.Fatalf("CropRegion() error = %v", err)
		}
		if got.Width != 4 || got.Height != 2 {
			t.Fatalf("crop is %dx%d, want 4x2", got.Width, got.Height)
		}
		want := []uint8{
			0, 3, 4, 0,
			0, 9, 10, 0,
		}
		if diff := cmp.Diff(want, got.Pix); diff != "" {
			t.Errorf("crop pixels mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("never shrinks", func(t *testing.T) {
		got, err := CropRegion(img, labels, regions[1], AxisX, Span{Low: 2, High: 3})
		if err != nil {
			t.Fatalf("CropRegion() error = %v", err)
		}
		if got.Width != 6 || got.Height != 2 {
			t.Errorf("crop is %dx%d, want 6x2", got.Width, got.Height)
		}
	})

	t.Run("clamps to the image", func(t *testing.T) {
		got, err := CropRegion(img, labels, regions[0], AxisY, Span{Low: -10, High: 100})
		if err != nil {
			t.Fatalf("CropRegion() error = %v", err)
		}
		if got.Width != 2 || got.Height != 4 {
			t.Errorf("crop is %dx%d, want 2x4", got.Width, got.Height)
		}
		// Rows 2 and 3 belong to the other region and are zeroed.
		for _, v := range got.Pix[2*2:] {
			if v != 0 {
				t.Fatalf("pixel outside the region mask = %d, want 0", v)
			}
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		_, err := CropRegion(numberedRaster(5, 4), labels, regions[0], AxisX, Span{})
		if !errors.Is(err, ErrInvalidRegion) {
			t.Errorf("error = %v, want ErrInvalidRegion", err)
		}
	})

	t.Run("outside the image", func(t *testing.T) {
		r := Region{Label: 1, Box: image.Rect(10, 10, 12, 12)}
		_, err := CropRegion(img, labels, r, AxisX, Span{Low: 10, High: 12})
		if !errors.Is(err, ErrInvalidRegion) {
			t.Errorf("error = %v, want ErrInvalidRegion", err)
		}
	})
}

func TestOrient(t *testing.T) {
	img := &imaging.Raster{Height: 2, Width: 3, Channels: 1, Pix: []uint8{
		1, 2, 3,
		4, 5, 6,
	}}

	if got := Orient(img, TopToBottom); got != img {
		t.Error("Orient(t2b) should return its input")
	}

	got := Orient(img, LeftToRight)
	want := &imaging.Raster{Height: 3, Width: 2, Channels: 1, Pix: []uint8{
		4, 1,
		5, 2,
		6, 3,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Orient(l2r) mismatch (-want +got):\n%s", diff)
	}
}
