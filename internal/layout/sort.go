package layout

import (
	"cmp"
	"slices"
)

// Axis is a pixel axis of an image.
type Axis int

const (
	// AxisX runs along pixel columns.
	AxisX Axis = iota
	// AxisY runs along pixel rows.
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// extent returns the [low, high) interval of r along the axis.
func (a Axis) extent(r Region) (low, high int) {
	if a == AxisX {
		return r.Box.Min.X, r.Box.Max.X
	}
	return r.Box.Min.Y, r.Box.Max.Y
}

// SortAxis is the axis along which columns laid out in order get deeper.
func SortAxis(order Direction) Axis {
	if order == LeftToRight {
		return AxisX
	}
	return AxisY
}

// CropAxis is the axis perpendicular to the sort axis, along which crops are
// extended to their endpoints.
func CropAxis(order Direction) Axis {
	if order == LeftToRight {
		return AxisY
	}
	return AxisX
}

// SortRegions returns the regions in depth order: ascending top edge for
// TopToBottom, ascending left edge for LeftToRight. Ties keep their input
// order. The input slice is not modified.
func SortRegions(regions []Region, order Direction) []Region {
	axis := SortAxis(order)
	out := slices.Clone(regions)
	slices.SortStableFunc(out, func(a, b Region) int {
		la, _ := axis.extent(a)
		lb, _ := axis.extent(b)
		return cmp.Compare(la, lb)
	})
	return out
}
