package column

import (
	"fmt"
	"math"
	"slices"

	"github.com/ironsheep/core-column-mcp/internal/imaging"
)

// Add returns a new column with o stacked below c. See Combine.
func (c *Column) Add(o *Column) (*Column, error) {
	return Combine(c, o)
}

// Combine stacks rhs below lhs and returns the result as a new column.
//
// The gap between the columns is rhs.Top() - lhs.Base(). A negative gap fails
// with ErrDepthOrder and a gap larger than lhs.AddTolerance() fails with
// ErrGapTooLarge.
//
// In Fill mode a positive gap is bridged with floor(gap / spacing) zero rows,
// where spacing is the mean of both columns' row spacings; their depths are
// spaced evenly across the gap. No rows are inserted when the gap is smaller
// than one row. In Collapse mode the rows are concatenated directly.
//
// The narrower image is zero-padded on its right edge. The result takes its
// top and add mode from lhs, its base from rhs, and the larger of the two
// add tolerances. Combine is not commutative.
func Combine(lhs, rhs *Column) (*Column, error) {
	gap := rhs.top - lhs.base
	if gap < 0 {
		return nil, fmt.Errorf("%w: cannot add shallower (%g, %g) below deeper (%g, %g)",
			ErrDepthOrder, rhs.top, rhs.base, lhs.top, lhs.base)
	}
	if gap > lhs.addTol {
		return nil, fmt.Errorf("%w: gap of %g between base %g and top %g exceeds add tolerance %g",
			ErrGapTooLarge, gap, lhs.base, rhs.top, lhs.addTol)
	}

	img := lhs.img
	depths := lhs.depths

	if lhs.addMode == Fill && gap > 0 {
		fillDD := (lhs.RowSpacing() + rhs.RowSpacing()) / 2
		if fillDD > 0 {
			if rows := int(math.Floor(gap / fillDD)); rows > 0 {
				start := lhs.depths[len(lhs.depths)-1] + fillDD
				stop := max(rhs.depths[0]-fillDD, start)
				fill := imaging.NewRaster(rows, lhs.img.Width, lhs.img.Channels)

				var err error
				if img, err = imaging.VStack(img, fill); err != nil {
					return nil, err
				}
				depths = slices.Concat(depths, linspace(start, stop, rows))
			}
		}
	}

	img, err := imaging.VStack(img, rhs.img)
	if err != nil {
		return nil, err
	}

	return New(img,
		WithDepths(slices.Concat(depths, rhs.depths)),
		WithRange(lhs.top, rhs.base),
		WithAddTolerance(max(lhs.addTol, rhs.addTol)),
		WithAddMode(lhs.addMode),
	)
}

// Stack left-folds cols with Combine, in order. The first column is the
// shallowest and supplies the add mode for every step.
func Stack(cols ...*Column) (*Column, error) {
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}
	acc := cols[0]
	for i, next := range cols[1:] {
		var err error
		if acc, err = Combine(acc, next); err != nil {
			return nil, fmt.Errorf("stacking column %d of %d: %w", i+2, len(cols), err)
		}
	}
	return acc, nil
}
