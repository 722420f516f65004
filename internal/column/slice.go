package column

import (
	"fmt"
	"iter"
	"slices"

	"github.com/ironsheep/core-column-mcp/internal/imaging"
)

// Slice returns the part of the column between top and base.
//
// The receiver itself is returned when [top, base] equals or contains the
// column's range. Otherwise the rows whose depths fall inside [top, base] are
// copied into a new column whose range is the request clamped to the current
// range; add tolerance and mode carry over.
//
// ErrInvalidRange is returned when base <= top, when the request lies entirely
// above or below the column, or when no row falls inside it.
func (c *Column) Slice(top, base float64) (*Column, error) {
	if base <= top {
		return nil, fmt.Errorf("%w: slice base %g must be below top %g", ErrInvalidRange, base, top)
	}
	if top >= c.base {
		return nil, fmt.Errorf("%w: cannot slice to top %g with base %g", ErrInvalidRange, top, c.base)
	}
	if base <= c.top {
		return nil, fmt.Errorf("%w: cannot slice to base %g with top %g", ErrInvalidRange, base, c.top)
	}

	if top <= c.top && base >= c.base {
		return c, nil
	}

	rows := make([]int, 0, len(c.depths))
	for i, d := range c.depths {
		if d >= top && d <= base {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows between %g and %g in column (%g, %g)",
			ErrInvalidRange, top, base, c.top, c.base)
	}

	depths := make([]float64, len(rows))
	for i, r := range rows {
		depths[i] = c.depths[r]
	}

	return New(c.img.SelectRows(rows),
		WithDepths(depths),
		WithRange(max(top, c.top), min(base, c.base)),
		WithAddTolerance(c.addTol),
		WithAddMode(c.addMode),
	)
}

// SliceTop keeps everything at or below top.
func (c *Column) SliceTop(top float64) (*Column, error) {
	return c.Slice(top, c.base)
}

// SliceBase keeps everything at or above base.
func (c *Column) SliceBase(base float64) (*Column, error) {
	return c.Slice(c.top, base)
}

// Chunks yields the image and depths in windows of size rows, starting step
// rows apart. A step of zero or less equals size. The last window may be
// shorter than size. Yielded values are copies.
func (c *Column) Chunks(size, step int) iter.Seq2[*imaging.Raster, []float64] {
	if step <= 0 {
		step = size
	}
	return func(yield func(*imaging.Raster, []float64) bool) {
		if size <= 0 {
			return
		}
		for i := 0; i < c.img.Height; i += step {
			end := min(i+size, c.img.Height)
			if !yield(c.img.RowRange(i, end), slices.Clone(c.depths[i:end])) {
				return
			}
		}
	}
}
