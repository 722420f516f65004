package column

import (
	"errors"

	"github.com/ironsheep/core-column-mcp/internal/imaging"
)

var (
	// ErrInvalidShape is returned when the image is not a valid 2D or 3D array.
	ErrInvalidShape = imaging.ErrInvalidShape

	// ErrInvalidDepths is returned when depths do not match the image rows, are
	// not monotonic, or fall outside [top, base].
	ErrInvalidDepths = errors.New("invalid depths")

	// ErrInvalidTolerance is returned for a negative add tolerance.
	ErrInvalidTolerance = errors.New("invalid add tolerance")

	// ErrInvalidAddMode is returned for an add mode other than fill or collapse.
	ErrInvalidAddMode = errors.New("invalid add mode")

	// ErrMissingDepthInfo is returned when neither depths nor a top/base range
	// is available.
	ErrMissingDepthInfo = errors.New("missing depth information")

	// ErrDepthOrder is returned when the right-hand column starts above the
	// base of the left-hand column.
	ErrDepthOrder = errors.New("depth order violation")

	// ErrGapTooLarge is returned when the gap between two columns exceeds the
	// left-hand column's add tolerance.
	ErrGapTooLarge = errors.New("depth gap too large")

	// ErrInvalidRange is returned for slice bounds that are out of order or do
	// not overlap the column.
	ErrInvalidRange = errors.New("invalid depth range")

	// ErrNoColumns is returned by Stack when given no columns.
	ErrNoColumns = errors.New("no columns to stack")

	// ErrNothingToSave is returned when Save is asked to write no artifacts.
	ErrNothingToSave = errors.New("nothing to save")
)
