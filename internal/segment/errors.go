package segment

import "errors"

var (
	// ErrInvalidDepthRange is returned for a depth range that is empty,
	// reversed, or has a bound of exactly zero, which usually means the depths
	// were never filled in.
	ErrInvalidDepthRange = errors.New("invalid depth range")

	// ErrColumnCountMismatch is returned when the detector finds a different
	// number of columns than the depth range and column height call for.
	ErrColumnCountMismatch = errors.New("column count mismatch")

	// ErrNoInputs is returned by SegmentMany for an empty input list.
	ErrNoInputs = errors.New("no images to segment")
)
