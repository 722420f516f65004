package layout

import "errors"

var (
	// ErrInvalidConfig is returned when a layout configuration is malformed or
	// refers to classes that do not exist.
	ErrInvalidConfig = errors.New("invalid layout configuration")

	// ErrInvalidRegion is returned when regions, masks or label maps cannot be
	// used for cropping.
	ErrInvalidRegion = errors.New("invalid region")
)
