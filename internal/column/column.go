package column

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ironsheep/core-column-mcp/internal/imaging"
	"gonum.org/v1/gonum/floats"
)

// AddMode controls how a column absorbs a depth gap when another column is
// added below it.
type AddMode int

const (
	// Fill inserts blank rows with interpolated depths to bridge a gap.
	Fill AddMode = iota
	// Collapse concatenates rows directly, leaving the gap implicit in the depths.
	Collapse
)

// String returns "fill" or "collapse".
func (m AddMode) String() string {
	switch m {
	case Fill:
		return "fill"
	case Collapse:
		return "collapse"
	default:
		return fmt.Sprintf("AddMode(%d)", int(m))
	}
}

// ParseAddMode parses "fill" or "collapse" (case-insensitive). An empty string
// selects Fill.
func ParseAddMode(s string) (AddMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fill":
		return Fill, nil
	case "collapse":
		return Collapse, nil
	default:
		return Fill, fmt.Errorf("%w: %q, want fill or collapse", ErrInvalidAddMode, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m AddMode) MarshalText() ([]byte, error) {
	if m != Fill && m != Collapse {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAddMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *AddMode) UnmarshalText(text []byte) error {
	mode, err := ParseAddMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Column is a depth-registered image of a single column of core material.
//
// Each image row has one depth. Depths never decrease going down the image,
// and all of them lie within [Top, Base]. Columns are immutable: Add and the
// Slice methods return new columns and never modify their receivers.
type Column struct {
	img     *imaging.Raster
	depths  []float64
	top     float64
	base    float64
	addTol  float64
	addMode AddMode
}

type settings struct {
	depths  []float64
	top     float64
	base    float64
	hasTop  bool
	hasBase bool
	addTol  *float64
	addMode AddMode
}

// Option configures New and Load.
type Option func(*settings)

// WithDepths supplies one depth per image row.
func WithDepths(depths []float64) Option {
	return func(s *settings) {
		s.depths = depths
	}
}

// WithRange supplies the top and base depths. Without WithDepths, row depths
// are spaced evenly between them.
func WithRange(top, base float64) Option {
	return func(s *settings) {
		s.top, s.base = top, base
		s.hasTop, s.hasBase = true, true
	}
}

// WithTop supplies only the top depth; it is only useful together with WithDepths.
func WithTop(top float64) Option {
	return func(s *settings) {
		s.top, s.hasTop = top, true
	}
}

// WithBase supplies only the base depth; it is only useful together with WithDepths.
func WithBase(base float64) Option {
	return func(s *settings) {
		s.base, s.hasBase = base, true
	}
}

// WithAddTolerance sets the largest depth gap allowed when adding a column
// below this one. The default is twice the median row spacing.
func WithAddTolerance(tol float64) Option {
	return func(s *settings) {
		s.addTol = &tol
	}
}

// WithAddMode sets the add mode. The default is Fill.
func WithAddMode(mode AddMode) Option {
	return func(s *settings) {
		s.addMode = mode
	}
}

// New validates its inputs and builds a Column.
//
// Depth information must come from WithDepths, WithRange, or both. When only
// depths are given, top and base default to the first and last depth.
//
// Errors (testable with errors.Is):
//   - ErrInvalidShape: img is nil or not a 1- or 3-channel raster
//   - ErrMissingDepthInfo: neither depths nor a complete top/base pair
//   - ErrInvalidDepths: depth count differs from the row count, depths
//     decrease, fall outside [top, base], or base <= top
//   - ErrInvalidTolerance: negative add tolerance
//   - ErrInvalidAddMode: unknown add mode
func New(img *imaging.Raster, opts ...Option) (*Column, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	if err := img.Validate(); err != nil {
		return nil, err
	}
	if s.addMode != Fill && s.addMode != Collapse {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAddMode, int(s.addMode))
	}

	c := &Column{img: img, addMode: s.addMode}

	switch {
	case s.depths == nil && !(s.hasTop && s.hasBase):
		return nil, fmt.Errorf("%w: supply depths, or both top and base", ErrMissingDepthInfo)
	case s.depths == nil:
		c.top, c.base = s.top, s.base
		c.depths = linspace(s.top, s.base, img.Height)
	default:
		c.depths = slices.Clone(s.depths)
		c.top, c.base = s.top, s.base
		if !s.hasTop && len(c.depths) > 0 {
			c.top = c.depths[0]
		}
		if !s.hasBase && len(c.depths) > 0 {
			c.base = c.depths[len(c.depths)-1]
		}
	}

	if err := c.validateDepths(); err != nil {
		return nil, err
	}

	if s.addTol != nil {
		c.addTol = *s.addTol
	} else {
		c.addTol = 2 * c.RowSpacing()
	}
	if c.addTol < 0 || math.IsNaN(c.addTol) {
		return nil, fmt.Errorf("%w: %g cannot be negative", ErrInvalidTolerance, c.addTol)
	}

	return c, nil
}

func (c *Column) validateDepths() error {
	if len(c.depths) != c.img.Height {
		return fmt.Errorf("%w: %d depths for an image with %d rows", ErrInvalidDepths, len(c.depths), c.img.Height)
	}
	if !(c.base > c.top) {
		return fmt.Errorf("%w: top %g and base %g must be depth ordered", ErrInvalidDepths, c.top, c.base)
	}
	for i := 1; i < len(c.depths); i++ {
		if c.depths[i] < c.depths[i-1] {
			return fmt.Errorf("%w: not monotonic at row %d (%g after %g)", ErrInvalidDepths, i, c.depths[i], c.depths[i-1])
		}
	}
	if lo := c.depths[0]; lo < c.top {
		return fmt.Errorf("%w: depth %g is above top %g", ErrInvalidDepths, lo, c.top)
	}
	if hi := c.depths[len(c.depths)-1]; hi > c.base {
		return fmt.Errorf("%w: depth %g is below base %g", ErrInvalidDepths, hi, c.base)
	}
	return nil
}

// linspace returns n evenly spaced values from lo to hi inclusive. A single
// value is lo.
func linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{lo}
	}
	out := floats.Span(make([]float64, n), lo, hi)
	// Span accumulates rounding error; pin the endpoint so it never overshoots hi.
	out[n-1] = hi
	return out
}

// Image returns the column image. The raster is shared; treat it as read-only.
func (c *Column) Image() *imaging.Raster { return c.img }

// Depths returns a copy of the per-row depths.
func (c *Column) Depths() []float64 { return slices.Clone(c.depths) }

// Top returns the top (shallowest) depth.
func (c *Column) Top() float64 { return c.top }

// Base returns the base (deepest) depth.
func (c *Column) Base() float64 { return c.base }

// DepthRange returns (Top, Base).
func (c *Column) DepthRange() (top, base float64) { return c.top, c.base }

// Height returns the number of image rows.
func (c *Column) Height() int { return c.img.Height }

// Width returns the image width in pixels.
func (c *Column) Width() int { return c.img.Width }

// Channels returns 1 for grayscale and 3 for RGB columns.
func (c *Column) Channels() int { return c.img.Channels }

// AddTolerance returns the largest gap accepted when adding below this column.
func (c *Column) AddTolerance() float64 { return c.addTol }

// AddMode returns the add mode.
func (c *Column) AddMode() AddMode { return c.addMode }

// RowSpacing returns the median depth difference between adjacent rows. A
// single-row column reports its full depth span.
func (c *Column) RowSpacing() float64 {
	if len(c.depths) < 2 {
		return c.base - c.top
	}
	diffs := make([]float64, len(c.depths)-1)
	floats.SubTo(diffs, c.depths[1:], c.depths[:len(c.depths)-1])
	return median(diffs)
}

func median(x []float64) float64 {
	s := slices.Clone(x)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// String summarizes the column for logs and error messages.
func (c *Column) String() string {
	return fmt.Sprintf("Column{shape: %v, range: (%.3f, %.3f), add: %.4f %s}",
		c.img.Shape(), c.top, c.base, c.addTol, c.addMode)
}

const (
	relTol = 1e-5
	absTol = 1e-8
)

func isClose(a, b float64) bool {
	return math.Abs(a-b) <= absTol+relTol*math.Abs(b)
}

// Equal reports whether two columns are equivalent: same add mode, add
// tolerance, top, base and depths within floating point tolerance, and the
// same image shape and pixels.
func (c *Column) Equal(o *Column) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.addMode != o.addMode {
		return false
	}
	if !isClose(c.addTol, o.addTol) || !isClose(c.top, o.top) || !isClose(c.base, o.base) {
		return false
	}
	if c.Height() != o.Height() {
		return false
	}
	for i := range c.depths {
		if !isClose(c.depths[i], o.depths[i]) {
			return false
		}
	}
	return c.img.Equal(o.img)
}
