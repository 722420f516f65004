package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is the direction in which depth increases, either across a set of
// columns (Config.Order) or within a single column (Config.Orientation).
type Direction string

const (
	// TopToBottom means depth increases down the image.
	TopToBottom Direction = "t2b"
	// LeftToRight means depth increases across the image from left to right.
	LeftToRight Direction = "l2r"
)

// ParseDirection accepts "t2b" or "l2r".
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.valid() {
		return "", fmt.Errorf("%w: direction %q, want t2b or l2r", ErrInvalidConfig, s)
	}
	return d, nil
}

func (d Direction) valid() bool {
	return d == TopToBottom || d == LeftToRight
}

// EndpointsKind selects how crop endpoints are found.
type EndpointsKind int

const (
	// Explicit endpoints are fixed pixel coordinates.
	Explicit EndpointsKind = iota
	// ClassRef endpoints come from the best detection of a reference class.
	ClassRef
	// Auto endpoints span the union of the column regions.
	Auto
	// AutoAll endpoints span the union of every detected region.
	AutoAll
)

// String returns the configuration keyword for the kind.
func (k EndpointsKind) String() string {
	switch k {
	case Explicit:
		return "explicit"
	case ClassRef:
		return "class"
	case Auto:
		return "auto"
	case AutoAll:
		return "auto_all"
	default:
		return fmt.Sprintf("EndpointsKind(%d)", int(k))
	}
}

// Endpoints is the crop endpoint strategy along the axis perpendicular to the
// sort axis. Low and High are only meaningful for Explicit, Class only for
// ClassRef.
type Endpoints struct {
	Kind  EndpointsKind
	Low   int
	High  int
	Class string
}

// ExplicitEndpoints returns fixed pixel endpoints.
func ExplicitEndpoints(low, high int) Endpoints {
	return Endpoints{Kind: Explicit, Low: low, High: high}
}

// ClassEndpoints returns endpoints taken from the named reference class.
func ClassEndpoints(class string) Endpoints {
	return Endpoints{Kind: ClassRef, Class: class}
}

// AutoEndpoints returns the union extent of the column regions.
func AutoEndpoints() Endpoints { return Endpoints{Kind: Auto} }

// AutoAllEndpoints returns the union extent of all detected regions.
func AutoAllEndpoints() Endpoints { return Endpoints{Kind: AutoAll} }

// ParseEndpoints parses "auto", "auto_all", "<low>,<high>" or a class name.
func ParseEndpoints(s string) (Endpoints, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return Endpoints{}, fmt.Errorf("%w: empty endpoints", ErrInvalidConfig)
	case "auto":
		return AutoEndpoints(), nil
	case "auto_all":
		return AutoAllEndpoints(), nil
	}

	lowStr, highStr, ok := strings.Cut(s, ",")
	if !ok {
		return ClassEndpoints(s), nil
	}
	low, err := strconv.Atoi(strings.TrimSpace(lowStr))
	if err != nil {
		return Endpoints{}, fmt.Errorf("%w: endpoints %q: %v", ErrInvalidConfig, s, err)
	}
	high, err := strconv.Atoi(strings.TrimSpace(highStr))
	if err != nil {
		return Endpoints{}, fmt.Errorf("%w: endpoints %q: %v", ErrInvalidConfig, s, err)
	}
	return ExplicitEndpoints(low, high), nil
}

// String returns the form accepted by ParseEndpoints.
func (e Endpoints) String() string {
	switch e.Kind {
	case Explicit:
		return fmt.Sprintf("%d,%d", e.Low, e.High)
	case ClassRef:
		return e.Class
	default:
		return e.Kind.String()
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Endpoints) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Endpoints) UnmarshalText(text []byte) error {
	parsed, err := ParseEndpoints(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// UnmarshalTOML accepts either a string (see ParseEndpoints) or a two-integer
// array of explicit pixel endpoints.
func (e *Endpoints) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		return e.UnmarshalText([]byte(val))
	case []any:
		if len(val) != 2 {
			return fmt.Errorf("%w: endpoints array needs 2 values, got %d", ErrInvalidConfig, len(val))
		}
		var pair [2]int
		for i, item := range val {
			n, ok := item.(int64)
			if !ok {
				return fmt.Errorf("%w: endpoints array value %v is not an integer", ErrInvalidConfig, item)
			}
			pair[i] = int(n)
		}
		*e = ExplicitEndpoints(pair[0], pair[1])
		return nil
	default:
		return fmt.Errorf("%w: endpoints must be a string or an array, got %T", ErrInvalidConfig, v)
	}
}

// Config describes how column regions are laid out in a photograph.
type Config struct {
	// Order is the direction in which successive columns get deeper.
	Order Direction `toml:"order" json:"order"`

	// Orientation is the direction in which depth increases inside one column.
	Orientation Direction `toml:"orientation" json:"orientation"`

	// ColumnHeight is the depth span of one full column.
	ColumnHeight float64 `toml:"column_height" json:"column_height"`

	// ColumnClass is the detector class name of column regions.
	ColumnClass string `toml:"column_class" json:"column_class"`

	// Endpoints selects the crop extent perpendicular to Order.
	Endpoints Endpoints `toml:"endpoints" json:"endpoints"`
}

// DefaultConfig returns columns stacked top to bottom, each running left to
// right, one depth unit tall, cropped to the extent of the best "tray".
func DefaultConfig() Config {
	return Config{
		Order:        TopToBottom,
		Orientation:  LeftToRight,
		ColumnHeight: 1.0,
		ColumnClass:  "col",
		Endpoints:    ClassEndpoints("tray"),
	}
}

// Validate checks the configuration against a class table.
func (c Config) Validate(classes Classes) error {
	if !c.Order.valid() {
		return fmt.Errorf("%w: order %q, want t2b or l2r", ErrInvalidConfig, c.Order)
	}
	if !c.Orientation.valid() {
		return fmt.Errorf("%w: orientation %q, want t2b or l2r", ErrInvalidConfig, c.Orientation)
	}
	if c.Order == c.Orientation {
		return fmt.Errorf("%w: order and orientation are both %s", ErrInvalidConfig, c.Order)
	}
	if !(c.ColumnHeight > 0) {
		return fmt.Errorf("%w: column height %g must be positive", ErrInvalidConfig, c.ColumnHeight)
	}
	if _, ok := classes.ID(c.ColumnClass); !ok {
		return fmt.Errorf("%w: column class %q not in %v", ErrInvalidConfig, c.ColumnClass, classes)
	}

	switch e := c.Endpoints; e.Kind {
	case Explicit:
		if e.Low < 0 || e.High <= e.Low {
			return fmt.Errorf("%w: explicit endpoints (%d, %d) must satisfy 0 <= low < high",
				ErrInvalidConfig, e.Low, e.High)
		}
	case ClassRef:
		if _, ok := classes.ID(e.Class); !ok {
			return fmt.Errorf("%w: endpoints class %q not in %v", ErrInvalidConfig, e.Class, classes)
		}
	case Auto, AutoAll:
	default:
		return fmt.Errorf("%w: unknown endpoints kind %d", ErrInvalidConfig, int(e.Kind))
	}
	return nil
}

// Background is the reserved name of class 0.
const Background = "BG"

// Classes maps class ids to names. Index 0 is always the background.
type Classes []string

// NewClasses builds a class table from detector class names, prepending the
// background class unless names already start with it.
func NewClasses(names ...string) Classes {
	if len(names) > 0 && names[0] == Background {
		return append(Classes(nil), names...)
	}
	return append(Classes{Background}, names...)
}

// DefaultClasses returns BG, col and tray.
func DefaultClasses() Classes {
	return NewClasses("col", "tray")
}

// ID returns the id of a non-background class name.
func (c Classes) ID(name string) (int, bool) {
	for i, n := range c {
		if i > 0 && n == name {
			return i, true
		}
	}
	return 0, false
}

// Name returns the class name for id, or "" when id is out of range.
func (c Classes) Name(id int) string {
	if id < 0 || id >= len(c) {
		return ""
	}
	return c[id]
}
