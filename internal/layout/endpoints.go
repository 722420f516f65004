package layout

import (
	"fmt"
)

// Span is a resolved pair of crop endpoints along the crop axis.
type Span struct {
	Low  int
	High int

	// Strategy is the strategy that produced the span.
	Strategy EndpointsKind

	// Fallback is set when a ClassRef strategy found no instance of its class
	// and the union of the column regions was used instead.
	Fallback bool
}

// ResolveEndpoints determines the crop endpoints for a set of column regions.
//
// Parameters:
//   - cfg: Layout whose Order fixes the crop axis and whose Endpoints picks the strategy.
//   - columns: Regions of the column class.
//   - all: Every detected region, used by ClassRef and AutoAll.
//   - classes: Class table used to resolve a ClassRef name.
//
// Explicit endpoints pass through unchanged. ClassRef uses the extent of the
// highest scoring instance of the class; when there is none the column union
// is used and Span.Fallback is set so the caller can warn. Auto and AutoAll
// take the union extent of columns and all regions respectively. Regions with
// an empty box take no part in ClassRef, Auto or AutoAll.
func ResolveEndpoints(cfg Config, columns, all []Region, classes Classes) (Span, error) {
	axis := CropAxis(cfg.Order)
	e := cfg.Endpoints

	switch e.Kind {
	case Explicit:
		return Span{Low: e.Low, High: e.High, Strategy: Explicit}, nil

	case ClassRef:
		id, ok := classes.ID(e.Class)
		if !ok {
			return Span{}, fmt.Errorf("%w: endpoints class %q not in %v", ErrInvalidConfig, e.Class, classes)
		}
		best := -1
		for i, r := range all {
			if r.Box.Empty() {
				continue
			}
			if r.ClassID == id && (best < 0 || r.Score > all[best].Score) {
				best = i
			}
		}
		if best < 0 {
			span, err := unionSpan(columns, axis)
			if err != nil {
				return Span{}, err
			}
			span.Strategy = ClassRef
			span.Fallback = true
			return span, nil
		}
		low, high := axis.extent(all[best])
		return Span{Low: low, High: high, Strategy: ClassRef}, nil

	case Auto:
		span, err := unionSpan(columns, axis)
		span.Strategy = Auto
		return span, err

	case AutoAll:
		span, err := unionSpan(all, axis)
		span.Strategy = AutoAll
		return span, err

	default:
		return Span{}, fmt.Errorf("%w: unknown endpoints kind %d", ErrInvalidConfig, int(e.Kind))
	}
}

// unionSpan is the smallest interval covering every non-empty region along
// axis.
func unionSpan(regions []Region, axis Axis) (Span, error) {
	var (
		span  Span
		found bool
	)
	for _, r := range regions {
		if r.Box.Empty() {
			continue
		}
		l, h := axis.extent(r)
		if !found {
			span.Low, span.High, found = l, h, true
			continue
		}
		span.Low, span.High = min(span.Low, l), max(span.High, h)
	}
	if !found {
		return Span{}, fmt.Errorf("%w: no regions to take the %s extent of", ErrInvalidRegion, axis)
	}
	return span, nil
}
