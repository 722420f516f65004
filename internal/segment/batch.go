package segment

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/core-column-mcp/internal/column"
	"golang.org/x/sync/errgroup"
)

// Input is one photograph for SegmentMany. Exactly one of Path and Image is set.
type Input struct {
	Path  string
	Image image.Image
	Range DepthRange
}

func (in Input) name(i int) string {
	if in.Path != "" {
		return in.Path
	}
	return fmt.Sprintf("image %d", i)
}

// SegmentMany segments a sequence of photographs and stacks the results in
// input order.
//
// Ranges are checked up front: each must be valid, must not start above the
// previous base, and, when an add tolerance is configured, must not leave a
// larger gap than it. Photographs are then segmented concurrently, bounded by
// the configured concurrency, and folded on the calling goroutine. The first
// error cancels the remaining work.
func (s *Segmenter) SegmentMany(ctx context.Context, inputs []Input) (*column.Column, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if err := s.checkInputs(inputs); err != nil {
		return nil, err
	}

	results := make([]*column.Column, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			var (
				col *column.Column
				err error
			)
			if in.Path != "" {
				col, err = s.SegmentFile(gctx, in.Path, in.Range)
			} else {
				col, err = s.Segment(gctx, in.Image, in.Range)
			}
			if err != nil {
				return fmt.Errorf("%s [%g, %g]: %w", in.name(i), in.Range.Top, in.Range.Base, err)
			}
			s.logger.Debug("segmented", "input", in.name(i), "rows", col.Height())
			results[i] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return column.Stack(results...)
}

func (s *Segmenter) checkInputs(inputs []Input) error {
	for i, in := range inputs {
		if (in.Path == "") == (in.Image == nil) {
			return fmt.Errorf("input %d: set exactly one of path and image", i)
		}
		if err := in.Range.Validate(); err != nil {
			return fmt.Errorf("%s: %w", in.name(i), err)
		}
		if i == 0 {
			continue
		}
		prev := inputs[i-1].Range
		gap := in.Range.Top - prev.Base
		if gap < 0 {
			return fmt.Errorf("%w: %s starts at %g, above the previous base %g",
				column.ErrDepthOrder, in.name(i), in.Range.Top, prev.Base)
		}
		if s.addTol != nil && gap > *s.addTol {
			return fmt.Errorf("%w: gap of %g before %s exceeds add tolerance %g",
				column.ErrGapTooLarge, gap, in.name(i), *s.addTol)
		}
	}
	return nil
}
