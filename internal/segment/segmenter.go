package segment

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ironsheep/core-column-mcp/internal/column"
	"github.com/ironsheep/core-column-mcp/internal/detection"
	"github.com/ironsheep/core-column-mcp/internal/imaging"
	"github.com/ironsheep/core-column-mcp/internal/layout"
)

// DefaultConcurrency is the number of images SegmentMany detects at once.
const DefaultConcurrency = 4

// DepthRange is the (top, base) interval covered by one photograph.
type DepthRange struct {
	Top  float64 `json:"top"`
	Base float64 `json:"base"`
}

// Extent returns Base - Top.
func (r DepthRange) Extent() float64 { return r.Base - r.Top }

// Validate rejects empty or reversed ranges and ranges with a bound of
// exactly zero.
func (r DepthRange) Validate() error {
	if r.Top == 0 || r.Base == 0 || !(r.Extent() > 0) {
		return fmt.Errorf("%w: [%g, %g] is suspect, make sure valid depths are passed",
			ErrInvalidDepthRange, r.Top, r.Base)
	}
	return nil
}

// ExpectedTopsBases splits r into the full-height columns that cover it.
// The last column may extend past r.Base. Each base equals the next top
// exactly, so the columns stack without a gap or overlap.
func ExpectedTopsBases(r DepthRange, colHeight float64) (tops, bases []float64) {
	// The epsilon keeps 2.0000000001 columns from becoming 3.
	n := max(int(math.Ceil(r.Extent()/colHeight-1e-9)), 1)
	tops = make([]float64, n)
	bases = make([]float64, n)
	for i := range n {
		tops[i] = r.Top + float64(i)*colHeight
		bases[i] = r.Top + float64(i+1)*colHeight
	}
	return tops, bases
}

// Segmenter turns core box photographs into depth columns.
//
// A Segmenter is safe for concurrent use. SetLayout takes effect for calls
// that start after it returns.
type Segmenter struct {
	det         detection.Detector
	classes     layout.Classes
	logger      *log.Logger
	cache       *imaging.ImageCache
	concurrency int
	colOpts     []column.Option
	addTol      *float64

	mu     sync.RWMutex
	layout layout.Config
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithClasses sets the detector class table. The default is
// layout.DefaultClasses.
func WithClasses(classes layout.Classes) Option {
	return func(s *Segmenter) { s.classes = classes }
}

// WithLayout sets the layout. The default is layout.DefaultConfig.
func WithLayout(cfg layout.Config) Option {
	return func(s *Segmenter) { s.layout = cfg }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(s *Segmenter) { s.logger = l }
}

// WithCache sets the cache SegmentFile loads photographs through.
func WithCache(c *imaging.ImageCache) Option {
	return func(s *Segmenter) { s.cache = c }
}

// WithConcurrency bounds how many images SegmentMany processes at once.
func WithConcurrency(n int) Option {
	return func(s *Segmenter) { s.concurrency = n }
}

// WithAddTolerance sets the add tolerance of every column produced. It is
// also the largest depth gap SegmentMany accepts between photographs.
func WithAddTolerance(tol float64) Option {
	return func(s *Segmenter) {
		s.addTol = &tol
		s.colOpts = append(s.colOpts, column.WithAddTolerance(tol))
	}
}

// WithAddMode sets the add mode of every column produced.
func WithAddMode(mode column.AddMode) Option {
	return func(s *Segmenter) {
		s.colOpts = append(s.colOpts, column.WithAddMode(mode))
	}
}

// New creates a Segmenter around det. The layout is validated against the
// class table immediately.
func New(det detection.Detector, opts ...Option) (*Segmenter, error) {
	if det == nil {
		return nil, errors.New("segmenter needs a detector")
	}
	s := &Segmenter{
		det:         det,
		classes:     layout.DefaultClasses(),
		layout:      layout.DefaultConfig(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.cache == nil {
		s.cache = imaging.NewImageCache()
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if err := s.layout.Validate(s.classes); err != nil {
		return nil, err
	}
	return s, nil
}

// Layout returns the current layout.
func (s *Segmenter) Layout() layout.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

// SetLayout validates cfg and makes it the current layout.
func (s *Segmenter) SetLayout(cfg layout.Config) error {
	if err := cfg.Validate(s.classes); err != nil {
		return err
	}
	s.mu.Lock()
	s.layout = cfg
	s.mu.Unlock()
	return nil
}

// Classes returns the detector class table.
func (s *Segmenter) Classes() layout.Classes { return s.classes }

// Segment detects the columns in img and stacks them into one column
// covering r.
//
// The photograph must contain exactly ceil(extent / column height) column
// instances. They are sorted, cropped to common endpoints, rotated to run top
// to bottom, given consecutive depth intervals and combined in order. When
// the last interval runs past r.Base the result is cut at r.Base.
func (s *Segmenter) Segment(ctx context.Context, img image.Image, r DepthRange) (*column.Column, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	cfg := s.Layout()
	tops, bases := ExpectedTopsBases(r, cfg.ColumnHeight)

	res, err := s.det.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}

	colID, _ := s.classes.ID(cfg.ColumnClass)
	cols := res.OfClass(colID)
	s.logger.Debug("detected instances", "total", len(res.Instances), "columns", len(cols), "expected", len(tops))
	if len(cols) != len(tops) {
		return nil, fmt.Errorf("%w: range [%g, %g] with column height %g needs %d %q columns, detected %d",
			ErrColumnCountMismatch, r.Top, r.Base, cfg.ColumnHeight, len(tops), cfg.ColumnClass, len(cols))
	}

	crops, err := s.cropColumns(img, cfg, res, cols)
	if err != nil {
		return nil, err
	}

	parts := make([]*column.Column, len(crops))
	for i, crop := range crops {
		opts := append([]column.Option{column.WithRange(tops[i], bases[i])}, s.colOpts...)
		parts[i], err = column.New(crop, opts...)
		if err != nil {
			return nil, fmt.Errorf("column %d of %d: %w", i+1, len(crops), err)
		}
	}

	out, err := column.Stack(parts...)
	if err != nil {
		return nil, err
	}
	if bases[len(bases)-1] > r.Base {
		return out.SliceBase(r.Base)
	}
	return out, nil
}

// cropColumns returns one oriented crop per column instance, in depth order.
func (s *Segmenter) cropColumns(img image.Image, cfg layout.Config, res *detection.Result, cols []detection.Instance) ([]*imaging.Raster, error) {
	masks := make([]*image.Gray, len(cols))
	classIDs := make([]int, len(cols))
	scores := make([]float64, len(cols))
	blank := 0
	for i, in := range cols {
		masks[i], classIDs[i], scores[i] = in.Mask, in.ClassID, in.Score
		if in.Box().Empty() {
			blank++
		}
	}
	if blank > 0 {
		return nil, fmt.Errorf("%w: %d of %d column masks are empty", ErrColumnCountMismatch, blank, len(cols))
	}

	labels, err := layout.MasksToLabels(masks)
	if err != nil {
		return nil, err
	}
	regions, err := layout.RegionsFromLabels(labels, classIDs, scores)
	if err != nil {
		return nil, err
	}
	if len(regions) != len(cols) {
		return nil, fmt.Errorf("%w: %d of %d column masks are hidden by overlapping instances",
			ErrColumnCountMismatch, len(cols)-len(regions), len(cols))
	}
	regions = layout.SortRegions(regions, cfg.Order)

	// Blank masks from thresholded detections have no extent.
	all := make([]layout.Region, 0, len(res.Instances))
	for i, in := range res.Instances {
		box := in.Box()
		if box.Empty() {
			continue
		}
		all = append(all, layout.Region{Label: i + 1, ClassID: in.ClassID, Score: in.Score, Box: box})
	}
	span, err := layout.ResolveEndpoints(cfg, regions, all, s.classes)
	if err != nil {
		return nil, err
	}
	if span.Fallback {
		s.logger.Warn("endpoint class not detected, using column extent",
			"class", cfg.Endpoints.Class, "low", span.Low, "high", span.High)
	}

	raster := imaging.FromImage(img)
	axis := layout.CropAxis(cfg.Order)
	crops := make([]*imaging.Raster, len(regions))
	for i, region := range regions {
		crop, err := layout.CropRegion(raster, labels, region, axis, span)
		if err != nil {
			return nil, err
		}
		crops[i] = layout.Orient(crop, cfg.Orientation)
	}
	return crops, nil
}

// SegmentFile loads the photograph at path through the image cache, applying
// its EXIF orientation, and segments it.
func (s *Segmenter) SegmentFile(ctx context.Context, path string, r DepthRange) (*column.Column, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return s.Segment(ctx, img, r)
}
