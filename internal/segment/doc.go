// Package segment assembles depth columns from core box photographs.
//
// A Segmenter owns a detection.Detector, the detector's class table and a
// layout.Config. Segment runs one photograph through detection, layout
// resolution and column stacking; SegmentMany does the same for an ordered
// run of photographs and stacks the per-photograph results.
//
// Each photograph is expected to show ceil(extent / column height) full
// columns. The detector must report exactly that many instances of the
// layout's column class; anything else is an ErrColumnCountMismatch and is
// never corrected automatically.
package segment
