// Package column implements depth-registered images of core material.
//
// A Column pairs an image, whose rows run from shallow to deep, with one depth
// value per row and an enclosing (top, base) interval. Columns are validated on
// construction and never change afterwards: combining, slicing and loading all
// produce new values.
//
// # Combining
//
// Columns are stacked with Combine (or Column.Add) in depth order. The left
// operand acts as the accumulator: its add mode decides whether a depth gap is
// bridged with blank rows (Fill) or simply concatenated (Collapse), and its add
// tolerance bounds how large that gap may be. Stack folds an ordered slice of
// columns the same way.
//
// # Persistence
//
// Save writes any combination of a gob blob with the full column state, a
// lossless PNG of the image, and a binary float64 vector of row depths. Load
// prefers the blob and falls back to the image plus either the saved depths or
// a caller-supplied range.
package column
