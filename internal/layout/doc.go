// Package layout turns detected, unordered column regions into depth-ordered,
// consistently cropped and oriented column images.
//
// The functions here are pure: they take a label map, the regions found in
// it and a Config, and return new values.
//
// # Pipeline
//
//  1. MasksToLabels merges instance masks into a LabelMap
//  2. RegionsFromLabels finds each instance's bounding box
//  3. SortRegions puts column regions in depth order along Config.Order
//  4. ResolveEndpoints picks a common crop extent along the other axis
//  5. CropRegion extends each box to that extent and masks out other instances
//  6. Orient rotates each crop so its depth runs down the rows
//
// # Configuration
//
// Config is decoded from TOML or JSON. Endpoints accept a string ("auto",
// "auto_all", a class name, or "low,high") and, in TOML, a two-integer array.
// Validate checks a Config against the detector's Classes table.
package layout
