// Package detection defines the boundary to the instance segmentation model
// that finds core columns and trays in box photographs.
//
// The pipeline only needs a Detector: something that turns an image into a
// Result of per-instance binary masks, class ids and confidence scores. Model
// training, architecture and weights live outside this module.
//
// # Implementations
//
//   - HTTPDetector talks to an inference service over HTTP, uploading the
//     photograph as PNG and decoding base64 PNG masks from the JSON reply
//   - DetectorFunc adapts a plain function, which is what tests use
//
// # Coordinate System
//
// Masks have the size of the input image with their origin at (0, 0):
//   - X increases rightward
//   - Y increases downward
//   - Instance.Box is min-inclusive, max-exclusive
//
// # Timeouts
//
// The core pipeline does not time out on its own. HTTPDetector applies a
// per-request client timeout and honours the context passed to Detect.
package detection
