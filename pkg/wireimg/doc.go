// Package wireimg computes wire images: per-orientation cost grids that
// estimate the extra wirelength a placement site incurs when it lies outside
// the bounding boxes of the nets it belongs to.
//
// # Halo passes
//
// For each net, [Accumulate] overlays four linear-gradient halo regions on a
// zeroed grid×grid [Image], in this order:
//
//  1. columns x in [0, StartX):  (StartX - x) × Weight
//  2. rows    y in [0, StartY):  (StartY - y) × Weight
//  3. columns x in [EndX, grid): (x - EndX + BaseOffsetX) × Weight
//  4. rows    y in [EndY, grid): (y - EndY + BaseOffsetY) × Weight
//
// Every pass assigns whole columns or rows; it never adds. Where passes of the
// same net intersect the later pass wins, and where different nets intersect
// the net that comes later in the slice wins. Net order is therefore part of
// the input: callers pass an ordered []Net per orientation, not a set.
//
// # Batches
//
// A [NetMap] holds the nets of all eight orientations. [Compute] fills the
// eight images one after another; [ComputeParallel] runs one worker per
// orientation, each on a private copy of its nets, and returns exactly the
// same [Batch]. Results are always ordered by orientation index.
//
// # Errors
//
// Input is validated before any image is allocated. Failures carry codes from
// the orientplace errors package:
//   - MISSING_ORIENTATION when the map lacks one of the indices 0..7
//   - COORDINATE_OUT_OF_RANGE when a box edge lies outside [0, grid]
//   - INVALID_GRID for a negative grid side
//   - INVALID_INPUT for negative base offsets or unknown orientation keys
//   - WORKER_FAILURE when a parallel worker panics
//
// Per-orientation failures are wrapped in [*OrientationError] and joined, so a
// single returned error names every orientation that failed.
//
// # Precision
//
// Cells and weights are float64, so every cell is the exact float64 product
// of a distance and a weight. Hosts that store costs as float32 should expect
// differences in the last bits against a float32 computation. An image can
// still overflow to ±Inf for very large weights; [Image.NonFinite] finds such
// cells.
//
// # Validation
//
// Only the geometry is checked: the grid must be non-negative, every box edge
// must lie in [0, grid] and base offsets must be non-negative. Net ids are
// free-form and may be empty. Weights are used as given.
//
// This package performs no I/O and keeps no state between calls.
package wireimg
