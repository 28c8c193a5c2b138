// Package heatmap draws wire images as color-mapped grids.
//
// A batch renders as a 2×4 sheet, one tile per orientation, all tiles sharing
// one color scale so that costs are comparable across orientations:
//
//	png, err := heatmap.RenderBatch(batch, heatmap.FormatPNG)
//
// A single image renders with [RenderImage]. Column x of an image maps to
// the horizontal axis and row y to the vertical axis, with (0, 0) at the
// bottom left.
//
// Empty images (grid 0) cannot be drawn and are rejected with
// INVALID_GRID.
package heatmap
