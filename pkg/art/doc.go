// Package art is the deterministic rendering engine behind Tapestry.
//
// # Overview
//
// A piece of art is described by a small [ArtParams] record written by a
// generative model: a grid layout, a drawing pattern, a variation rule, a
// color strategy, a palette and an edge sharpness. Together with a seed in
// [0, 1) it fully determines an image. The engine turns the pair into
// pixels on a surface of any size, and the same pair always produces the
// same picture, whether it is painted as a small preview or as a 2x export.
//
// # Pipeline
//
// A render runs through five stages, all sharing one [Generator]:
//
//	ArtParams ──▶ Normalize ──▶ BuildGrid ──▶ per cell: ResolveColors, pattern ──▶ Rasterize
//
// [Normalize] never fails. Unknown enum values, missing or out-of-range
// numbers and unparsable colors are replaced by documented defaults, so a
// model that hallucinates a field still yields a picture.
//
// [BuildGrid] partitions the unit square either into a uniform cols x rows
// grid or into a hierarchical subdivision. All geometry is kept in
// normalized coordinates until the last moment, and the surface size only
// enters through its aspect ratio; a proportional resize reproduces the
// same cells.
//
// [ResolveColors] picks each cell's primary and secondary colors, and the
// pattern stage turns the cell into polygons, applying the variation.
// [Engine.Plan] stops here and returns a [Plan]; [Engine.Rasterize] paints
// one. Polygons are filled through golang.org/x/image/vector and softened
// with a box blur when sharpness is below 1.
//
// # Determinism
//
// Every random choice is drawn from the generator in a fixed order: grid
// decisions first, then for each cell its color draw, its variation draw
// and any fractal draws. Nothing else (map iteration, goroutines, surface
// size) influences the order, so the draw sequence depends on the seed and
// the normalized parameters alone.
//
// # Policy
//
// The constants behind the defaults and the recursion limits live in
// [Policy]. [New] with [WithPolicy] builds an engine with different
// constants; the package-level functions use [DefaultPolicy].
//
// # Errors
//
// The only failure is an unusable surface: nil, or zero or negative size.
// It is reported as [ErrInvalidSurface], wrapped in an error carrying
// errors.ErrCodeInvalidSurface from pkg/errors.
package art
