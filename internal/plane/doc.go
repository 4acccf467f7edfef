// Package plane maps a planar polygon in world space onto its canonical
// frame: vertex 0 at the origin, vertex 1 on the positive x-axis and vertex
// 2 above it, all with z = 0.
//
// The work is split into four stages (Flatten, Orient, Normalize, Check)
// which NormalizePlane runs in order. Each stage reports a
// geom.GeometryError rather than panicking when an invariant fails.
package plane
