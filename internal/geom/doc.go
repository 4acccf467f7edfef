// Package geom owns the numeric primitives shared by every layout stage.
//
// Responsibilities: tolerance-aware rounding and division, line/gradient
// helpers, and the GeometryError type returned when a panel cannot be laid
// out.
// Key types: Tolerance, GeometryError, ErrorKind.
//
// Dependency rule: geom depends on nothing else in this module.
package geom
