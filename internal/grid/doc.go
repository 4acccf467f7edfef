// Package grid lays out LED pixels inside a canonical-frame polygon.
//
// Responsibilities: margin resolution, axis-centred line placement, per-row
// column bounds, serpentine wiring order, and the transform from integer
// (column, row) grid indices to frame coordinates.
// Key types: Config, GeometryInfo, Light, LightGrid.
//
// Inputs are the canonical vertices produced by package plane: vertex 0 at
// the origin, vertex 1 at (baseWidth, 0), vertex 2 and the last vertex at
// the top right and top left of the panel.
package grid
