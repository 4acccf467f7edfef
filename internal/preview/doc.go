// Package preview renders diagnostics for a layout run: a PNG per panel
// showing the canonical polygon with its wired pixels, and an HTML scatter
// of every pixel in world space.
package preview
