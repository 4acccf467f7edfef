// Package mesh reads structure meshes exported from the modelling tool and
// turns their faces into panel polygons in world coordinates.
//
// A file holds either a single structure or {"structures": [...]}. Each
// structure carries its local vertices, its faces as vertex index lists and
// an optional 4x4 row-major world matrix.
package mesh
