// Package pose extracts a translation and Tait-Bryan angles (yaw about Z,
// then pitch about the yawed Y, then roll about the resulting X) from an
// affine transform, relative to a rigid basis.
//
// The transform may carry uniform scale and a shear confined to its Y axis,
// as produced by the grid layout; only the X and Z axes are used.
package pose
