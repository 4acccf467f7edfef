// Package affine builds 4x4 affine transforms from ordered component lists.
//
// Every Transform carries its algebraic inverse, assembled from the inverse
// of each component in reverse order, and Compose verifies that the two
// multiply to the identity.
// Key types: Matrix, Component, Transform.
package affine
