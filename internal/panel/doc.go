// Package panel runs the full layout for each polygon of a structure:
// plane normalisation, grid generation, per-panel overrides and pose
// decomposition.
//
// Panels are independent. ProcessAll fans them out over a worker pool and
// returns outcomes in input order; a failed panel never affects the others.
package panel
