// Package export writes the hand-off document for a layout run: one entry
// per panel with its pixel-to-world matrix, wiring order and pixel-space
// outline, plus the panels that failed and why.
package export
