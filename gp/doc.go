// Package gp retrieves an SHG-FROG pulse by generalized projections.
//
// Each iteration replaces the amplitude of the current field-product matrix by
// the square root of the measured trace, keeps its phase, and extracts a new
// pulse estimate from the corrected matrix. The loop stops when the FROG error
// drops to the tolerance or the iteration cap is hit, and always hands back the
// lowest-error estimate it has seen.
package gp
