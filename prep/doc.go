// Package prep turns a raw FROG camera image into the square, normalised
// trace the phase-retrieval solvers consume.
//
// Preparation fixes the axis orientation, locates the spot, low-pass filters
// and background-subtracts the image, and rebins it onto an N×N grid whose
// pitches satisfy the discrete Fourier sampling identity
// (vertical pitch·dv)·(horizontal pitch·dt) = 1/N.
package prep
