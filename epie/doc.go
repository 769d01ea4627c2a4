// Package epie retrieves an SHG-FROG pulse with the extended ptychographic
// iterative engine.
//
// Every delay column of the measured trace is treated as one diffraction
// pattern of the pulse gated by a delayed copy of itself. The solver sweeps the
// columns in random order, enforces the measured amplitude on each one and
// pushes the correction back into both copies of the field. It never forms the
// field-product matrix and makes no assumption that the two trace axes are
// Fourier conjugates.
package epie
