// Package frog provides the numerical core of SHG-FROG phase retrieval.
//
// It implements the forward model that turns a complex time-domain pulse field
// into the field-product matrix and intensity trace measured by a second-harmonic
// frequency-resolved optical gating setup, and the inverse estimator that extracts
// an updated pulse from a corrected field-product matrix. It supports:
//   - Time-domain and frequency-domain trace construction with optional anti-aliasing
//   - Power-method and singular-vector pulse estimation
//   - The FROG error metric, least-squares intensity scaling and peak normalisation
//   - Delay/frequency axes, sub-sample time shifts and display profiles
//   - Run status, results and the non-blocking progress observer shared by the solvers
package frog
