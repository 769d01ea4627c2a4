// Package traceio reads and writes the files around a retrieval.
//
// It provides:
//   - 16-bit grayscale PNG traces, scaled to the full gray range on write
//   - Half-precision raw traces (.f16) for lossless-enough interchange
//   - The YAML calibration sidecar with the delay and frequency steps
//   - Text seed files holding one "re im" pair per line
package traceio
