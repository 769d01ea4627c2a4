// Package retrieval ties preparation and the solvers into one configured run.
//
// A Config is read from YAML with unknown keys rejected, validated as a whole
// (including selector combinations a solver cannot honour) and then passed by
// value, so a running retrieval never sees later edits. Runner logs each stage
// through log/slog and dispatches to the generalized projections or the
// ptychographic solver.
package retrieval
