// Command frogretrieve recovers a laser pulse from a measured SHG-FROG trace.
//
// The trace image is prepared to the configured size, then handed to the
// generalized projections or the ptychographic solver. Progress is printed to
// stderr once per iteration and the retrieved field is written as "re im"
// lines.
//
// Usage:
//
//	frogretrieve [-config run.yml] [-meta trace.yml] [-seed seed.txt] [-out recon.png] [-field field.txt] <trace.png|trace.f16>
//
// Without -meta the calibration is read from the sidecar next to the trace,
// <trace>.yml. Without -field the field goes to stdout.
//
// The exit status is 0 when the run converged or reached the iteration cap,
// 1 on bad input and 2 when the run was interrupted.
package main
