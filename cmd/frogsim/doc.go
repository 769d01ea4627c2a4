// Command frogsim synthesises a noiseless SHG-FROG trace of a chirped gaussian
// pulse.
//
// It writes the trace as <base>.png and <base>.f16, the calibration sidecar
// <base>.yml and the true field as <base>.field.txt. The sidecar satisfies the
// sampling identity dt·dv = 1/N, so frogretrieve passes the trace through
// preparation unchanged.
//
// Usage:
//
//	frogsim [-n 64] [-chirp 0.2] [-dt 1] [-domain time] <base>
package main
