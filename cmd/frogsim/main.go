package main

import (
	"flag"
	"fmt"
	"math"
	"math/cmplx"
	"os"

	"github.com/neurlang/gofrog/frog"
	"github.com/neurlang/gofrog/traceio"
)

func main() {
	var (
		n      = flag.Int("n", 64, "samples per axis")
		chirp  = flag.Float64("chirp", 0.2, "quadratic phase in radians at the half width")
		dt     = flag.Float64("dt", 1, "delay step per sample")
		domain = frog.DomainTime
	)
	flag.TextVar(&domain, "domain", frog.DomainTime, "trace construction: time or frequency")
	flag.Parse()

	if flag.NArg() < 1 || *n < 2 || !(*dt > 0) {
		fmt.Println("Usage: frogsim [flags] <base>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	var base = flag.Arg(0)

	pt := make([]complex128, *n)
	w := float64(*n) / 10
	for k := range pt {
		x := (float64(k) - float64(*n)/2) / w
		pt[k] = cmplx.Rect(math.Exp(-2*math.Ln2*x*x), *chirp*4*x*x)
	}
	if err := frog.Normalize(pt); err != nil {
		fmt.Printf("Error building pulse: %v\n", err)
		os.Exit(1)
	}

	trace, _, err := frog.Forward(pt, domain, false)
	if err == nil {
		trace, err = frog.NormalizeMax(trace)
	}
	if err != nil {
		fmt.Printf("Error building trace: %v\n", err)
		os.Exit(1)
	}

	meta := traceio.Meta{Dt: *dt, Dv: 1 / (float64(*n) * *dt)}
	for _, step := range []struct {
		what string
		err  error
	}{
		{"image", traceio.SavePNG(base+".png", trace)},
		{"raw trace", traceio.SaveF16(base+".f16", trace)},
		{"calibration", traceio.SaveMeta(base+".yml", meta)},
		{"field", traceio.SaveSeed(base+".field.txt", pt)},
	} {
		if step.err != nil {
			fmt.Printf("Error writing %s: %v\n", step.what, step.err)
			os.Exit(1)
		}
	}
}
