package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/neurlang/gofrog/frog"
	"github.com/neurlang/gofrog/retrieval"
	"github.com/neurlang/gofrog/traceio"
)

func main() {
	var (
		configFile = flag.String("config", "", "run configuration (YAML)")
		metaFile   = flag.String("meta", "", "calibration sidecar, default <trace>.yml")
		seedFile   = flag.String("seed", "", "initial field, one \"re im\" pair per line")
		outFile    = flag.String("out", "", "write the reconstructed trace to this PNG")
		fieldFile  = flag.String("field", "", "write the retrieved field here instead of stdout")
		level      = flag.String("log", "info", "log level: debug, info, warn or error")
	)
	flag.Parse()

	// Check if the filename argument is provided
	if flag.NArg() < 1 {
		fmt.Println("Usage: frogretrieve [flags] <trace.png|trace.f16>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	var filename = flag.Arg(0)

	var cfg = retrieval.NewConfig()
	if *configFile != "" {
		var err error
		if cfg, err = retrieval.Load(*configFile); err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
	}

	if *metaFile == "" {
		*metaFile = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".yml"
	}
	meta, err := traceio.LoadMeta(*metaFile)
	if err != nil {
		fmt.Printf("Error loading calibration: %v\n", err)
		os.Exit(1)
	}

	img, err := traceio.Load(filename)
	if err != nil {
		fmt.Printf("Error loading trace: %v\n", err)
		os.Exit(1)
	}

	var seed []complex128
	if *seedFile != "" {
		if seed, err = traceio.LoadSeed(*seedFile); err != nil {
			fmt.Printf("Error loading seed: %v\n", err)
			os.Exit(1)
		}
	}

	progress := frog.Async(frog.ObserverFunc(func(p frog.Progress) {
		fmt.Fprintf(os.Stderr, "Iter. %3d: FROG Error %.4f\n", p.Iteration, p.Error)
	}), 16)

	runner, err := retrieval.NewRunner(cfg, retrieval.NewLogger(os.Stderr, *level), progress)
	if err != nil {
		fmt.Printf("Error in configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, res, err := runner.Run(ctx, img, meta.Calibration(), seed)
	progress.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("Error retrieving pulse: %v\n", err)
		os.Exit(1)
	}

	if *outFile != "" {
		if err := traceio.SavePNG(*outFile, res.Trace); err != nil {
			fmt.Printf("Error writing reconstructed trace: %v\n", err)
			os.Exit(1)
		}
	}
	if *fieldFile != "" {
		err = traceio.SaveSeed(*fieldFile, res.Field)
	} else {
		err = traceio.WriteSeed(os.Stdout, res.Field)
	}
	if err != nil {
		fmt.Printf("Error writing field: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "%s after %d iterations, FROG error %.4f\n", res.Status, res.Iterations, res.Error)
	if res.Status == frog.Cancelled {
		os.Exit(2)
	}
}
