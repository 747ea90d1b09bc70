// Command statweights prints damage-per-point weights for the bard's
// attributes, or sweeps one attribute into a CSV curve.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stormblood-bard-sim/internal/cmd/statweights"
)

func main() {
	opts, err := statweights.ParseOptions(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := statweights.Run(ctx, opts, os.Stdout); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
