package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/magicscan/internal/log"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "magicscan - locate, rectify and fingerprint cards in a frame stream")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  magicscan scan [flags] <dir>   Scan a directory of frames, one JSON line per card")
	fmt.Fprintln(w, "  magicscan mcp [flags]          Run the MCP server on stdin/stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'magicscan <command> -h' for the flags of a command.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  MAGICSCAN_LOG_LEVEL=debug    Log every skipped frame and its reason")
	fmt.Fprintln(w, "  GO_ENV=production            Log as JSON")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("magicscan %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		usage(os.Stdout)
		return
	case "scan":
		err = runScan(ctx, os.Args[2:], os.Stdout)
	case "mcp":
		err = runMCP(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Error("magicscan failed", "error", err)
		stop()
		os.Exit(1)
	}
}
