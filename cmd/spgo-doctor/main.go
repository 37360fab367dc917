//go:build !ios && !android && (amd64 || arm64)

// Command spgo-doctor reports where spgo looks for libspotify and whether it
// can be loaded.
//
// Usage: spgo-doctor [-libdir dir] [-v] [-metrics]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/obinnaokechukwu/spgo"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("spgo-doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	libDir := fs.String("libdir", "", "directory searched for libspotify before all others")
	verbose := fs.Bool("v", false, "log library loading to stderr")
	showMetrics := fs.Bool("metrics", false, "print spgo metrics after loading")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := spgo.ConfigFromEnv()
	if *libDir != "" {
		cfg.LibraryDir = *libDir
	}
	if *verbose {
		logger := zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(stderr),
			zapcore.DebugLevel,
		))
		defer logger.Sync()
		cfg.Logger = logger
	}
	reg := prometheus.NewRegistry()
	cfg.Registerer = reg

	fmt.Fprintf(stdout, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintln(stdout, "search paths:")
	if cfg.LibraryDir != "" {
		fmt.Fprintf(stdout, "  %s\n", cfg.LibraryDir)
	}
	for _, dir := range spgo.LibrarySearchPaths() {
		fmt.Fprintf(stdout, "  %s\n", dir)
	}

	if path, err := spgo.FindLibrary(); err == nil {
		fmt.Fprintf(stdout, "found: %s\n", path)
	}

	if err := spgo.InitWithConfig(cfg); err != nil {
		fmt.Fprintf(stdout, "libspotify: not loaded: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "libspotify: loaded from %s\n", spgo.LibraryPath())
	fmt.Fprintf(stdout, "build: %s\n", spgo.BuildID())

	if *showMetrics {
		if err := writeMetrics(stdout, reg); err != nil {
			fmt.Fprintf(stderr, "Failed to write metrics: %v\n", err)
			return 1
		}
	}
	return 0
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
