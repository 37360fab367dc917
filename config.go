//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/spgo/internal/bindings"
)

// EnvPollInterval overrides Config.PollInterval in ConfigFromEnv, e.g. "25ms".
const EnvPollInterval = "SPGO_POLL_INTERVAL"

// Config holds the process-wide settings applied by InitWithConfig. Zero
// fields keep their current value.
type Config struct {
	// LibraryDir is searched for libspotify before SPGO_LIBRARY_DIR and the
	// platform library paths.
	LibraryDir string

	// PollInterval is the pause between readiness checks while a Load
	// call blocks. Defaults to load.DefaultPollInterval.
	PollInterval time.Duration

	// Logger receives spgo's structured logs.
	Logger *zap.Logger

	// Registerer, when set, gets spgo's prometheus collectors.
	Registerer prometheus.Registerer
}

// ConfigFromEnv reads SPGO_LIBRARY_DIR and SPGO_POLL_INTERVAL. Invalid
// durations are ignored.
func ConfigFromEnv() Config {
	cfg := Config{LibraryDir: os.Getenv(bindings.EnvLibraryDir)}
	if v := os.Getenv(EnvPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}
	return cfg
}
