//go:build !ios && !android && (amd64 || arm64)

// Package spgo provides Go bindings to libspotify without cgo, using purego.
//
// libspotify hands out opaque, reference-counted handles that it fills in
// asynchronously. The proxies in this package (Image, Search, Track) own one
// reference each, release it on Close or when garbage collected, and can
// block until the native object has loaded. The building blocks live in
// their own packages: handle, seq, event, enum and load.
//
// Call Init (or InitWithConfig) once before creating proxies.
package spgo

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/spgo/internal/bindings"
	"github.com/obinnaokechukwu/spgo/internal/logging"
	"github.com/obinnaokechukwu/spgo/internal/metrics"
	"github.com/obinnaokechukwu/spgo/libspotify"
	"github.com/obinnaokechukwu/spgo/load"
)

var pollInterval atomic.Int64

// Init loads libspotify using ConfigFromEnv. It is safe to call multiple
// times; a failed load is retried.
func Init() error {
	return InitWithConfig(ConfigFromEnv())
}

// InitWithConfig applies cfg and loads libspotify.
func InitWithConfig(cfg Config) error {
	if cfg.Logger != nil {
		logging.SetLogger(cfg.Logger)
	}
	if cfg.Registerer != nil {
		if err := metrics.Register(cfg.Registerer); err != nil {
			return fmt.Errorf("spgo: registering metrics: %w", err)
		}
	}
	if cfg.PollInterval > 0 {
		pollInterval.Store(int64(cfg.PollInterval))
	}
	if cfg.LibraryDir != "" {
		bindings.SetLibraryDir(cfg.LibraryDir)
	}
	return libspotify.Register()
}

// IsLoaded returns true if libspotify has been successfully loaded.
func IsLoaded() bool {
	return native.loaded()
}

// BuildID returns libspotify's build identifier, or "" before Init.
func BuildID() string {
	if !IsLoaded() {
		return ""
	}
	return native.buildID()
}

// LibraryPath returns the file libspotify was loaded from.
func LibraryPath() string {
	return bindings.Path()
}

// SetLogger replaces the logger used by every spgo package. Pass nil to
// silence logging again.
func SetLogger(l *zap.Logger) {
	logging.SetLogger(l)
}

// PollInterval returns the interval used by blocking loads.
func PollInterval() time.Duration {
	if d := time.Duration(pollInterval.Load()); d > 0 {
		return d
	}
	return load.DefaultPollInterval
}

// FindLibrary returns the first libspotify file on the search path without
// loading it.
func FindLibrary() (string, error) {
	return bindings.FindLibrary()
}

// LibrarySearchPaths returns the platform directories searched for
// libspotify, after Config.LibraryDir and SPGO_LIBRARY_DIR.
func LibrarySearchPaths() []string {
	return bindings.LibrarySearchPaths()
}
