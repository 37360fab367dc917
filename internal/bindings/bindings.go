//go:build !ios && !android && (amd64 || arm64)

// Package bindings locates and loads the libspotify shared library with
// purego. Function registration happens in package libspotify; this package
// only owns the library handle.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/spgo/internal/logging"
	"github.com/obinnaokechukwu/spgo/internal/platform"
)

// EnvLibraryDir names a directory searched before every other location.
const EnvLibraryDir = "SPGO_LIBRARY_DIR"

// LibraryName is the base name of the native library.
const LibraryName = "spotify"

// Versions lists the sonames tried, newest first. libspotify 12 is the last
// release; 11 and 10 share the same handle API.
var Versions = []int{12, 11, 10}

// ErrNotLoaded is returned when libspotify functions are needed before Load.
var ErrNotLoaded = errors.New("spgo: libspotify not loaded; call spgo.Init() first")

// ErrLibraryNotFound is returned when libspotify cannot be found.
var ErrLibraryNotFound = errors.New("spgo: libspotify not found")

var (
	mu         sync.Mutex
	lib        uintptr
	libPath    string
	libraryDir string
	lastErr    error
)

// SetLibraryDir adds a directory searched before SPGO_LIBRARY_DIR and the
// platform paths. It has no effect once the library is loaded.
func SetLibraryDir(dir string) {
	mu.Lock()
	defer mu.Unlock()
	libraryDir = dir
}

// IsLoaded reports whether libspotify has been loaded.
func IsLoaded() bool {
	mu.Lock()
	defer mu.Unlock()
	return lib != 0
}

// Load finds and opens libspotify. It is safe to call repeatedly: a
// successful load is kept, a failed one is retried on the next call so that
// a corrected SetLibraryDir can take effect.
func Load() error {
	mu.Lock()
	defer mu.Unlock()

	if lib != 0 {
		return nil
	}

	candidates := candidatePaths(libraryDir)
	var tried []string
	for _, path := range candidates {
		h, err := tryOpen(path)
		if err != nil {
			tried = append(tried, path)
			continue
		}
		lib = h
		libPath = path
		lastErr = nil
		logging.Logger().Info("libspotify loaded", zap.String("path", path))
		return nil
	}

	lastErr = fmt.Errorf("%w (tried %d locations: %s)", ErrLibraryNotFound, len(tried), strings.Join(tried, ", "))
	logging.Logger().Debug("libspotify not loaded", zap.Error(lastErr))
	return lastErr
}

// Lib returns the dlopen handle, or 0 if the library is not loaded.
func Lib() uintptr {
	mu.Lock()
	defer mu.Unlock()
	return lib
}

// Path returns the file the library was loaded from.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return libPath
}

// LoadError returns the error of the last failed Load, if any.
func LoadError() error {
	mu.Lock()
	defer mu.Unlock()
	return lastErr
}

// tryOpen opens a library with RTLD_NOW so that missing symbols fail here
// rather than on first call.
func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

// candidatePaths lists every path Load tries, in order. Bare library names
// come last so the system loader gets the final say.
func candidatePaths(extraDir string) []string {
	var paths []string
	for _, dir := range searchDirs(extraDir) {
		paths = append(paths, dirCandidates(dir)...)
	}
	for _, ver := range Versions {
		paths = append(paths, platform.FormatLibraryName(LibraryName, ver))
	}
	return append(paths, platform.FormatLibraryName(LibraryName, 0))
}

func dirCandidates(dir string) []string {
	var out []string
	for _, ver := range Versions {
		out = append(out, filepath.Join(dir, platform.FormatLibraryName(LibraryName, ver)))
	}
	out = append(out, filepath.Join(dir, platform.FormatLibraryName(LibraryName, 0)))
	if fw := platform.FrameworkPath(dir, "lib"+LibraryName); fw != "" {
		out = append(out, fw)
	}
	return out
}

func searchDirs(extraDir string) []string {
	var dirs []string
	if extraDir != "" {
		dirs = append(dirs, extraDir)
	}
	if env := os.Getenv(EnvLibraryDir); env != "" {
		dirs = append(dirs, env)
	}
	return append(dirs, LibrarySearchPaths()...)
}

// FindLibrary returns the first existing libspotify file, without opening it.
// Useful for diagnostics.
func FindLibrary() (string, error) {
	mu.Lock()
	extra := libraryDir
	mu.Unlock()

	for _, dir := range searchDirs(extra) {
		for _, path := range dirCandidates(dir) {
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, platform.FormatLibraryName(LibraryName, 0))
}

// LibrarySearchPaths returns platform-specific library search paths.
func LibrarySearchPaths() []string {
	var paths []string
	if env := os.Getenv(platform.LibraryPathEnv); env != "" {
		paths = append(paths, filepath.SplitList(env)...)
	}

	switch runtime.GOOS {
	case "linux":
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/lib",
			"/lib",
		)
	case "darwin":
		paths = append(paths,
			"/opt/homebrew/lib",
			"/usr/local/lib",
			"/Library/Frameworks",
		)
	case "windows":
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
	case "freebsd":
		paths = append(paths, "/usr/local/lib", "/usr/lib")
	}
	return paths
}
