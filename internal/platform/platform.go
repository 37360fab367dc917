//go:build !ios && !android && (amd64 || arm64)

// Package platform describes how shared libraries are named and located on
// the host operating system. purego only supports 64-bit targets, so the
// package refuses to pretend otherwise.
package platform

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Is64Bit reports whether pointers are 8 bytes wide. libspotify handles are
// passed through purego as machine words, which requires a 64-bit target.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

// LibraryPrefix is the prefix for shared library names on this platform.
var LibraryPrefix string

// LibraryPathEnv is the environment variable the dynamic loader consults for
// extra search directories on this platform.
var LibraryPathEnv string

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
		LibraryPrefix = "lib"
		LibraryPathEnv = "DYLD_LIBRARY_PATH"
	case "windows":
		LibraryExtension = ".dll"
		LibraryPrefix = ""
		LibraryPathEnv = "PATH"
	default: // linux, freebsd
		LibraryExtension = ".so"
		LibraryPrefix = "lib"
		LibraryPathEnv = "LD_LIBRARY_PATH"
	}
}

// FormatLibraryName returns the platform-specific library filename.
// A version of 0 yields the unversioned name.
//
//   - Linux:   FormatLibraryName("spotify", 12) -> "libspotify.so.12"
//   - macOS:   FormatLibraryName("spotify", 12) -> "libspotify.12.dylib"
//   - Windows: FormatLibraryName("spotify", 12) -> "spotify-12.dll"
func FormatLibraryName(name string, version int) string {
	base := LibraryPrefix + name
	if version <= 0 {
		return base + LibraryExtension
	}
	switch runtime.GOOS {
	case "darwin":
		return fmt.Sprintf("%s.%d%s", base, version, LibraryExtension)
	case "windows":
		return fmt.Sprintf("%s-%d%s", base, version, LibraryExtension)
	default:
		return fmt.Sprintf("%s%s.%d", base, LibraryExtension, version)
	}
}

// FrameworkPath returns the path of a macOS framework binary, or "" on other
// platforms. libspotify is distributed for macOS as libspotify.framework.
func FrameworkPath(dir, name string) string {
	if runtime.GOOS != "darwin" {
		return ""
	}
	return fmt.Sprintf("%s/%s.framework/%s", dir, name, name)
}
