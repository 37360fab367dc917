//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"sync"
	"time"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/spgo/internal/logging"
	"github.com/obinnaokechukwu/spgo/libspotify"
)

// nativeAPI is the set of libspotify calls the proxies make. Tests swap in
// an in-memory implementation.
type nativeAPI struct {
	loaded        func() bool
	buildID       func() string
	errorMessage  func(code int32) string
	processEvents func(s libspotify.Session) (time.Duration, int32)

	imageCreate             func(s libspotify.Session, id []byte) libspotify.Image
	imageAddRef             func(libspotify.Image) int32
	imageRelease            func(libspotify.Image) int32
	imageIsLoaded           func(libspotify.Image) bool
	imageError              func(libspotify.Image) int32
	imageFormat             func(libspotify.Image) int32
	imageData               func(libspotify.Image) []byte
	imageID                 func(libspotify.Image) []byte
	imageAddLoadCallback    func(img libspotify.Image, cb, userdata uintptr) int32
	imageRemoveLoadCallback func(img libspotify.Image, cb, userdata uintptr) int32

	searchAddRef      func(libspotify.Search) int32
	searchRelease     func(libspotify.Search) int32
	searchIsLoaded    func(libspotify.Search) bool
	searchError       func(libspotify.Search) int32
	searchQuery       func(libspotify.Search) string
	searchNumTracks   func(libspotify.Search) int
	searchTrack       func(libspotify.Search, int) libspotify.Track
	searchTotalTracks func(libspotify.Search) int

	trackAddRef   func(libspotify.Track) int32
	trackRelease  func(libspotify.Track) int32
	trackIsLoaded func(libspotify.Track) bool
	trackError    func(libspotify.Track) int32
	trackName     func(libspotify.Track) string
	trackDuration func(libspotify.Track) time.Duration

	// imageLoadedCallback returns the function pointer libspotify calls
	// when an image finishes loading.
	imageLoadedCallback func() uintptr
}

var native = libspotifyAPI()

func libspotifyAPI() *nativeAPI {
	return &nativeAPI{
		loaded:        libspotify.IsRegistered,
		buildID:       libspotify.BuildID,
		errorMessage:  libspotify.ErrorMessage,
		processEvents: libspotify.SessionProcessEvents,

		imageCreate:             libspotify.ImageCreate,
		imageAddRef:             libspotify.ImageAddRef,
		imageRelease:            libspotify.ImageRelease,
		imageIsLoaded:           libspotify.ImageIsLoaded,
		imageError:              libspotify.ImageError,
		imageFormat:             libspotify.ImageFormat,
		imageData:               libspotify.ImageData,
		imageID:                 libspotify.ImageID,
		imageAddLoadCallback:    libspotify.ImageAddLoadCallback,
		imageRemoveLoadCallback: libspotify.ImageRemoveLoadCallback,

		searchAddRef:      libspotify.SearchAddRef,
		searchRelease:     libspotify.SearchRelease,
		searchIsLoaded:    libspotify.SearchIsLoaded,
		searchError:       libspotify.SearchError,
		searchQuery:       libspotify.SearchQuery,
		searchNumTracks:   libspotify.SearchNumTracks,
		searchTrack:       libspotify.SearchTrack,
		searchTotalTracks: libspotify.SearchTotalTracks,

		trackAddRef:   libspotify.TrackAddRef,
		trackRelease:  libspotify.TrackRelease,
		trackIsLoaded: libspotify.TrackIsLoaded,
		trackError:    libspotify.TrackError,
		trackName:     libspotify.TrackName,
		trackDuration: libspotify.TrackDuration,

		imageLoadedCallback: imageLoadedCallbackPtr,
	}
}

var (
	imageLoadedOnce sync.Once
	imageLoadedPtr  uintptr
)

// imageLoadedCallbackPtr creates the purego callback on first use. purego
// callbacks are never freed, so exactly one is shared by every image.
func imageLoadedCallbackPtr() uintptr {
	imageLoadedOnce.Do(func() {
		imageLoadedPtr = purego.NewCallback(imageLoadedTrampoline)
	})
	return imageLoadedPtr
}

// releaser adapts a libspotify *_release function to handle.Ref, logging
// the rare case where libspotify refuses the release.
func releaser[H any](kind string, release func(H) int32) func(H) {
	return func(h H) {
		if code := release(h); code != libspotify.ErrorOK {
			logging.Logger().Warn("release failed",
				zap.String("kind", kind),
				zap.Int32("code", code))
		}
	}
}

// retainer drops the status of a libspotify *_add_ref function.
func retainer[H any](addRef func(H) int32) func(H) {
	return func(h H) { addRef(h) }
}
