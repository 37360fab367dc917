//go:build !ios && !android && (amd64 || arm64)

// Package libspotify provides low-level bindings to libspotify's handle API.
//
// Handles are opaque native pointers. Functions in this package do no
// reference counting of their own; the root spgo package wraps them in
// handle.Ref values. Call Register (spgo.Init does) before using anything
// else here.
package libspotify

import (
	"sync"
	"time"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/spgo/internal/bindings"
)

// Opaque libspotify object pointers.
type (
	Session = unsafe.Pointer
	Image   = unsafe.Pointer
	Search  = unsafe.Pointer
	Track   = unsafe.Pointer
)

// ImageIDSize is the length of a libspotify image id.
const ImageIDSize = 20

// Raw sp_error values used by the bindings themselves.
const (
	ErrorOK        int32 = 0
	ErrorIsLoading int32 = 17
)

var (
	regMu      sync.Mutex
	registered bool

	spBuildID            func() string
	spErrorMessage       func(code int32) string
	spSessionProcessEvts func(session unsafe.Pointer, nextTimeout *int32) int32

	spImageCreate       func(session unsafe.Pointer, id *byte) unsafe.Pointer
	spImageAddRef       func(img unsafe.Pointer) int32
	spImageRelease      func(img unsafe.Pointer) int32
	spImageIsLoaded     func(img unsafe.Pointer) bool
	spImageError        func(img unsafe.Pointer) int32
	spImageFormat       func(img unsafe.Pointer) int32
	spImageData         func(img unsafe.Pointer, size *uintptr) unsafe.Pointer
	spImageImageID      func(img unsafe.Pointer) unsafe.Pointer
	spImageAddLoadCB    func(img unsafe.Pointer, cb, userdata uintptr) int32
	spImageRemoveLoadCB func(img unsafe.Pointer, cb, userdata uintptr) int32

	spSearchAddRef      func(s unsafe.Pointer) int32
	spSearchRelease     func(s unsafe.Pointer) int32
	spSearchIsLoaded    func(s unsafe.Pointer) bool
	spSearchError       func(s unsafe.Pointer) int32
	spSearchQuery       func(s unsafe.Pointer) string
	spSearchNumTracks   func(s unsafe.Pointer) int32
	spSearchTrack       func(s unsafe.Pointer, index int32) unsafe.Pointer
	spSearchTotalTracks func(s unsafe.Pointer) int32

	spTrackAddRef   func(t unsafe.Pointer) int32
	spTrackRelease  func(t unsafe.Pointer) int32
	spTrackIsLoaded func(t unsafe.Pointer) bool
	spTrackError    func(t unsafe.Pointer) int32
	spTrackName     func(t unsafe.Pointer) string
	spTrackDuration func(t unsafe.Pointer) int32
)

// Register loads libspotify if needed and binds every function. Safe to call
// more than once.
func Register() error {
	regMu.Lock()
	defer regMu.Unlock()
	if registered {
		return nil
	}
	if err := bindings.Load(); err != nil {
		return err
	}
	lib := bindings.Lib()

	purego.RegisterLibFunc(&spBuildID, lib, "sp_build_id")
	purego.RegisterLibFunc(&spErrorMessage, lib, "sp_error_message")
	purego.RegisterLibFunc(&spSessionProcessEvts, lib, "sp_session_process_events")

	purego.RegisterLibFunc(&spImageCreate, lib, "sp_image_create")
	purego.RegisterLibFunc(&spImageAddRef, lib, "sp_image_add_ref")
	purego.RegisterLibFunc(&spImageRelease, lib, "sp_image_release")
	purego.RegisterLibFunc(&spImageIsLoaded, lib, "sp_image_is_loaded")
	purego.RegisterLibFunc(&spImageError, lib, "sp_image_error")
	purego.RegisterLibFunc(&spImageFormat, lib, "sp_image_format")
	purego.RegisterLibFunc(&spImageData, lib, "sp_image_data")
	purego.RegisterLibFunc(&spImageImageID, lib, "sp_image_image_id")
	purego.RegisterLibFunc(&spImageAddLoadCB, lib, "sp_image_add_load_callback")
	purego.RegisterLibFunc(&spImageRemoveLoadCB, lib, "sp_image_remove_load_callback")

	purego.RegisterLibFunc(&spSearchAddRef, lib, "sp_search_add_ref")
	purego.RegisterLibFunc(&spSearchRelease, lib, "sp_search_release")
	purego.RegisterLibFunc(&spSearchIsLoaded, lib, "sp_search_is_loaded")
	purego.RegisterLibFunc(&spSearchError, lib, "sp_search_error")
	purego.RegisterLibFunc(&spSearchQuery, lib, "sp_search_query")
	purego.RegisterLibFunc(&spSearchNumTracks, lib, "sp_search_num_tracks")
	purego.RegisterLibFunc(&spSearchTrack, lib, "sp_search_track")
	purego.RegisterLibFunc(&spSearchTotalTracks, lib, "sp_search_total_tracks")

	purego.RegisterLibFunc(&spTrackAddRef, lib, "sp_track_add_ref")
	purego.RegisterLibFunc(&spTrackRelease, lib, "sp_track_release")
	purego.RegisterLibFunc(&spTrackIsLoaded, lib, "sp_track_is_loaded")
	purego.RegisterLibFunc(&spTrackError, lib, "sp_track_error")
	purego.RegisterLibFunc(&spTrackName, lib, "sp_track_name")
	purego.RegisterLibFunc(&spTrackDuration, lib, "sp_track_duration")

	registered = true
	return nil
}

// IsRegistered reports whether Register has succeeded.
func IsRegistered() bool {
	regMu.Lock()
	defer regMu.Unlock()
	return registered
}

// BuildID returns libspotify's build identifier.
func BuildID() string {
	return spBuildID()
}

// ErrorMessage returns libspotify's description of an sp_error value.
func ErrorMessage(code int32) string {
	return spErrorMessage(code)
}

// SessionProcessEvents runs pending libspotify work for session and returns
// how long the library asks to wait before the next call.
func SessionProcessEvents(session Session) (next time.Duration, code int32) {
	var ms int32
	code = spSessionProcessEvts(session, &ms)
	return time.Duration(ms) * time.Millisecond, code
}

// Image functions

// ImageCreate returns a new image for a 20-byte id. The caller owns the
// returned reference.
func ImageCreate(session Session, id []byte) Image {
	if len(id) != ImageIDSize {
		return nil
	}
	return spImageCreate(session, &id[0])
}

func ImageAddRef(img Image) int32  { return spImageAddRef(img) }
func ImageRelease(img Image) int32 { return spImageRelease(img) }
func ImageIsLoaded(img Image) bool { return spImageIsLoaded(img) }
func ImageError(img Image) int32   { return spImageError(img) }
func ImageFormat(img Image) int32  { return spImageFormat(img) }

// ImageData copies the raw image bytes out of libspotify's buffer.
func ImageData(img Image) []byte {
	var size uintptr
	p := spImageData(img, &size)
	if p == nil || size == 0 {
		return nil
	}
	return append([]byte(nil), unsafe.Slice((*byte)(p), size)...)
}

// ImageID copies the 20-byte image id.
func ImageID(img Image) []byte {
	p := spImageImageID(img)
	if p == nil {
		return nil
	}
	return append([]byte(nil), unsafe.Slice((*byte)(p), ImageIDSize)...)
}

// ImageAddLoadCallback registers a purego callback with signature
// void (*)(sp_image *image, void *userdata).
func ImageAddLoadCallback(img Image, cb, userdata uintptr) int32 {
	return spImageAddLoadCB(img, cb, userdata)
}

func ImageRemoveLoadCallback(img Image, cb, userdata uintptr) int32 {
	return spImageRemoveLoadCB(img, cb, userdata)
}

// Search functions

func SearchAddRef(s Search) int32    { return spSearchAddRef(s) }
func SearchRelease(s Search) int32   { return spSearchRelease(s) }
func SearchIsLoaded(s Search) bool   { return spSearchIsLoaded(s) }
func SearchError(s Search) int32     { return spSearchError(s) }
func SearchQuery(s Search) string    { return spSearchQuery(s) }
func SearchNumTracks(s Search) int   { return int(spSearchNumTracks(s)) }
func SearchTotalTracks(s Search) int { return int(spSearchTotalTracks(s)) }

// SearchTrack returns a borrowed track pointer; add a reference to keep it.
func SearchTrack(s Search, index int) Track {
	return spSearchTrack(s, int32(index))
}

// Track functions

func TrackAddRef(t Track) int32  { return spTrackAddRef(t) }
func TrackRelease(t Track) int32 { return spTrackRelease(t) }
func TrackIsLoaded(t Track) bool { return spTrackIsLoaded(t) }
func TrackError(t Track) int32   { return spTrackError(t) }
func TrackName(t Track) string   { return spTrackName(t) }

// TrackDuration returns the track length; zero until the track is loaded.
func TrackDuration(t Track) time.Duration {
	return time.Duration(spTrackDuration(t)) * time.Millisecond
}
