//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"fmt"
	"time"

	"github.com/obinnaokechukwu/spgo/enum"
	"github.com/obinnaokechukwu/spgo/handle"
	"github.com/obinnaokechukwu/spgo/libspotify"
	"github.com/obinnaokechukwu/spgo/load"
)

// Track is a Spotify track. Only metadata accessors are bound.
type Track struct {
	ref     *handle.Ref[libspotify.Track]
	session *Session
}

// WrapTrack returns a Track for a borrowed sp_track, adding a reference.
func WrapTrack(sp libspotify.Track) *Track {
	return wrapTrack(sp, nil)
}

func wrapTrack(sp libspotify.Track, s *Session) *Track {
	ref := handle.Retain(sp, retainer(native.trackAddRef), releaser("track", native.trackRelease))
	return &Track{ref: ref, session: s}
}

// IsLoaded reports whether the track metadata is loaded.
func (t *Track) IsLoaded() bool {
	return handle.Use(t.ref, native.trackIsLoaded)
}

// Error returns the ErrorType of the track.
func (t *Track) Error() (*enum.Const, error) {
	return ErrorType(handle.Use(t.ref, native.trackError))
}

// Load blocks until the track metadata is loaded.
func (t *Track) Load(timeout time.Duration) (*Track, error) {
	return load.Until(sessionOrDefault(t.session).waiter(), t, timeout)
}

// Name returns the track name, or "" if not loaded.
func (t *Track) Name() string {
	if !t.IsLoaded() {
		return ""
	}
	return handle.Use(t.ref, native.trackName)
}

// Duration returns the track length, or 0 if not loaded.
func (t *Track) Duration() time.Duration {
	if !t.IsLoaded() {
		return 0
	}
	return handle.Use(t.ref, native.trackDuration)
}

// Close releases the sp_track.
func (t *Track) Close() error {
	return t.ref.Close()
}

func (t *Track) String() string {
	if t.ref.Disposed() {
		return "Track(closed)"
	}
	if name := t.Name(); name != "" {
		return fmt.Sprintf("Track(%q)", name)
	}
	return "Track(<loading>)"
}
