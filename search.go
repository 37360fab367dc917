//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"fmt"
	"time"

	"github.com/obinnaokechukwu/spgo/enum"
	"github.com/obinnaokechukwu/spgo/handle"
	"github.com/obinnaokechukwu/spgo/libspotify"
	"github.com/obinnaokechukwu/spgo/load"
	"github.com/obinnaokechukwu/spgo/seq"
)

// Search is the result of a libspotify search. Its track list grows while
// the search loads.
type Search struct {
	ref     *handle.Ref[libspotify.Search]
	session *Session
}

// WrapSearch returns a Search for a borrowed sp_search, adding a reference.
// s is pumped by Load; nil means the default session.
func WrapSearch(sp libspotify.Search, s *Session) *Search {
	return &Search{ref: retainSearch(sp), session: s}
}

// AdoptSearch is WrapSearch for an sp_search the caller already owns.
func AdoptSearch(sp libspotify.Search, s *Session) *Search {
	return &Search{ref: handle.Adopt(sp, releaser("search", native.searchRelease)), session: s}
}

func retainSearch(sp libspotify.Search) *handle.Ref[libspotify.Search] {
	return handle.Retain(sp, retainer(native.searchAddRef), releaser("search", native.searchRelease))
}

// IsLoaded reports whether the search has completed.
func (s *Search) IsLoaded() bool {
	return handle.Use(s.ref, native.searchIsLoaded)
}

// Error returns the ErrorType of the search.
func (s *Search) Error() (*enum.Const, error) {
	return ErrorType(handle.Use(s.ref, native.searchError))
}

// Load blocks until the search has completed.
func (s *Search) Load(timeout time.Duration) (*Search, error) {
	return load.Until(sessionOrDefault(s.session).waiter(), s, timeout)
}

// Query returns the search query.
func (s *Search) Query() string {
	return handle.Use(s.ref, native.searchQuery)
}

// TotalTracks is the number of matching tracks on the server, which can be
// larger than the number returned.
func (s *Search) TotalTracks() int {
	return handle.Use(s.ref, native.searchTotalTracks)
}

// Tracks returns a live view of the tracks found so far. The view holds its
// own reference on the search and stays valid after s is closed; close it
// when done. Every element is a new Track the caller should close.
func (s *Search) Tracks() *seq.Sequence[libspotify.Search, *Track] {
	ref := handle.Use(s.ref, retainSearch)
	sess := s.session
	return seq.New(ref,
		func(sp libspotify.Search) int { return native.searchNumTracks(sp) },
		func(sp libspotify.Search, i int) *Track { return wrapTrack(native.searchTrack(sp, i), sess) },
	)
}

// Close releases the sp_search.
func (s *Search) Close() error {
	return s.ref.Close()
}

func (s *Search) String() string {
	if s.ref.Disposed() {
		return "Search(closed)"
	}
	return fmt.Sprintf("Search(%q)", s.Query())
}
