//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/obinnaokechukwu/spgo/libspotify"
)

// fakeObject is the ref-counted state shared by every fake libspotify type.
type fakeObject struct {
	refs    atomic.Int32
	loaded  atomic.Bool
	errCode atomic.Int32
}

func (o *fakeObject) addRef() int32 { o.refs.Add(1); return 0 }

func (o *fakeObject) release() int32 {
	if o.refs.Add(-1) < 0 {
		panic("fake: released more often than retained")
	}
	return 0
}

type fakeImage struct {
	fakeObject
	format int32
	data   []byte
	id     []byte

	mu        sync.Mutex
	callbacks map[uintptr]uintptr // userdata -> callback
}

func newFakeImage(refs int32) *fakeImage {
	img := &fakeImage{callbacks: make(map[uintptr]uintptr), id: bytes.Repeat([]byte{0xab}, libspotify.ImageIDSize)}
	img.refs.Store(refs)
	img.errCode.Store(17)
	return img
}

func (img *fakeImage) ptr() libspotify.Image { return unsafe.Pointer(img) }

func (img *fakeImage) numCallbacks() int {
	img.mu.Lock()
	defer img.mu.Unlock()
	return len(img.callbacks)
}

// finish marks the image loaded and fires its load callbacks, as
// libspotify does from its own thread.
func (img *fakeImage) finish() {
	img.loaded.Store(true)
	img.errCode.Store(0)
	img.mu.Lock()
	var userdata []uintptr
	for ud := range img.callbacks {
		userdata = append(userdata, ud)
	}
	img.mu.Unlock()
	for _, ud := range userdata {
		imageLoadedTrampoline(img.ptr(), ud)
	}
}

type fakeTrack struct {
	fakeObject
	name     string
	duration time.Duration
}

func newFakeTrack(name string) *fakeTrack {
	t := &fakeTrack{name: name, duration: 3 * time.Minute}
	t.refs.Store(1)
	t.loaded.Store(true)
	return t
}

func (t *fakeTrack) ptr() libspotify.Track { return unsafe.Pointer(t) }

type fakeSearch struct {
	fakeObject
	query string
	total int

	mu     sync.Mutex
	tracks []*fakeTrack
}

func newFakeSearch(query string, tracks ...*fakeTrack) *fakeSearch {
	s := &fakeSearch{query: query, total: 100, tracks: tracks}
	s.refs.Store(1)
	return s
}

func (s *fakeSearch) ptr() libspotify.Search { return unsafe.Pointer(s) }

func (s *fakeSearch) add(t *fakeTrack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = append(s.tracks, t)
}

// fakeLib is an in-memory libspotify.
type fakeLib struct {
	processCalls atomic.Int32
	processCode  atomic.Int32

	mu        sync.Mutex
	onProcess func(call int)
}

// installFake replaces the native API for the rest of the test. The fake is
// left installed afterwards so finalizers of proxies from earlier tests
// never reach the real library.
func installFake(t *testing.T) *fakeLib {
	t.Helper()
	f := &fakeLib{}
	native = f.api()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultSession = nil
		defaultMu.Unlock()
	})
	return f
}

func (f *fakeLib) setOnProcess(fn func(call int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onProcess = fn
}

func asImage(p libspotify.Image) *fakeImage   { return (*fakeImage)(p) }
func asSearch(p libspotify.Search) *fakeSearch { return (*fakeSearch)(p) }
func asTrack(p libspotify.Track) *fakeTrack    { return (*fakeTrack)(p) }

func (f *fakeLib) api() *nativeAPI {
	return &nativeAPI{
		loaded:       func() bool { return true },
		buildID:      func() string { return "fake-build" },
		errorMessage: func(code int32) string { return fmt.Sprintf("fake error %d", code) },
		processEvents: func(libspotify.Session) (time.Duration, int32) {
			call := int(f.processCalls.Add(1))
			f.mu.Lock()
			hook := f.onProcess
			f.mu.Unlock()
			if hook != nil {
				hook(call)
			}
			return 100 * time.Millisecond, f.processCode.Load()
		},

		imageCreate: func(_ libspotify.Session, id []byte) libspotify.Image {
			img := newFakeImage(1)
			img.id = bytes.Clone(id)
			return img.ptr()
		},
		imageAddRef:   func(p libspotify.Image) int32 { return asImage(p).addRef() },
		imageRelease:  func(p libspotify.Image) int32 { return asImage(p).release() },
		imageIsLoaded: func(p libspotify.Image) bool { return asImage(p).loaded.Load() },
		imageError:    func(p libspotify.Image) int32 { return asImage(p).errCode.Load() },
		imageFormat:   func(p libspotify.Image) int32 { return asImage(p).format },
		imageData:     func(p libspotify.Image) []byte { return bytes.Clone(asImage(p).data) },
		imageID:       func(p libspotify.Image) []byte { return bytes.Clone(asImage(p).id) },
		imageAddLoadCallback: func(p libspotify.Image, cb, userdata uintptr) int32 {
			img := asImage(p)
			img.mu.Lock()
			defer img.mu.Unlock()
			img.callbacks[userdata] = cb
			return 0
		},
		imageRemoveLoadCallback: func(p libspotify.Image, _, userdata uintptr) int32 {
			img := asImage(p)
			img.mu.Lock()
			defer img.mu.Unlock()
			delete(img.callbacks, userdata)
			return 0
		},

		searchAddRef:   func(p libspotify.Search) int32 { return asSearch(p).addRef() },
		searchRelease:  func(p libspotify.Search) int32 { return asSearch(p).release() },
		searchIsLoaded: func(p libspotify.Search) bool { return asSearch(p).loaded.Load() },
		searchError:    func(p libspotify.Search) int32 { return asSearch(p).errCode.Load() },
		searchQuery:    func(p libspotify.Search) string { return asSearch(p).query },
		searchNumTracks: func(p libspotify.Search) int {
			s := asSearch(p)
			s.mu.Lock()
			defer s.mu.Unlock()
			return len(s.tracks)
		},
		searchTrack: func(p libspotify.Search, i int) libspotify.Track {
			s := asSearch(p)
			s.mu.Lock()
			defer s.mu.Unlock()
			return unsafe.Pointer(s.tracks[i])
		},
		searchTotalTracks: func(p libspotify.Search) int { return asSearch(p).total },

		trackAddRef:   func(p libspotify.Track) int32 { return asTrack(p).addRef() },
		trackRelease:  func(p libspotify.Track) int32 { return asTrack(p).release() },
		trackIsLoaded: func(p libspotify.Track) bool { return asTrack(p).loaded.Load() },
		trackError:    func(p libspotify.Track) int32 { return asTrack(p).errCode.Load() },
		trackName:     func(p libspotify.Track) string { return asTrack(p).name },
		trackDuration: func(p libspotify.Track) time.Duration { return asTrack(p).duration },

		imageLoadedCallback: func() uintptr { return 0xcb },
	}
}

// fakeSession returns a session pointer the fake accepts.
func fakeSession() libspotify.Session {
	return unsafe.Pointer(new(int))
}
