//go:build !ios && !android && (amd64 || arm64)

package spgo

import (
	"fmt"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/spgo/event"
	"github.com/obinnaokechukwu/spgo/internal/handles"
	"github.com/obinnaokechukwu/spgo/internal/logging"
)

// loadSignal is the part of a proxy reachable from native callbacks.
type loadSignal struct {
	events event.Emitter
	done   chan struct{}
	once   sync.Once
}

func newLoadSignal() *loadSignal {
	return &loadSignal{done: make(chan struct{})}
}

func (s *loadSignal) fire() {
	s.once.Do(func() { close(s.done) })
	s.events.Emit(EventImageLoaded)
}

// imageLoadedTrampoline is called by libspotify and forwards to the image's
// listeners.
// Signature: void (*)(sp_image *image, void *userdata)
func imageLoadedTrampoline(_ unsafe.Pointer, userdata uintptr) {
	v, ok := handles.Lookup(handles.Token(userdata))
	if !ok {
		return
	}
	sig, ok := v.(*loadSignal)
	if !ok {
		return
	}

	// A panic must not unwind into libspotify.
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Error("image loaded listener panicked",
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	sig.fire()
}
