// Package handle ties the lifetime of an opaque native handle to a Go value.
//
// A Ref owns exactly one reference on a native handle. The reference is either
// adopted, when the caller already holds it, or retained on construction. It is
// released exactly once: by Close, or by the garbage collector once the Ref is
// unreachable.
//
// A Ref is not synchronised beyond its release. Callers that share a proxy
// between goroutines must serialise access themselves.
package handle

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/spgo/internal/logging"
	"github.com/obinnaokechukwu/spgo/internal/metrics"
)

var (
	// ErrDisposed is the panic value (wrapped) when a released Ref is used.
	ErrDisposed = errors.New("handle: use of released handle")

	// ErrNilHandle is the panic value (wrapped) when a zero handle is wrapped.
	ErrNilHandle = errors.New("handle: nil handle")
)

// Ref owns one reference on a native handle of type H.
type Ref[H comparable] struct {
	h        H
	release  func(H)
	once     sync.Once
	disposed atomic.Bool
}

// Adopt takes ownership of a handle the caller has already retained. No
// additional retain is performed.
func Adopt[H comparable](h H, release func(H)) *Ref[H] {
	checkHandle(h, release)
	return wrap(h, release)
}

// Retain performs one retain on h and wraps it.
func Retain[H comparable](h H, retain, release func(H)) *Ref[H] {
	checkHandle(h, release)
	if retain == nil {
		panic("handle: retain function is required")
	}
	retain(h)
	return wrap(h, release)
}

func checkHandle[H comparable](h H, release func(H)) {
	var zero H
	if h == zero {
		panic(fmt.Errorf("%w (%T)", ErrNilHandle, h))
	}
	if release == nil {
		panic("handle: release function is required")
	}
}

func wrap[H comparable](h H, release func(H)) *Ref[H] {
	r := &Ref[H]{h: h, release: release}
	metrics.HandlesLive.Inc()
	runtime.SetFinalizer(r, (*Ref[H]).finalize)
	return r
}

// Get returns the live handle. It panics if the Ref has been released: a
// stale handle is never handed out.
//
// The returned value is only guaranteed valid while the Ref is reachable;
// prefer Use, which keeps the Ref alive for the duration of the native call.
func (r *Ref[H]) Get() H {
	if r == nil || r.disposed.Load() {
		var zero H
		panic(fmt.Errorf("%w (%T)", ErrDisposed, zero))
	}
	return r.h
}

// Disposed reports whether the handle has been released.
func (r *Ref[H]) Disposed() bool {
	return r == nil || r.disposed.Load()
}

// Close releases the handle. Only the first call releases; later calls and
// calls on a nil Ref return nil.
func (r *Ref[H]) Close() error {
	if r == nil {
		return nil
	}
	r.once.Do(func() {
		runtime.SetFinalizer(r, nil)
		r.dispose("close")
	})
	return nil
}

func (r *Ref[H]) finalize() {
	r.once.Do(func() { r.dispose("finalizer") })
}

func (r *Ref[H]) dispose(via string) {
	r.disposed.Store(true)
	h := r.h
	var zero H
	r.h = zero

	r.release(h)

	metrics.HandlesLive.Dec()
	metrics.HandlesReleased.WithLabelValues(via).Inc()
	logging.Logger().Debug("native handle released",
		zap.String("type", fmt.Sprintf("%T", h)),
		zap.String("via", via))
}

// Use calls fn with the live handle and keeps r reachable until fn returns, so
// a finalizer cannot release the handle in the middle of a native call.
func Use[H comparable, T any](r *Ref[H], fn func(H) T) T {
	v := fn(r.Get())
	runtime.KeepAlive(r)
	return v
}
