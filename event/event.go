// Package event is a small named-event dispatcher.
//
// Listeners are registered per event name with optional bound arguments and
// are invoked synchronously, in registration order, by Emit. A callback
// returns whether it wants to keep receiving the event; returning false
// unregisters it right after that call.
package event

import (
	"slices"
	"sync"

	"github.com/obinnaokechukwu/spgo/internal/metrics"
)

// Callback receives the emitted arguments followed by the arguments bound at
// registration. It returns false to unregister itself.
type Callback func(args ...any) (keep bool)

// Listener gives a Callback an identity, so the same callback can be
// registered several times and later removed with Off.
type Listener struct {
	fn Callback
}

// Listen wraps fn in a Listener.
func Listen(fn Callback) *Listener {
	if fn == nil {
		panic("event: nil callback")
	}
	return &Listener{fn: fn}
}

type registration struct {
	listener *Listener
	bound    []any
}

// Emitter holds the registrations for any number of event names. The zero
// value is ready to use.
//
// Registration is safe from any goroutine, including from libspotify's
// callback thread. The lock is never held while a callback runs, so
// callbacks may register and unregister freely.
type Emitter struct {
	mu        sync.Mutex
	listeners map[string][]*registration
}

// On registers l for name. Each call adds a new, independent registration.
func (e *Emitter) On(name string, l *Listener, bound ...any) {
	if l == nil {
		panic("event: nil listener")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]*registration)
	}
	e.listeners[name] = append(e.listeners[name], &registration{listener: l, bound: bound})
}

// OnFunc registers fn and returns the Listener created for it.
func (e *Emitter) OnFunc(name string, fn Callback, bound ...any) *Listener {
	l := Listen(fn)
	e.On(name, l, bound...)
	return l
}

// Off removes every registration of l for name. A nil l removes all
// registrations for name.
func (e *Emitter) Off(name string, l *Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == nil {
		delete(e.listeners, name)
		return
	}
	kept := slices.DeleteFunc(e.listeners[name], func(r *registration) bool {
		return r.listener == l
	})
	e.set(name, kept)
}

// Clear removes every registration for every event.
func (e *Emitter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = nil
}

// Count returns the number of registrations for name.
func (e *Emitter) Count(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[name])
}

// Emit calls every listener registered for name when Emit starts, in order,
// with args followed by the listener's bound arguments. A listener that
// returns false is removed after its call. Listeners registered during the
// emission are not called until the next one.
//
// A panicking callback is not recovered: it propagates to the caller and
// the remaining listeners are skipped.
func (e *Emitter) Emit(name string, args ...any) {
	e.mu.Lock()
	regs := slices.Clone(e.listeners[name])
	e.mu.Unlock()

	metrics.EventsEmitted.WithLabelValues(name).Inc()

	for _, r := range regs {
		callArgs := make([]any, 0, len(args)+len(r.bound))
		callArgs = append(callArgs, args...)
		callArgs = append(callArgs, r.bound...)
		if !r.listener.fn(callArgs...) {
			e.drop(name, r)
		}
	}
}

func (e *Emitter) drop(name string, target *registration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	list := e.listeners[name]
	if i := slices.Index(list, target); i >= 0 {
		e.set(name, slices.Delete(list, i, i+1))
	}
}

// set stores list for name, forgetting the name once it is empty.
func (e *Emitter) set(name string, list []*registration) {
	if len(list) == 0 {
		delete(e.listeners, name)
		return
	}
	e.listeners[name] = list
}
