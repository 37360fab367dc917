// Package handles maps opaque tokens to Go values so native code can carry a
// reference to a Go object through a void* userdata argument.
//
// Go pointers must not be stored in native memory. Instead the Go value is
// registered here and the returned Token, a plain integer, is handed to
// libspotify. When libspotify calls back with that userdata the value is
// looked up again.
package handles

import (
	"sync"
)

// Token identifies a registered value. The zero Token is never issued.
type Token uintptr

var (
	mu     sync.RWMutex
	values = make(map[Token]any)
	next   Token = 1
)

// Register stores v and returns its token. The value stays reachable until
// Unregister is called, so every Register needs a matching Unregister.
//
// Thread-safe.
func Register(v any) Token {
	if v == nil {
		panic("handles: cannot register nil")
	}
	mu.Lock()
	defer mu.Unlock()
	t := next
	next++
	values[t] = v
	return t
}

// Lookup returns the value registered under t. Callbacks may race with
// Unregister, so a missing token is reported rather than treated as a bug.
//
// Thread-safe.
func Lookup(t Token) (any, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := values[t]
	return v, ok
}

// Unregister forgets t. Unknown tokens are ignored.
//
// Thread-safe.
func Unregister(t Token) {
	mu.Lock()
	defer mu.Unlock()
	delete(values, t)
}

// Count returns the number of registered values. Used by leak tests.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(values)
}
