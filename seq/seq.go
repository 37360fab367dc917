// Package seq presents a native "count + get by index" accessor pair as an
// indexable, sliceable, iterable Go value.
//
// Nothing is cached. The native collection may grow while it loads, so every
// operation asks the native length function again.
package seq

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/obinnaokechukwu/spgo/handle"
)

var (
	// ErrIndexOutOfRange is returned for indices outside [0, Len()).
	ErrIndexOutOfRange = errors.New("seq: index out of range")

	// ErrIndexType is returned by Index for keys that are not integers.
	ErrIndexType = errors.New("seq: index must be an integer")

	// ErrUnsupported is returned when the binding did not provide the
	// length or element function needed by an operation.
	ErrUnsupported = errors.New("seq: operation not supported")
)

// Sequence is a read-only view over a native collection owned through a
// handle.Ref. It holds its own reference, so it stays valid after the proxy
// that created it is gone.
type Sequence[H comparable, T any] struct {
	ref    *handle.Ref[H]
	length func(H) int
	get    func(H, int) T
}

// New builds a sequence over ref. Either function may be nil when the native
// library has no such accessor; the operations needing it then fail with
// ErrUnsupported.
func New[H comparable, T any](ref *handle.Ref[H], length func(H) int, get func(H, int) T) *Sequence[H, T] {
	if ref == nil {
		panic("seq: nil handle ref")
	}
	return &Sequence[H, T]{ref: ref, length: length, get: get}
}

// Len returns the current native length.
func (s *Sequence[H, T]) Len() (int, error) {
	if s.length == nil {
		return 0, fmt.Errorf("%w: length", ErrUnsupported)
	}
	return handle.Use(s.ref, s.length), nil
}

// At returns element i. Negative indices are rejected, never counted from
// the end.
func (s *Sequence[H, T]) At(i int) (T, error) {
	var zero T
	n, err := s.Len()
	if err != nil {
		return zero, err
	}
	if i < 0 || i >= n {
		return zero, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, n)
	}
	if s.get == nil {
		return zero, fmt.Errorf("%w: element access", ErrUnsupported)
	}
	return handle.Use(s.ref, func(h H) T { return s.get(h, i) }), nil
}

// Index is At for keys of dynamic type, e.g. decoded from JSON or a script.
// Every Go integer kind is accepted; anything else fails with ErrIndexType.
func (s *Sequence[H, T]) Index(key any) (T, error) {
	i, err := toIndex(key)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.At(i)
}

// Items materialises the whole collection, calling the element function
// once per index.
func (s *Sequence[H, T]) Items() ([]T, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []T{}, nil
	}
	if s.get == nil {
		return nil, fmt.Errorf("%w: element access", ErrUnsupported)
	}
	return handle.Use(s.ref, func(h H) []T {
		out := make([]T, n)
		for i := range n {
			out[i] = s.get(h, i)
		}
		return out
	}), nil
}

// Slice returns elements [start, stop). The whole collection is materialised
// first, so the cost is always one native call per element regardless of the
// slice size. Bounds past the end are clamped to the length; negative bounds
// fail with ErrIndexOutOfRange.
func (s *Sequence[H, T]) Slice(start, stop int) ([]T, error) {
	if start < 0 || stop < 0 {
		return nil, fmt.Errorf("%w: slice [%d:%d]", ErrIndexOutOfRange, start, stop)
	}
	items, err := s.Items()
	if err != nil {
		return nil, err
	}
	n := len(items)
	start, stop = min(start, n), min(stop, n)
	if start >= stop {
		return []T{}, nil
	}
	return items[start:stop:stop], nil
}

// All iterates lazily by index. The length is read again before every
// element, so a collection that shrinks mid-iteration ends early. Each range
// over the iterator starts from index 0. An unsupported sequence yields
// nothing.
func (s *Sequence[H, T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; ; i++ {
			v, err := s.At(i)
			if err != nil || !yield(i, v) {
				return
			}
		}
	}
}

// Values is All without the index.
func (s *Sequence[H, T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Close drops the sequence's reference on the native collection.
func (s *Sequence[H, T]) Close() error {
	return s.ref.Close()
}

// String renders the materialised elements, e.g. "[a, b, c]".
func (s *Sequence[H, T]) String() string {
	items, err := s.Items()
	if err != nil {
		return fmt.Sprintf("[<error: %v>]", err)
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprint(&b, v)
	}
	b.WriteByte(']')
	return b.String()
}

func toIndex(key any) (int, error) {
	switch v := key.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt || v < math.MinInt {
			return 0, fmt.Errorf("%w: index %d", ErrIndexOutOfRange, v)
		}
		return int(v), nil
	case uint:
		return fromUnsigned(uint64(v))
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return fromUnsigned(uint64(v))
	case uint64:
		return fromUnsigned(v)
	case uintptr:
		return fromUnsigned(uint64(v))
	}
	return 0, fmt.Errorf("%w, got %T", ErrIndexType, key)
}

func fromUnsigned(v uint64) (int, error) {
	if v > math.MaxInt {
		return 0, fmt.Errorf("%w: index %d", ErrIndexOutOfRange, v)
	}
	return int(v), nil
}
