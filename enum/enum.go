// Package enum turns integer codes returned by a native library into
// canonical, named constants.
//
// Each Namespace keeps exactly one *Const per integer value, so two lookups
// of the same value return the same pointer and comparing constants with ==
// agrees with comparing their values.
package enum

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// ErrUnknownValue is returned by Lookup for values never defined.
var ErrUnknownValue = errors.New("enum: unknown value")

// Const is one named value of a Namespace. It is immutable.
type Const struct {
	ns    *Namespace
	name  string
	value int
}

// Name returns the symbolic name the value was first defined with.
func (c *Const) Name() string { return c.name }

// Value returns the integer value.
func (c *Const) Value() int { return c.value }

// Namespace returns the namespace c belongs to.
func (c *Const) Namespace() *Namespace { return c.ns }

// Is reports whether c has integer value v.
func (c *Const) Is(v int) bool { return c != nil && c.value == v }

// Equal reports whether c and o are the same constant. Within a namespace
// this is both pointer and value equality.
func (c *Const) Equal(o *Const) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.ns == o.ns && c.value == o.value
}

// String renders "Namespace.name: value".
func (c *Const) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s.%s: %d", c.ns.name, c.name, c.value)
}

// Namespace is an independent value-to-constant mapping. It is safe for
// concurrent use.
type Namespace struct {
	name string

	mu      sync.RWMutex
	byValue map[int]*Const
	byName  map[string]*Const
}

// NewNamespace returns an empty namespace.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		name:    name,
		byValue: make(map[int]*Const),
		byName:  make(map[string]*Const),
	}
}

// FromTable builds a namespace from a fixed name-to-value table. When several
// names share a value, the alphabetically first becomes the canonical name
// and the others are aliases.
func FromTable(name string, table map[string]int) *Namespace {
	ns := NewNamespace(name)
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		ns.Define(n, table[n])
	}
	return ns
}

// Name returns the namespace name.
func (ns *Namespace) Name() string { return ns.name }

// Define registers name for value and returns the canonical constant. If
// value already has a constant, it is reused and name becomes an alias.
func (ns *Namespace) Define(name string, value int) *Const {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	c, ok := ns.byValue[value]
	if !ok {
		c = &Const{ns: ns, name: name, value: value}
		ns.byValue[value] = c
	}
	ns.byName[name] = c
	return c
}

// Lookup returns the canonical constant for value.
func (ns *Namespace) Lookup(value int) (*Const, error) {
	ns.mu.RLock()
	c, ok := ns.byValue[value]
	ns.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s(%d)", ErrUnknownValue, ns.name, value)
	}
	return c, nil
}

// MustLookup is Lookup for values known to be defined, such as the
// package-level constants built from a fixed table. It panics otherwise.
func (ns *Namespace) MustLookup(value int) *Const {
	c, err := ns.Lookup(value)
	if err != nil {
		panic(err)
	}
	return c
}

// ByName returns the constant registered under name or alias.
func (ns *Namespace) ByName(name string) (*Const, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	c, ok := ns.byName[name]
	return c, ok
}

// Values returns every canonical constant, ordered by value.
func (ns *Namespace) Values() []*Const {
	ns.mu.RLock()
	out := make([]*Const, 0, len(ns.byValue))
	for _, c := range ns.byValue {
		out = append(out, c)
	}
	ns.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Const) int { return cmp.Compare(a.value, b.value) })
	return out
}
