// Package registry provides a small, concurrency-safe name to value lookup
// with a settable default. It backs the pluggable parts of loremipsum:
// built-in samples, serialization content types, content encodings and URL
// schemes. Entries are registered explicitly; nothing is discovered.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrNotRegistered is returned when a lookup names no registered entry.
var ErrNotRegistered = errors.New("registry: not registered")

var nameReplacer = strings.NewReplacer("/", "_", "-", "_")

// Normalize maps a lookup name to its registered form: "/" and "-" become
// "_", so "application/x-tar" and "application_x_tar" name the same entry.
func Normalize(name string) string {
	return nameReplacer.Replace(name)
}

// Registry maps normalized names to values of type T.
type Registry[T any] struct {
	mu       sync.RWMutex
	kind     string
	entries  map[string]T
	fallback string
}

// New returns an empty registry. kind names the registered things in
// error messages, e.g. "content type".
func New[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, entries: make(map[string]T)}
}

// Register adds or replaces the entry for name.
func (r *Registry[T]) Register(name string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[Normalize(name)] = v
}

// Unregister removes name. The default is cleared if it pointed at name.
func (r *Registry[T]) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name = Normalize(name)
	delete(r.entries, name)
	if r.fallback == name {
		r.fallback = ""
	}
}

// Get returns the entry registered under name.
func (r *Registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[Normalize(name)]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %q", ErrNotRegistered, r.kind, name)
	}
	return v, nil
}

// MustGet is like Get but panics when name is not registered.
func (r *Registry[T]) MustGet(name string) T {
	v, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// SetDefault makes name the default entry. It must already be registered.
func (r *Registry[T]) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name = Normalize(name)
	if _, ok := r.entries[name]; !ok {
		return fmt.Errorf("%w: %s %q", ErrNotRegistered, r.kind, name)
	}
	r.fallback = name
	return nil
}

// Default returns the default entry and its name. ok is false when no
// default has been set.
func (r *Registry[T]) Default() (v T, name string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fallback == "" {
		return v, "", false
	}
	return r.entries[r.fallback], r.fallback, true
}

// Registered returns a copy of every entry, keyed by registered name.
func (r *Registry[T]) Registered() map[string]T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.entries)
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}
