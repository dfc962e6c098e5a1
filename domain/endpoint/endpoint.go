// Package endpoint describes management endpoints and keeps them in an
// ordered registry.
package endpoint

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	// ErrDuplicatePath is returned when two endpoints claim the same path.
	ErrDuplicatePath = errors.New("duplicate endpoint path")
	// ErrInvalidPath is returned for a path that does not start with "/".
	ErrInvalidPath = errors.New("invalid endpoint path")
	// ErrNotFound is returned when no endpoint is registered at a path.
	ErrNotFound = errors.New("endpoint not found")
)

// Descriptor identifies a management endpoint. The path is its identity;
// the empty path is reserved for the root links endpoint.
type Descriptor struct {
	Path      string `json:"path" yaml:"path"`
	Type      string `json:"type" yaml:"type"`
	Sensitive bool   `json:"sensitive" yaml:"sensitive"`
}

// Validate checks the descriptor path.
func (d Descriptor) Validate() error {
	if d.Path == "" {
		return nil
	}
	if !strings.HasPrefix(d.Path, "/") {
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPath, d.Path)
	}
	return nil
}

// Entry pairs a descriptor with whatever serves it.
type Entry[H any] struct {
	Descriptor Descriptor
	Handler    H
}

// Snapshot is an immutable, ordered view of a registry.
type Snapshot[H any] struct {
	entries []Entry[H]
	byPath  map[string]int
}

// NewSnapshot builds a snapshot from entries in order. Duplicate or invalid
// paths fail the whole snapshot.
func NewSnapshot[H any](entries ...Entry[H]) (*Snapshot[H], error) {
	s := &Snapshot[H]{
		entries: make([]Entry[H], 0, len(entries)),
		byPath:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if err := e.Descriptor.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byPath[e.Descriptor.Path]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, e.Descriptor.Path)
		}
		s.byPath[e.Descriptor.Path] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s, nil
}

// Len returns the number of entries.
func (s *Snapshot[H]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns the entries in registration order.
func (s *Snapshot[H]) Entries() []Entry[H] {
	if s == nil {
		return nil
	}
	out := make([]Entry[H], len(s.entries))
	copy(out, s.entries)
	return out
}

// Descriptors returns the descriptors in registration order.
func (s *Snapshot[H]) Descriptors() []Descriptor {
	if s == nil {
		return nil
	}
	out := make([]Descriptor, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Descriptor
	}
	return out
}

// Lookup returns the entry registered at path.
func (s *Snapshot[H]) Lookup(path string) (Entry[H], error) {
	if s != nil {
		if i, ok := s.byPath[path]; ok {
			return s.entries[i], nil
		}
	}
	return Entry[H]{}, fmt.Errorf("%w: %q", ErrNotFound, path)
}

// Registry holds the current snapshot. Readers load it without locking;
// writers build a new snapshot and swap it in.
type Registry[H any] struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[Snapshot[H]]
}

// NewRegistry creates an empty registry.
func NewRegistry[H any]() *Registry[H] {
	r := &Registry[H]{}
	r.snap.Store(&Snapshot[H]{byPath: map[string]int{}})
	return r
}

// Register appends an endpoint.
func (r *Registry[H]) Register(d Descriptor, h H) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	next, err := NewSnapshot(append(cur.Entries(), Entry[H]{Descriptor: d, Handler: h})...)
	if err != nil {
		return err
	}
	r.snap.Store(next)
	return nil
}

// Replace swaps in a complete set of entries. On error the current
// snapshot stays in place.
func (r *Registry[H]) Replace(entries []Entry[H]) error {
	next, err := NewSnapshot(entries...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.snap.Store(next)
	r.mu.Unlock()
	return nil
}

// Snapshot returns the current snapshot.
func (r *Registry[H]) Snapshot() *Snapshot[H] {
	return r.snap.Load()
}
