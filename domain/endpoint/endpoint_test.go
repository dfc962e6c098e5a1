package endpoint

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry_RegisterKeepsOrder(t *testing.T) {
	r := NewRegistry[string]()
	for _, p := range []string{"/health", "/env", "/trace", "/info"} {
		if err := r.Register(Descriptor{Path: p, Type: p[1:]}, "h"+p); err != nil {
			t.Fatalf("Register(%s): %v", p, err)
		}
	}

	var got []string
	for _, d := range r.Snapshot().Descriptors() {
		got = append(got, d.Path)
	}
	if diff := cmp.Diff([]string{"/health", "/env", "/trace", "/info"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_DuplicatePath(t *testing.T) {
	r := NewRegistry[int]()
	if err := r.Register(Descriptor{Path: "/health"}, 1); err != nil {
		t.Fatalf("Register: %v", err)
	}

	err := r.Register(Descriptor{Path: "/health", Type: "other"}, 2)
	if !errors.Is(err, ErrDuplicatePath) {
		t.Fatalf("err = %v, want ErrDuplicatePath", err)
	}
	if r.Snapshot().Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Snapshot().Len())
	}
}

func TestRegistry_InvalidPath(t *testing.T) {
	r := NewRegistry[int]()
	if err := r.Register(Descriptor{Path: "health"}, 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("err = %v, want ErrInvalidPath", err)
	}
	if err := r.Register(Descriptor{Path: ""}, 1); err != nil {
		t.Errorf("empty path should be accepted for the links endpoint: %v", err)
	}
}

func TestSnapshot_Lookup(t *testing.T) {
	s, err := NewSnapshot(
		Entry[string]{Descriptor: Descriptor{Path: "/env", Sensitive: true}, Handler: "env"},
		Entry[string]{Descriptor: Descriptor{Path: "/health"}, Handler: "health"},
	)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}

	e, err := s.Lookup("/env")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if e.Handler != "env" || !e.Descriptor.Sensitive {
		t.Errorf("Lookup = %+v", e)
	}

	if _, err := s.Lookup("/nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRegistry_ReplaceFailureKeepsSnapshot(t *testing.T) {
	r := NewRegistry[int]()
	_ = r.Register(Descriptor{Path: "/health"}, 1)
	before := r.Snapshot()

	err := r.Replace([]Entry[int]{
		{Descriptor: Descriptor{Path: "/a"}},
		{Descriptor: Descriptor{Path: "/a"}},
	})
	if !errors.Is(err, ErrDuplicatePath) {
		t.Fatalf("err = %v, want ErrDuplicatePath", err)
	}
	if r.Snapshot() != before {
		t.Error("snapshot changed after failed Replace")
	}
}

func TestSnapshot_EntriesIsCopy(t *testing.T) {
	r := NewRegistry[int]()
	_ = r.Register(Descriptor{Path: "/health"}, 1)

	entries := r.Snapshot().Entries()
	entries[0].Descriptor.Path = "/mutated"

	if _, err := r.Snapshot().Lookup("/health"); err != nil {
		t.Errorf("snapshot mutated through Entries(): %v", err)
	}
}

func TestRegistry_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	r := NewRegistry[int]()
	small := []Entry[int]{{Descriptor: Descriptor{Path: "/a"}}}
	large := []Entry[int]{
		{Descriptor: Descriptor{Path: "/a"}},
		{Descriptor: Descriptor{Path: "/b"}},
		{Descriptor: Descriptor{Path: "/c"}},
	}
	_ = r.Replace(small)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				s := r.Snapshot()
				if n := s.Len(); n != 1 && n != 3 {
					errs <- fmt.Errorf("torn snapshot with %d entries", n)
					return
				}
				if len(s.Descriptors()) != s.Len() {
					errs <- fmt.Errorf("descriptors disagree with Len")
					return
				}
			}
		}()
	}
	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			_ = r.Replace(large)
		} else {
			_ = r.Replace(small)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestNilSnapshot(t *testing.T) {
	var s *Snapshot[int]
	if s.Len() != 0 || s.Entries() != nil || s.Descriptors() != nil {
		t.Error("nil snapshot should be empty")
	}
	if _, err := s.Lookup("/x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
