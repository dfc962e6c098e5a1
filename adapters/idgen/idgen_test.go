package idgen_test

import (
	"regexp"
	"sort"
	"sync"
	"testing"

	"github.com/artpar/actuate/adapters/idgen"
)

var uuidV7 = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestUUID_New(t *testing.T) {
	id := idgen.UUID{}.New()
	if !uuidV7.MatchString(id) {
		t.Errorf("ID %s doesn't match UUID v7 format", id)
	}
}

func TestUUID_Ordered(t *testing.T) {
	g := idgen.UUID{}

	ids := make([]string, 200)
	for i := range ids {
		ids[i] = g.New()
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("IDs should sort in generation order")
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestSequential_New(t *testing.T) {
	g := idgen.NewSequential("ex-")

	for _, want := range []string{"ex-1", "ex-2", "ex-3"} {
		if id := g.New(); id != want {
			t.Errorf("ID = %s, want %s", id, want)
		}
	}
}

func TestSequential_Reset(t *testing.T) {
	g := idgen.NewSequential("")
	g.New()
	g.New()
	g.Reset()

	if id := g.New(); id != "1" {
		t.Errorf("after reset ID = %s, want 1", id)
	}
}

func TestSequential_ConcurrentAccess(t *testing.T) {
	g := idgen.NewSequential("c")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := g.New()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate ID: %s", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 1000 {
		t.Errorf("expected 1000 unique IDs, got %d", len(seen))
	}
}
