package engine

import (
	"errors"
	"testing"

	"github.com/verse-server/backend/internal/protocol"
)

func TestSparseAutoFillsHolesFirst(t *testing.T) {
	s := newSparse[int](4, 16)
	for i := 0; i < 6; i++ {
		id, err := s.alloc(protocol.ElementAny)
		if err != nil || id != protocol.ElementID(i) {
			t.Fatalf("alloc %d = %d, %v", i, id, err)
		}
	}
	if s.capacity() != 8 {
		t.Fatalf("capacity = %d, want 8", s.capacity())
	}

	s.free(4)
	s.free(1)
	if s.hole != 1 {
		t.Fatalf("hole = %d, want 1", s.hole)
	}
	for _, want := range []protocol.ElementID{1, 4, 6} {
		id, err := s.alloc(protocol.ElementAny)
		if err != nil || id != want {
			t.Fatalf("alloc = %d, %v; want %d", id, err, want)
		}
	}
}

func TestSparseHoleTracksLowestFree(t *testing.T) {
	s := newSparse[int](8, 64)
	for i := 0; i < 8; i++ {
		s.alloc(protocol.ElementAny)
	}
	for _, id := range []protocol.ElementID{6, 2, 5} {
		s.free(id)
		if s.hole > int(id) {
			t.Fatalf("after free(%d) hole = %d", id, s.hole)
		}
		if s.has(protocol.ElementID(s.hole)) {
			t.Fatalf("hole %d points at an occupied slot", s.hole)
		}
	}
}

func TestSparseAutoNeverReturnsOccupied(t *testing.T) {
	s := newSparse[int](4, 64)
	for i := 0; i < 100; i++ {
		if i%4 == 3 {
			s.free(protocol.ElementID(i / 2))
			continue
		}
		id, err := s.alloc(protocol.ElementAny)
		if err != nil {
			t.Fatal(err)
		}
		if v, _ := s.get(id); *v != 0 {
			t.Fatalf("step %d: alloc returned occupied slot %d", i, id)
		}
		s.set(id, i+1)
	}
}

func TestSparseExplicitIDs(t *testing.T) {
	s := newSparse[string](4, 16)

	id, err := s.alloc(10)
	if err != nil || id != 10 {
		t.Fatalf("alloc(10) = %d, %v", id, err)
	}
	if s.capacity() != 12 {
		t.Errorf("capacity = %d, want 12", s.capacity())
	}
	s.set(10, "x")

	// Occupied ids are overwritten in place.
	if id, err := s.alloc(10); err != nil || id != 10 {
		t.Fatalf("second alloc(10) = %d, %v", id, err)
	}
	if s.count() != 1 {
		t.Errorf("count = %d, want 1", s.count())
	}

	// The auto cursor still starts from the bottom.
	if id, _ := s.alloc(protocol.ElementAny); id != 0 {
		t.Errorf("auto alloc = %d, want 0", id)
	}
}

func TestSparseGrowthCap(t *testing.T) {
	s := newSparse[int](64, 4096)

	if _, err := s.alloc(4095); err != nil {
		t.Fatalf("alloc(4095): %v", err)
	}
	capBefore := s.capacity()
	if _, err := s.alloc(protocol.ElementID(capBefore + 4096)); !errors.Is(err, errGrowthCap) {
		t.Fatalf("alloc past cap = %v, want errGrowthCap", err)
	}
	if s.capacity() != capBefore {
		t.Errorf("rejected alloc grew the array to %d", s.capacity())
	}
	if _, err := s.alloc(protocol.ElementID(capBefore + 4095)); err != nil {
		t.Errorf("alloc at cap edge: %v", err)
	}
}

func TestSparseFreeUnknown(t *testing.T) {
	s := newSparse[int](4, 16)
	if s.free(3) {
		t.Error("free of never allocated id returned true")
	}
	s.alloc(3)
	if !s.free(3) || s.free(3) {
		t.Error("free should succeed exactly once")
	}
}
