package engine

import (
	"errors"
	"testing"

	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

func TestTableResolve(t *testing.T) {
	tests := []struct {
		name    string
		id      protocol.ResourceID
		newName string
		wantID  protocol.ResourceID
		wantErr error
	}{
		{name: "any picks first free", id: protocol.ResourceAny, newName: "c", wantID: 1},
		{name: "out of bounds picks first free", id: 500, newName: "c", wantID: 1},
		{name: "in bounds id kept", id: 3, newName: "c", wantID: 3},
		{name: "rename in place", id: 0, newName: "a2", wantID: 0},
		{name: "same name same slot", id: 2, newName: "b", wantID: 2},
		{name: "collision with other slot", id: 0, newName: "b", wantErr: errNameCollision},
		{name: "collision on auto", id: protocol.ResourceAny, newName: "a", wantErr: errNameCollision},
		{name: "empty name", id: protocol.ResourceAny, newName: "", wantErr: errEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTable[int](4)
			id, _ := tb.resolve(protocol.ResourceAny, "a")
			tb.put(id, "a", 1)
			tb.resolve(protocol.ResourceAny, "x")
			tb.put(2, "b", 2)

			got, err := tb.resolve(tt.id, tt.newName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("resolve err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.wantID {
				t.Errorf("resolve id = %d, want %d", got, tt.wantID)
			}
		})
	}
}

func TestTableGrowsByChunk(t *testing.T) {
	tb := newTable[int](4)
	for i := 0; i < 5; i++ {
		id, err := tb.resolve(protocol.ResourceAny, string(rune('a'+i)))
		if err != nil || id != protocol.ResourceID(i) {
			t.Fatalf("resolve %d = %d, %v", i, id, err)
		}
		tb.put(id, string(rune('a'+i)), i)
	}
	if len(tb.slots) != 8 {
		t.Errorf("len(slots) = %d, want 8", len(tb.slots))
	}
}

func TestTableUpsert(t *testing.T) {
	tb := newTable[string](4)
	sameKind := func(v string) bool { return v[0] == 'u' }

	id, s, err := tb.upsert(protocol.ResourceAny, "layer", sameKind, func() string { return "u:fresh" })
	if err != nil || id != 0 {
		t.Fatalf("upsert = %d, %v", id, err)
	}
	s.value = "u:data"
	s.subs.Add(session.New("a"))

	// Rename with the same kind keeps payload and subscribers.
	_, s2, _ := tb.upsert(0, "renamed", sameKind, func() string { return "u:fresh" })
	if s2 != s || s2.value != "u:data" || s2.name != "renamed" || s2.subs.Len() != 1 {
		t.Fatalf("rename replaced the slot: %+v", s2)
	}

	// A kind change starts over.
	_, s3, _ := tb.upsert(0, "renamed", func(string) bool { return false }, func() string { return "r:fresh" })
	if s3 == s || s3.value != "r:fresh" || s3.subs.Len() != 0 {
		t.Fatalf("retype kept old slot: %+v", s3)
	}

	if tb.remove(0) == nil || tb.remove(0) != nil {
		t.Error("remove should succeed exactly once")
	}
	if tb.active() != 0 {
		t.Errorf("active = %d, want 0", tb.active())
	}
}
