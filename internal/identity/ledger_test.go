package identity

import (
	"testing"
	"time"
)

func TestLedgerTouchNeverMovesBackwards(t *testing.T) {
	l := NewLedger()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	l.Touch(User{ID: 1, DisplayName: "Asha", Handle: "asha"}, base)
	l.Touch(User{ID: 1, DisplayName: "Asha K"}, base.Add(-time.Hour))

	got, ok := l.Get(1)
	if !ok {
		t.Fatalf("Get(1) missing")
	}
	if !got.LastSeen.Equal(base) {
		t.Fatalf("LastSeen = %v, want %v", got.LastSeen, base)
	}
	if got.DisplayName != "Asha K" {
		t.Fatalf("DisplayName = %q, want refreshed name", got.DisplayName)
	}
	if got.Handle != "asha" {
		t.Fatalf("Handle = %q, want kept handle", got.Handle)
	}
}

func TestLedgerSnapshotSortedByLastSeenDesc(t *testing.T) {
	l := NewLedger()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l.Touch(User{ID: 1, DisplayName: "a"}, base)
	l.Touch(User{ID: 2, DisplayName: "b"}, base.Add(2*time.Minute))
	l.Touch(User{ID: 3, DisplayName: "c"}, base.Add(time.Minute))

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len(snapshot) = %d, want 3", len(snap))
	}
	want := []int64{2, 3, 1}
	for i, id := range want {
		if snap[i].UserID != id {
			t.Fatalf("snapshot[%d].UserID = %d, want %d", i, snap[i].UserID, id)
		}
	}
}
