package identity

import (
	"sort"
	"sync"
	"time"
)

// LedgerEntry is the last known state of a user who messaged the bot.
type LedgerEntry struct {
	UserID      int64     `json:"user_id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
	LastSeen    time.Time `json:"last_seen"`
}

// Ledger records every user the bot has seen. Entries are never evicted.
type Ledger struct {
	mu      sync.RWMutex
	entries map[int64]*LedgerEntry
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[int64]*LedgerEntry)}
}

// Touch records an inbound message from u at the given time. last_seen only
// advances; an older timestamp still refreshes handle and display name.
func (l *Ledger) Touch(u User, at time.Time) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[u.ID]
	if !ok {
		l.entries[u.ID] = &LedgerEntry{
			UserID:      u.ID,
			Handle:      u.Handle,
			DisplayName: u.DisplayName,
			LastSeen:    at,
		}
		return
	}
	if u.Handle != "" {
		e.Handle = u.Handle
	}
	if u.DisplayName != "" {
		e.DisplayName = u.DisplayName
	}
	if at.After(e.LastSeen) {
		e.LastSeen = at
	}
}

func (l *Ledger) Get(userID int64) (LedgerEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[userID]
	if !ok {
		return LedgerEntry{}, false
	}
	return *e, true
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Snapshot returns all entries sorted by last seen, most recent first. Ties
// are broken by user id so the order is stable.
func (l *Ledger) Snapshot() []LedgerEntry {
	l.mu.RLock()
	out := make([]LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
