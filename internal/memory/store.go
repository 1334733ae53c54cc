package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps bounded per-user and per-group exchange histories in process
// memory. Every mutation goes through RecordUser, RecordGroup or ClearUser,
// which hold the write lock, so append order equals completion order.
type Store struct {
	mu       sync.RWMutex
	users    map[int64][]Exchange
	groups   map[int64][]Exchange
	userCap  int
	groupCap int
	now      func() time.Time
}

func NewStore(opts Options) *Store {
	if opts.UserCap <= 0 {
		opts.UserCap = DefaultUserCap
	}
	if opts.GroupCap <= 0 {
		opts.GroupCap = DefaultGroupCap
	}
	return &Store{
		users:    make(map[int64][]Exchange),
		groups:   make(map[int64][]Exchange),
		userCap:  opts.UserCap,
		groupCap: opts.GroupCap,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) UserCap() int  { return s.userCap }
func (s *Store) GroupCap() int { return s.groupCap }

// RecordUser appends an exchange to the user's history and evicts the oldest
// entries beyond the user cap.
func (s *Store) RecordUser(userID int64, e UserEntry) Exchange {
	label := e.ContextLabel
	if label != ContextGroup {
		label = ContextPrivate
	}
	ex := Exchange{
		ID:           uuid.NewString(),
		Timestamp:    s.stamp(e.At),
		SpeakerName:  e.DisplayName,
		Incoming:     e.Incoming,
		Outgoing:     e.Outgoing,
		ContextLabel: label,
		ChatTitle:    e.ChatTitle,
		MediaLabel:   e.MediaLabel,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = appendBounded(s.users[userID], ex, s.userCap)
	return ex
}

// RecordGroup appends an exchange to the group's history and evicts the
// oldest entries beyond the group cap.
func (s *Store) RecordGroup(groupID int64, e GroupEntry) Exchange {
	ex := Exchange{
		ID:           uuid.NewString(),
		Timestamp:    s.stamp(e.At),
		SpeakerName:  e.SpeakerName,
		Incoming:     e.Incoming,
		Outgoing:     e.Outgoing,
		ContextLabel: ContextGroup,
		ChatTitle:    e.ChatTitle,
		MediaLabel:   e.MediaLabel,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[groupID] = appendBounded(s.groups[groupID], ex, s.groupCap)
	return ex
}

// UserHistory returns a copy of the user's history, oldest first.
func (s *Store) UserHistory(userID int64) []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneExchanges(s.users[userID])
}

// GroupHistory returns a copy of the group's history, oldest first.
func (s *Store) GroupHistory(groupID int64) []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneExchanges(s.groups[groupID])
}

func (s *Store) UserCount(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users[userID])
}

// Counts returns the number of stored exchanges per user.
func (s *Store) Counts() map[int64]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]int, len(s.users))
	for id, arr := range s.users {
		out[id] = len(arr)
	}
	return out
}

// ClearUser empties the user's history. Clearing an unknown user is a no-op.
func (s *Store) ClearUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; ok {
		s.users[userID] = nil
	}
}

func (s *Store) stamp(at time.Time) time.Time {
	if at.IsZero() {
		return s.now()
	}
	return at.UTC()
}

// appendBounded appends ex and drops from the head until len <= cap. The
// result never aliases the previous backing array so copies handed out by
// UserHistory stay stable.
func appendBounded(arr []Exchange, ex Exchange, limit int) []Exchange {
	start := 0
	if over := len(arr) + 1 - limit; over > 0 {
		start = over
	}
	next := make([]Exchange, 0, len(arr)-start+1)
	next = append(next, arr[start:]...)
	return append(next, ex)
}

func cloneExchanges(arr []Exchange) []Exchange {
	if len(arr) == 0 {
		return nil
	}
	out := make([]Exchange, len(arr))
	copy(out, arr)
	return out
}
