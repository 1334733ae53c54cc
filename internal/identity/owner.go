package identity

import (
	"sync"
)

// BindResult reports what BindIfMatching did.
type BindResult int

const (
	BindNoMatch BindResult = iota
	BindBound
	BindAlreadyBound
	BindConflict
)

func (r BindResult) String() string {
	switch r {
	case BindBound:
		return "bound"
	case BindAlreadyBound:
		return "already_bound"
	case BindConflict:
		return "conflict"
	default:
		return "no_match"
	}
}

// OwnerBinding is the single process-wide owner slot. It starts unbound and is
// bound at most once; the first successful bind is authoritative.
type OwnerBinding struct {
	mu     sync.RWMutex
	handle string
	owner  int64
	bound  bool
}

func NewOwnerBinding(handle string) *OwnerBinding {
	return &OwnerBinding{handle: NormalizeHandle(handle)}
}

// BindIfMatching binds userID as owner when handle matches the configured
// owner handle and the slot is still empty. A different user presenting the
// same handle after the bind gets BindConflict and changes nothing.
func (b *OwnerBinding) BindIfMatching(handle string, userID int64) BindResult {
	if b == nil || b.handle == "" {
		return BindNoMatch
	}
	if NormalizeHandle(handle) != b.handle {
		return BindNoMatch
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.bound {
		b.owner = userID
		b.bound = true
		return BindBound
	}
	if b.owner == userID {
		return BindAlreadyBound
	}
	return BindConflict
}

func (b *OwnerBinding) IsOwner(userID int64) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bound && b.owner == userID
}

func (b *OwnerBinding) Owner() (int64, bool) {
	if b == nil {
		return 0, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.owner, b.bound
}

// Handle returns the normalized configured owner handle.
func (b *OwnerBinding) Handle() string {
	if b == nil {
		return ""
	}
	return b.handle
}
