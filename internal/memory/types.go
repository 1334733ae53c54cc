package memory

import (
	"time"
)

// Context labels stored on each exchange.
const (
	ContextPrivate = "private"
	ContextGroup   = "group"
)

// Default history caps.
const (
	DefaultUserCap  = 10
	DefaultGroupCap = 20
)

// Exchange is one recorded turn: what was said to the bot and what it answered.
// It is created once, after the reply is known, and never mutated.
type Exchange struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	SpeakerName  string    `json:"speaker_name"`
	Incoming     string    `json:"incoming"`
	Outgoing     string    `json:"outgoing"`
	ContextLabel string    `json:"context_label"`
	ChatTitle    string    `json:"chat_title,omitempty"`
	MediaLabel   string    `json:"media_label,omitempty"`
}

// IsPrivate reports whether the exchange happened in a private chat.
func (e Exchange) IsPrivate() bool { return e.ContextLabel != ContextGroup }

// UserEntry is the input to RecordUser.
type UserEntry struct {
	Incoming     string
	Outgoing     string
	DisplayName  string
	ContextLabel string
	ChatTitle    string
	MediaLabel   string
	At           time.Time
}

// GroupEntry is the input to RecordGroup.
type GroupEntry struct {
	SpeakerName string
	Incoming    string
	Outgoing    string
	ChatTitle   string
	MediaLabel  string
	At          time.Time
}

// Options configures history caps. Non-positive caps fall back to defaults.
type Options struct {
	UserCap  int
	GroupCap int
}
