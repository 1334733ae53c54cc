package identity

import "strings"

// ChatKind is the platform-reported chat type.
type ChatKind string

const (
	KindPrivate    ChatKind = "private"
	KindGroup      ChatKind = "group"
	KindSupergroup ChatKind = "supergroup"
	KindChannel    ChatKind = "channel"
)

// ParseChatKind normalizes a raw chat type. Unknown values are kept as-is so
// the dispatch policy can reject them.
func ParseChatKind(raw string) ChatKind {
	return ChatKind(strings.ToLower(strings.TrimSpace(raw)))
}

func (k ChatKind) IsPrivate() bool { return k == KindPrivate }

func (k ChatKind) IsGroupLike() bool {
	return k == KindGroup || k == KindSupergroup
}

// User is the sender of an inbound message.
type User struct {
	ID          int64
	DisplayName string
	Handle      string
}

// Name returns the display name used in replies, falling back to "friend".
func (u User) Name() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	return "friend"
}

// Chat is the conversation a message arrived in.
type Chat struct {
	ID    int64
	Kind  ChatKind
	Title string
}

// Location is the human label for a chat: "Private Chat" or the group title.
func (c Chat) Location() string {
	if c.Kind.IsPrivate() {
		return "Private Chat"
	}
	if title := strings.TrimSpace(c.Title); title != "" {
		return title
	}
	return "Group Chat"
}

// NormalizeHandle lowercases a handle and strips a leading "@".
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
