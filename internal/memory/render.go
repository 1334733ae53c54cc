package memory

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Preview widths used by the different renderings.
const (
	UserContextWidth  = 60
	GroupContextWidth = 50
	MemoryViewWidth   = 100
	ReportWidth       = 80
)

// Truncate returns text unchanged when it has at most n characters, otherwise
// its first n characters followed by "...". Characters are runes.
func Truncate(text string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}

// Location returns the label shown next to an exchange in rendered context.
func (e Exchange) Location() string {
	if e.IsPrivate() {
		return "Private"
	}
	return e.ChatTitle
}

// RenderUserContext renders the user's history for prompt assembly.
func (s *Store) RenderUserContext(userID int64, displayName string) string {
	history := s.UserHistory(userID)
	if len(history) == 0 {
		return fmt.Sprintf("This is my first conversation with %s.", displayName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "My conversation history with %s:\n", displayName)
	for i, e := range history {
		fmt.Fprintf(&b, "%d. (%s) User: %s\n", i+1, e.Location(), Truncate(e.Incoming, UserContextWidth))
		fmt.Fprintf(&b, "   My reply: %s\n", Truncate(e.Outgoing, UserContextWidth))
	}
	return b.String()
}

// RenderGroupContext renders the group's history for prompt assembly.
func (s *Store) RenderGroupContext(groupID int64, chatTitle string) string {
	history := s.GroupHistory(groupID)
	if len(history) == 0 {
		return fmt.Sprintf("This is the first conversation in %s.", chatTitle)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent conversation in %s:\n", chatTitle)
	for i, e := range history {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, e.SpeakerName, Truncate(e.Incoming, GroupContextWidth))
		fmt.Fprintf(&b, "   My reply: %s\n", Truncate(e.Outgoing, GroupContextWidth))
	}
	return b.String()
}

// RenderUserMemory renders the /memory command view. It uses Telegram
// Markdown emphasis.
func (s *Store) RenderUserMemory(userID int64, displayName string) string {
	history := s.UserHistory(userID)
	if len(history) == 0 {
		return fmt.Sprintf("Hey %s! We haven't had any conversations yet. Start chatting with me! 😊", displayName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🧠 **Memory Bank for %s**\n\n", displayName)
	fmt.Fprintf(&b, "I remember our last %d conversations:\n\n", len(history))
	for i, e := range history {
		location := "📍 Private Chat"
		if !e.IsPrivate() {
			location = "📍 " + e.ChatTitle
		}
		fmt.Fprintf(&b, "**%d.** %s\n", i+1, location)
		fmt.Fprintf(&b, "You: %s\n", Truncate(e.Incoming, MemoryViewWidth))
		fmt.Fprintf(&b, "Me: %s\n\n", Truncate(e.Outgoing, MemoryViewWidth))
	}
	return b.String()
}
