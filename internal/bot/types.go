package bot

import (
	"context"
	"time"

	"github.com/ent0n29/aanyaa/internal/identity"
)

// Message is one inbound chat message as seen by the orchestrator.
type Message struct {
	MessageID int64
	Chat      identity.Chat
	From      identity.User
	Text      string
	// MediaLabel is set for media messages, e.g. "photo" or "document".
	MediaLabel string
	// ReplyToBot is true when the message replies to one of the bot's messages.
	ReplyToBot bool
	At         time.Time
}

// Parse modes understood by the Sender.
const (
	ParseModeNone     = ""
	ParseModeMarkdown = "Markdown"
)

// Reply is one outbound message.
type Reply struct {
	ChatID    int64
	ReplyTo   int64
	Text      string
	ParseMode string
}

// Sender delivers replies to the originating chat.
type Sender interface {
	Send(ctx context.Context, r Reply) error
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(ctx context.Context, r Reply) error

func (f SenderFunc) Send(ctx context.Context, r Reply) error { return f(ctx, r) }
