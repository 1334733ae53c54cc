package telegram

import (
	"strings"
	"time"

	"github.com/ent0n29/aanyaa/internal/bot"
	"github.com/ent0n29/aanyaa/internal/identity"
)

// Media labels recorded with exchanges.
const (
	MediaPhoto    = "photo"
	MediaDocument = "document"
)

// messageOf picks the message carried by an update.
func messageOf(u Update) *Message {
	if u.Message != nil {
		return u.Message
	}
	return u.EditedMessage
}

// toBotMessage converts a Bot API message. Messages from bots, without a
// sender, or without any text or caption are skipped.
func toBotMessage(m *Message, botID int64) (bot.Message, bool) {
	if m == nil || m.Chat == nil || m.From == nil || m.From.IsBot {
		return bot.Message{}, false
	}
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	if strings.TrimSpace(text) == "" {
		return bot.Message{}, false
	}

	media := ""
	switch {
	case len(m.Photo) > 0:
		media = MediaPhoto
	case m.Document != nil:
		media = MediaDocument
	}

	at := time.Now()
	if m.Date > 0 {
		at = time.Unix(m.Date, 0)
	}

	return bot.Message{
		MessageID: m.MessageID,
		Chat: identity.Chat{
			ID:    m.Chat.ID,
			Kind:  identity.ParseChatKind(m.Chat.Type),
			Title: m.Chat.Title,
		},
		From: identity.User{
			ID:          m.From.ID,
			DisplayName: strings.TrimSpace(m.From.FirstName),
			Handle:      strings.TrimSpace(m.From.Username),
		},
		Text:       text,
		MediaLabel: media,
		ReplyToBot: m.ReplyTo != nil && m.ReplyTo.From != nil && m.ReplyTo.From.ID == botID,
		At:         at,
	}, true
}
