package telegram

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/ent0n29/aanyaa/internal/bot"
)

// maxMessageRunes stays under the Bot API limit of 4096 characters.
const maxMessageRunes = 4000

// Sender delivers bot replies through the Bot API.
type Sender struct {
	api    *API
	logger *slog.Logger
}

func NewSender(api *API, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{api: api, logger: logger}
}

var _ bot.Sender = (*Sender)(nil)

// Send splits long replies into chunks. Only the first chunk quotes the
// original message. A reply rejected for its markup is resent as plain text.
func (s *Sender) Send(ctx context.Context, r bot.Reply) error {
	for i, chunk := range splitRunes(r.Text, maxMessageRunes) {
		req := SendMessageRequest{
			ChatID:                r.ChatID,
			Text:                  chunk,
			ParseMode:             r.ParseMode,
			DisableWebPagePreview: true,
		}
		if i == 0 {
			req.ReplyToMessageID = r.ReplyTo
		}
		err := s.api.SendMessage(ctx, req)
		if err != nil && req.ParseMode != "" && IsMarkdownParseError(err) {
			s.logger.Debug("telegram_markdown_fallback", "chat_id", r.ChatID, "error", err)
			req.ParseMode = ""
			err = s.api.SendMessage(ctx, req)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func splitRunes(text string, n int) []string {
	if utf8.RuneCountInString(text) <= n {
		return []string{text}
	}
	var out []string
	runes := []rune(text)
	for len(runes) > 0 {
		end := n
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[:end]))
		runes = runes[end:]
	}
	return out
}
