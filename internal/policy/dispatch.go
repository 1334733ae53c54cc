package policy

import (
	"strings"

	"github.com/ent0n29/aanyaa/internal/identity"
)

// Dispatch reasons.
const (
	ReasonPrivate = "private"
	ReasonMention = "mention"
	ReasonReply   = "reply"
	ReasonIgnored = "ignored"
)

type DispatchInput struct {
	Kind identity.ChatKind
	Text string
	// MentionToken is the bot's own mention, e.g. "@aanyaa_bot".
	MentionToken string
	// ReplyToBot is true when the message replies to a message the bot sent.
	ReplyToBot bool
}

type DispatchDecision struct {
	Respond bool
	Text    string
	Reason  string
}

// Decide reports whether the bot should answer a message. Private chats are
// always answered. Group chats are answered only when the bot is mentioned
// or the message replies to the bot; a mention is stripped from the text.
// Any other chat kind is ignored.
func Decide(in DispatchInput) DispatchDecision {
	switch {
	case in.Kind.IsPrivate():
		return DispatchDecision{Respond: true, Text: in.Text, Reason: ReasonPrivate}
	case in.Kind.IsGroupLike():
	default:
		return DispatchDecision{Text: in.Text, Reason: ReasonIgnored}
	}

	token := strings.TrimSpace(in.MentionToken)
	if token != "" && strings.Contains(in.Text, token) {
		return DispatchDecision{
			Respond: true,
			Text:    StripMention(in.Text, token),
			Reason:  ReasonMention,
		}
	}
	if in.ReplyToBot {
		return DispatchDecision{Respond: true, Text: in.Text, Reason: ReasonReply}
	}
	return DispatchDecision{Text: in.Text, Reason: ReasonIgnored}
}

// StripMention removes the first occurrence of token and trims the result.
func StripMention(text, token string) string {
	if token == "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(strings.Replace(text, token, "", 1))
}
