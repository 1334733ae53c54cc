package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MessageType identifies live feed payload variants.
type MessageType string

const (
	TypeExchange    MessageType = "exchange"
	TypeSystemEvent MessageType = "system_event"
)

// Source says how a reply was produced.
type Source string

const (
	SourceRule        Source = "rule"
	SourceGenerated   Source = "generated"
	SourceFallback    Source = "fallback"
	SourcePlaceholder Source = "placeholder"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ExchangeEvent is published once per recorded exchange. Previews are
// truncated and redacted before they leave the process.
type ExchangeEvent struct {
	Type            MessageType `json:"type"`
	EventID         string      `json:"event_id"`
	At              time.Time   `json:"at"`
	ChatKind        string      `json:"chat_kind"`
	ChatID          int64       `json:"chat_id"`
	UserID          int64       `json:"user_id"`
	SpeakerName     string      `json:"speaker_name"`
	Source          Source      `json:"source"`
	IncomingPreview string      `json:"incoming_preview"`
	OutgoingPreview string      `json:"outgoing_preview"`
}

type SystemEvent struct {
	Type   MessageType `json:"type"`
	Code   string      `json:"code"`
	Detail string      `json:"detail,omitempty"`
}

// ParseServerMessage decodes a feed payload into its concrete type.
func ParseServerMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeExchange:
		var msg ExchangeEvent
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.EventID == "" || msg.Source == "" {
			return nil, errors.New("invalid exchange event")
		}
		return msg, nil
	case TypeSystemEvent:
		var msg SystemEvent
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Code == "" {
			return nil, errors.New("invalid system_event")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
