package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/ent0n29/aanyaa/internal/protocol"
)

func NewFeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Tail the live activity feed of a running bot",
		Args:  cobra.NoArgs,
		RunE:  runFeed,
	}
	cmd.Flags().String("url", "http://127.0.0.1:5000", "Base URL of the running bot")
	cmd.Flags().Bool("json", false, "Print raw JSON events")
	return cmd
}

func runFeed(cmd *cobra.Command, _ []string) error {
	base, _ := cmd.Flags().GetString("url")
	asJSON, _ := cmd.Flags().GetBool("json")

	wsURL, err := feedURL(base)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", wsURL, err)
	}
	defer conn.Close()

	go func() {
		<-cmd.Context().Done()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if cmd.Context().Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if asJSON {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			continue
		}
		if line, ok := formatFeedEvent(data); ok {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}
}

func feedURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/feed/ws"
	return u.String(), nil
}

func formatFeedEvent(data []byte) (string, bool) {
	msg, err := protocol.ParseServerMessage(data)
	if err != nil {
		return "", false
	}
	switch ev := msg.(type) {
	case protocol.ExchangeEvent:
		return fmt.Sprintf("%s [%s] %s: %q -> %q (%s)",
			ev.At.Format("15:04:05"), ev.ChatKind, ev.SpeakerName, ev.IncomingPreview, ev.OutgoingPreview, ev.Source), true
	case protocol.SystemEvent:
		return "* " + ev.Code, true
	default:
		b, _ := json.Marshal(ev)
		return string(b), true
	}
}
