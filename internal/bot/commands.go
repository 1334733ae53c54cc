package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	cmdStart  = "start"
	cmdHelp   = "help"
	cmdMemory = "memory"
	cmdClear  = "clear"
	cmdReport = "report"
)

var knownCommands = map[string]bool{
	cmdStart:  true,
	cmdHelp:   true,
	cmdMemory: true,
	cmdClear:  true,
	cmdReport: true,
}

// parseCommand extracts a known slash command. "/memory@other_bot" is not for
// us and is ignored; unknown commands are ignored too.
func parseCommand(text, botHandle string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	head := strings.Fields(text)[0][1:]
	name, target, addressed := strings.Cut(head, "@")
	if addressed && !strings.EqualFold(target, botHandle) {
		return "", false
	}
	name = strings.ToLower(name)
	if !knownCommands[name] {
		return "", false
	}
	return name, true
}

func (b *Bot) handleCommand(ctx context.Context, logger *slog.Logger, msg Message, cmd string) {
	b.bindOwner(logger, msg.From)
	name := msg.From.Name()

	reply := Reply{ChatID: msg.Chat.ID, ReplyTo: msg.MessageID}
	switch cmd {
	case cmdStart:
		reply.Text = b.startText(msg)
	case cmdHelp:
		reply.Text = b.helpText()
	case cmdMemory:
		reply.Text = b.store.RenderUserMemory(msg.From.ID, name)
		if b.store.UserCount(msg.From.ID) > 0 {
			reply.ParseMode = ParseModeMarkdown
		}
	case cmdClear:
		b.store.ClearUser(msg.From.ID)
		reply.Text = fmt.Sprintf("Okayy %s! ✨ I've cleared our conversation history. "+
			"We can start fresh now! What would you like to chat about? 😊", name)
	case cmdReport:
		if !b.owner.IsOwner(msg.From.ID) {
			logger.Warn("report_denied", "handle", msg.From.Handle)
			reply.Text = fmt.Sprintf("Sorry %s, only my owner can see the activity report 🙈", name)
			break
		}
		reply.Text = b.Report()
	}

	logger.Info("command_handled", "command", cmd)
	if err := b.sender.Send(ctx, reply); err != nil {
		b.metrics.ObserveSendError()
		logger.Warn("reply_send_failed", "command", cmd, "error", err)
	}
}

func (b *Bot) startText(msg Message) string {
	handle := b.opts.BotHandle
	if handle == "" {
		handle = strings.ToLower(b.opts.BotName)
	}
	where := "private chat"
	if !msg.Chat.Kind.IsPrivate() {
		where = fmt.Sprintf("group (%s)", msg.Chat.Location())
	}
	remembered := ""
	if n := b.store.UserCount(msg.From.ID); n > 0 {
		remembered = fmt.Sprintf("\n\n🧠 I remember our last %d conversations across all chats! 😊", n)
	}

	var s strings.Builder
	fmt.Fprintf(&s, "Hi %s! I'm %s 🌸\n", msg.From.Name(), b.opts.BotName)
	s.WriteString("Your cute AI assistant!\n\n")
	s.WriteString("💕 **Private chats**: Just message me!\n")
	fmt.Fprintf(&s, "💕 **Groups**: Tag me @%s or reply\n", handle)
	fmt.Fprintf(&s, "🧠 **Memory**: I remember our last %d chats in ALL locations!\n", b.store.UserCap())
	fmt.Fprintf(&s, "📍 **Current location**: %s%s\n\n", where, remembered)
	s.WriteString("What's up? 😊")
	return s.String()
}

func (b *Bot) helpText() string {
	return strings.Join([]string{
		"Here's what I can do 🌸",
		"/start - say hi and see where we are",
		"/memory - what I remember about our chats",
		"/clear - forget our conversation history",
		"/report - activity report (owner only)",
		"/help - this message",
	}, "\n")
}
