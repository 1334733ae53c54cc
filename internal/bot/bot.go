// Package bot is the response orchestrator: it decides whether to answer a
// message, produces the reply and records the exchange.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/aanyaa/internal/brain"
	"github.com/ent0n29/aanyaa/internal/feed"
	"github.com/ent0n29/aanyaa/internal/identity"
	"github.com/ent0n29/aanyaa/internal/memory"
	"github.com/ent0n29/aanyaa/internal/observability"
	"github.com/ent0n29/aanyaa/internal/persona"
	"github.com/ent0n29/aanyaa/internal/policy"
	"github.com/ent0n29/aanyaa/internal/protocol"
	"github.com/ent0n29/aanyaa/internal/reliability"
	"github.com/ent0n29/aanyaa/internal/rules"
)

// NoReplyPlaceholder is the outgoing text stored for group messages the bot
// did not answer when group placeholders are enabled.
const NoReplyPlaceholder = "[no reply]"

const (
	thinkingFallback = "I'm having trouble thinking right now 😅 Try again in a moment!"
	emptyFallback    = "Sorry %s! 😅 I didn't get that. Try again?"
	panicFallback    = "Oops %s! 😅 Something went wrong. Try again?"
)

const previewWidth = memory.ReportWidth

// Deps are the collaborators of a Bot. Metrics and Feed may be nil.
type Deps struct {
	Store     *memory.Store
	Rules     *rules.Engine
	Owner     *identity.OwnerBinding
	Ledger    *identity.Ledger
	Generator brain.Generator
	Sender    Sender
	Selector  *persona.Selector
	Metrics   *observability.Metrics
	Feed      *feed.Hub
	Logger    *slog.Logger
}

type Options struct {
	BotName string
	// BotHandle is the bot's username without "@". Group mentions are
	// detected against "@"+BotHandle.
	BotHandle         string
	GenerationTimeout time.Duration
	GroupPlaceholder  bool
	Now               func() time.Time
}

type Bot struct {
	store    *memory.Store
	rules    *rules.Engine
	owner    *identity.OwnerBinding
	ledger   *identity.Ledger
	gen      brain.Generator
	sender   Sender
	selector *persona.Selector
	metrics  *observability.Metrics
	feed     *feed.Hub
	logger   *slog.Logger
	opts     Options
	timeout  time.Duration
	locks    *keyedMutex
}

// turnState tracks how far a turn got, so a recovered panic does not record
// or send twice.
type turnState struct {
	text     string
	recorded bool
	sent     bool
}

func New(deps Deps, opts Options) (*Bot, error) {
	if deps.Store == nil || deps.Generator == nil || deps.Sender == nil {
		return nil, errors.New("bot: store, generator and sender are required")
	}
	if deps.Rules == nil {
		deps.Rules = rules.NewEngine(rules.Default())
	}
	if deps.Owner == nil {
		deps.Owner = identity.NewOwnerBinding("")
	}
	if deps.Ledger == nil {
		deps.Ledger = identity.NewLedger()
	}
	if strings.TrimSpace(opts.BotName) == "" {
		opts.BotName = "Aanyaa"
	}
	if deps.Selector == nil {
		deps.Selector = persona.NewSelector(persona.DefaultVoices(opts.BotName), 0, nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.BotHandle = strings.TrimPrefix(strings.TrimSpace(opts.BotHandle), "@")
	timeout := opts.GenerationTimeout
	if timeout <= 0 {
		timeout = brain.DefaultTimeout
	}

	return &Bot{
		store:    deps.Store,
		rules:    deps.Rules,
		owner:    deps.Owner,
		ledger:   deps.Ledger,
		gen:      deps.Generator,
		sender:   deps.Sender,
		selector: deps.Selector,
		metrics:  deps.Metrics,
		feed:     deps.Feed,
		logger:   deps.Logger,
		opts:     opts,
		timeout:  timeout,
		locks:    newKeyedMutex(),
	}, nil
}

func (b *Bot) mentionToken() string {
	if b.opts.BotHandle == "" {
		return ""
	}
	return "@" + b.opts.BotHandle
}

// HandleIncoming processes one inbound message end to end. It never returns
// an error: generation and delivery failures are handled here.
func (b *Bot) HandleIncoming(ctx context.Context, msg Message) {
	logger := b.logger.With("chat_id", msg.Chat.ID, "chat_kind", string(msg.Chat.Kind), "user_id", msg.From.ID)
	if msg.At.IsZero() {
		msg.At = b.opts.Now()
	}
	st := &turnState{}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("turn_panic", "panic", fmt.Sprint(r))
			b.recoverTurn(ctx, logger, msg, st)
		}
	}()
	b.handle(ctx, logger, msg, st)
}

// recoverTurn answers a turn that panicked before it finished. Only the steps
// the turn did not reach are performed.
func (b *Bot) recoverTurn(ctx context.Context, logger *slog.Logger, msg Message, st *turnState) {
	if st.text == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("turn_recovery_panic", "panic", fmt.Sprint(r))
		}
	}()
	reply := fmt.Sprintf(panicFallback, msg.From.Name())
	if !st.recorded {
		st.recorded = true
		b.record(msg, st.text, reply)
		b.metrics.ObserveReply(string(protocol.SourceFallback))
	}
	if !st.sent {
		st.sent = true
		if err := b.sender.Send(ctx, Reply{ChatID: msg.Chat.ID, ReplyTo: msg.MessageID, Text: reply}); err != nil {
			b.metrics.ObserveSendError()
			logger.Warn("reply_send_failed", "error", err)
		}
	}
}

func (b *Bot) handle(ctx context.Context, logger *slog.Logger, msg Message, st *turnState) {
	start := time.Now()
	b.ledger.Touch(msg.From, msg.At)
	b.metrics.SetTrackedUsers(b.ledger.Len())

	if cmd, ok := parseCommand(msg.Text, b.opts.BotHandle); ok {
		b.metrics.ObserveMessage(string(msg.Chat.Kind), "command")
		b.handleCommand(ctx, logger, msg, cmd)
		return
	}

	decision := policy.Decide(policy.DispatchInput{
		Kind:         msg.Chat.Kind,
		Text:         msg.Text,
		MentionToken: b.mentionToken(),
		ReplyToBot:   msg.ReplyToBot,
	})
	b.metrics.ObserveMessage(string(msg.Chat.Kind), decision.Reason)
	if !decision.Respond {
		logger.Debug("message_ignored", "reason", decision.Reason)
		if b.opts.GroupPlaceholder && msg.Chat.Kind.IsGroupLike() {
			b.recordPlaceholder(msg)
		}
		return
	}

	unlock := b.locks.Lock(msg.From.ID)
	defer unlock()

	ownerTurn := b.bindOwner(logger, msg.From)
	text := decision.Text
	st.text = text
	reply, source := b.compose(ctx, logger, msg, text, ownerTurn)

	st.recorded = true
	b.record(msg, text, reply)
	b.metrics.ObserveReply(string(source))
	logger.Info("reply_ready",
		"reason", decision.Reason,
		"source", string(source),
		"owner_turn", ownerTurn,
		"incoming", policy.Preview(text, previewWidth),
	)

	st.sent = true
	if err := b.sender.Send(ctx, Reply{ChatID: msg.Chat.ID, ReplyTo: msg.MessageID, Text: reply}); err != nil {
		b.metrics.ObserveSendError()
		logger.Warn("reply_send_failed", "error", err)
	}

	b.publish(msg, text, reply, source)
	b.metrics.ObserveTurn(time.Since(start))
}

func (b *Bot) bindOwner(logger *slog.Logger, u identity.User) bool {
	switch res := b.owner.BindIfMatching(u.Handle, u.ID); res {
	case identity.BindBound:
		logger.Info("owner_bound", "handle", u.Handle)
	case identity.BindConflict:
		owner, _ := b.owner.Owner()
		logger.Warn("owner_bind_conflict", "handle", u.Handle, "bound_user_id", owner)
	}
	return b.owner.IsOwner(u.ID)
}

// compose produces the reply text: a matching rule first, otherwise a
// generated reply, otherwise a fixed fallback.
func (b *Bot) compose(ctx context.Context, logger *slog.Logger, msg Message, text string, ownerTurn bool) (string, protocol.Source) {
	name := msg.From.Name()

	match, ok, err := b.rules.Match(text, rules.Data{Name: name, Handle: msg.From.Handle, Owner: ownerTurn})
	if err != nil {
		logger.Warn("rule_render_failed", "error", err)
	} else if ok {
		logger.Debug("rule_matched", "rule", match.Rule)
		return match.Reply, protocol.SourceRule
	}

	prompt, err := b.prompt(msg, text)
	if err != nil {
		logger.Error("prompt_render_failed", "error", err)
		return thinkingFallback, protocol.SourceFallback
	}

	started := time.Now()
	out, err := b.generate(ctx, prompt)
	b.metrics.ObserveGeneration(time.Since(started), reliability.ClassifyError(err))
	if err != nil {
		logger.Warn("generation_failed", "error", err, "code", reliability.ClassifyError(err))
		return thinkingFallback, protocol.SourceFallback
	}
	if strings.TrimSpace(out) == "" {
		logger.Warn("generation_empty")
		return fmt.Sprintf(emptyFallback, name), protocol.SourceFallback
	}
	return out, protocol.SourceGenerated
}

func (b *Bot) prompt(msg Message, text string) (string, error) {
	name := msg.From.Name()
	data := persona.PromptData{
		Persona:     b.selector.Next(),
		UserContext: b.store.RenderUserContext(msg.From.ID, name),
		Location:    msg.Chat.Location(),
		Speaker:     name,
		Message:     text,
	}
	if msg.Chat.Kind.IsGroupLike() {
		data.GroupContext = b.store.RenderGroupContext(msg.Chat.ID, msg.Chat.Location())
	}
	return persona.Render(data)
}

type genResult struct {
	text string
	err  error
}

// generate runs the generator on its own goroutine bounded by the generation
// timeout. A generator that ignores its context is abandoned at the deadline.
func (b *Bot) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	ch := make(chan genResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- genResult{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := b.gen.Generate(ctx, prompt)
		ch <- genResult{text: text, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *Bot) record(msg Message, incoming, reply string) {
	name := msg.From.Name()
	label := memory.ContextPrivate
	title := ""
	if !msg.Chat.Kind.IsPrivate() {
		label = memory.ContextGroup
		title = msg.Chat.Location()
	}
	b.store.RecordUser(msg.From.ID, memory.UserEntry{
		Incoming:     incoming,
		Outgoing:     reply,
		DisplayName:  name,
		ContextLabel: label,
		ChatTitle:    title,
		MediaLabel:   msg.MediaLabel,
		At:           msg.At,
	})
	if msg.Chat.Kind.IsGroupLike() {
		b.store.RecordGroup(msg.Chat.ID, memory.GroupEntry{
			SpeakerName: name,
			Incoming:    incoming,
			Outgoing:    reply,
			ChatTitle:   title,
			MediaLabel:  msg.MediaLabel,
			At:          msg.At,
		})
	}
}

func (b *Bot) recordPlaceholder(msg Message) {
	b.store.RecordGroup(msg.Chat.ID, memory.GroupEntry{
		SpeakerName: msg.From.Name(),
		Incoming:    msg.Text,
		Outgoing:    NoReplyPlaceholder,
		ChatTitle:   msg.Chat.Location(),
		MediaLabel:  msg.MediaLabel,
		At:          msg.At,
	})
	b.metrics.ObserveReply(string(protocol.SourcePlaceholder))
	b.publish(msg, msg.Text, NoReplyPlaceholder, protocol.SourcePlaceholder)
}

func (b *Bot) publish(msg Message, incoming, reply string, source protocol.Source) {
	b.feed.Publish(protocol.ExchangeEvent{
		Type:            protocol.TypeExchange,
		EventID:         uuid.NewString(),
		At:              msg.At.UTC(),
		ChatKind:        string(msg.Chat.Kind),
		ChatID:          msg.Chat.ID,
		UserID:          msg.From.ID,
		SpeakerName:     msg.From.Name(),
		Source:          source,
		IncomingPreview: policy.Preview(incoming, previewWidth),
		OutgoingPreview: policy.Preview(reply, previewWidth),
	})
}
