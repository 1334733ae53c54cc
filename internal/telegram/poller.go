package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ent0n29/aanyaa/internal/bot"
	"github.com/ent0n29/aanyaa/internal/reliability"
)

// Handler consumes converted messages. *bot.Bot satisfies it.
type Handler interface {
	HandleIncoming(ctx context.Context, msg bot.Message)
}

type HandlerFunc func(ctx context.Context, msg bot.Message)

func (f HandlerFunc) HandleIncoming(ctx context.Context, msg bot.Message) { f(ctx, msg) }

type PollerOptions struct {
	BotID       int64
	PollTimeout time.Duration
	// MaxInFlight bounds concurrently handled messages.
	MaxInFlight int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Logger      *slog.Logger
}

// Poller long-polls getUpdates and hands each message to the handler on its
// own goroutine.
type Poller struct {
	api     *API
	handler Handler
	opts    PollerOptions
	logger  *slog.Logger
}

func NewPoller(api *API, handler Handler, opts PollerOptions) *Poller {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 16
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = 500 * time.Millisecond
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{api: api, handler: handler, opts: opts, logger: logger}
}

// Run polls until ctx is canceled or the API rejects the token. In-flight
// turns are allowed to finish before Run returns.
func (p *Poller) Run(ctx context.Context) error {
	sem := make(chan struct{}, p.opts.MaxInFlight)
	var wg sync.WaitGroup
	defer wg.Wait()

	// Turns outlive shutdown so a started reply is still delivered.
	turnCtx := context.WithoutCancel(ctx)

	var offset int64
	failures := 0
	p.logger.Info("telegram_poll_start", "bot_id", p.opts.BotID, "max_in_flight", p.opts.MaxInFlight)
	for {
		updates, next, err := p.api.GetUpdates(ctx, offset, p.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("telegram_stop")
				return nil
			}
			var reqErr *RequestError
			if errors.As(err, &reqErr) && reqErr.Fatal() {
				p.logger.Error("telegram_poll_fatal", "error", err)
				return err
			}
			if IsPollTimeoutError(err) {
				p.logger.Debug("telegram_get_updates_timeout", "error", err)
				continue
			}
			wait := reliability.ExponentialBackoff(failures, p.opts.BackoffBase, p.opts.BackoffMax)
			failures++
			p.logger.Warn("telegram_get_updates_error", "error", err, "retry_in", wait, "failures", failures)
			select {
			case <-ctx.Done():
				p.logger.Info("telegram_stop")
				return nil
			case <-time.After(wait):
			}
			continue
		}
		failures = 0
		offset = next

		for _, u := range updates {
			msg, ok := toBotMessage(messageOf(u), p.opts.BotID)
			if !ok {
				continue
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				p.logger.Info("telegram_stop")
				return nil
			}
			wg.Add(1)
			go func(msg bot.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				p.handler.HandleIncoming(turnCtx, msg)
			}(msg)
		}
	}
}
