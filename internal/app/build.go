// Package app wires configuration into a running bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ent0n29/aanyaa/internal/bot"
	"github.com/ent0n29/aanyaa/internal/brain"
	"github.com/ent0n29/aanyaa/internal/config"
	"github.com/ent0n29/aanyaa/internal/feed"
	"github.com/ent0n29/aanyaa/internal/httpapi"
	"github.com/ent0n29/aanyaa/internal/identity"
	"github.com/ent0n29/aanyaa/internal/memory"
	"github.com/ent0n29/aanyaa/internal/observability"
	"github.com/ent0n29/aanyaa/internal/persona"
	"github.com/ent0n29/aanyaa/internal/rules"
	"github.com/ent0n29/aanyaa/internal/telegram"
)

// pollSlack is added to the long-poll timeout for the HTTP client deadline.
const pollSlack = 15 * time.Second

type BuildResult struct {
	Config  config.Config
	Logger  *slog.Logger
	API     *httpapi.Server
	Bot     *bot.Bot
	Poller  *telegram.Poller
	Rules   *rules.Engine
	Metrics *observability.Metrics
	Feed    *feed.Hub
	// Me is the bot account returned by getMe. Nil until Connect succeeds.
	Me *telegram.User

	botAPI    *telegram.API
	store     *memory.Store
	owner     *identity.OwnerBinding
	ledger    *identity.Ledger
	generator brain.Generator
}

// Build prepares every component and resolves the bot identity. It talks to
// the Bot API once (getMe) and does not start polling.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*BuildResult, error) {
	r, err := Prepare(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := r.Connect(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Prepare builds everything that does not need Telegram, including the HTTP
// server, so the hosting port can be bound before getMe returns.
func Prepare(ctx context.Context, cfg config.Config, logger *slog.Logger) (*BuildResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	engine, err := loadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	gen, err := brain.NewGenerator(ctx, brain.Config{
		Mode:    cfg.BrainMode,
		APIKey:  cfg.BrainAPIKey,
		BaseURL: cfg.BrainBaseURL,
		Model:   cfg.BrainModel,
		HTTPURL: cfg.BrainHTTPURL,
	})
	if err != nil {
		return nil, fmt.Errorf("brain init failed: %w", err)
	}

	hub := feed.NewHub(logger.With("component", "feed"), metrics)
	owner := identity.NewOwnerBinding(cfg.OwnerHandle)
	ledger := identity.NewLedger()

	server := httpapi.New(cfg, httpapi.Deps{
		Metrics: metrics,
		Feed:    hub,
		Owner:   owner,
		Ledger:  ledger,
		Rules:   engine,
	})

	return &BuildResult{
		Config:    cfg,
		Logger:    logger,
		API:       server,
		Rules:     engine,
		Metrics:   metrics,
		Feed:      hub,
		botAPI:    telegram.NewAPI(&http.Client{Timeout: cfg.TelegramPollTimeout + pollSlack}, cfg.TelegramAPIBaseURL, cfg.TelegramToken),
		store:     memory.NewStore(memory.Options{UserCap: cfg.MemoryUserCap, GroupCap: cfg.MemoryGroupCap}),
		owner:     owner,
		ledger:    ledger,
		generator: gen,
	}, nil
}

// Connect resolves the bot identity with getMe and builds the bot and poller.
func (r *BuildResult) Connect(ctx context.Context) error {
	me, err := r.botAPI.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram getMe failed: %w", err)
	}
	r.Logger.Info("telegram_identity", "bot_id", me.ID, "username", me.Username)

	cfg := r.Config
	b, err := bot.New(bot.Deps{
		Store:     r.store,
		Rules:     r.Rules,
		Owner:     r.owner,
		Ledger:    r.ledger,
		Generator: r.generator,
		Sender:    telegram.NewSender(r.botAPI, r.Logger.With("component", "telegram")),
		Selector:  persona.NewSelector(persona.DefaultVoices(cfg.BotName), cfg.VoiceSwitchProbability, persona.NewRandChooser()),
		Metrics:   r.Metrics,
		Feed:      r.Feed,
		Logger:    r.Logger.With("component", "bot"),
	}, bot.Options{
		BotName:           cfg.BotName,
		BotHandle:         me.Username,
		GenerationTimeout: cfg.GenerationTimeout,
		GroupPlaceholder:  cfg.GroupPlaceholder,
	})
	if err != nil {
		return err
	}

	r.Me = me
	r.Bot = b
	r.Poller = telegram.NewPoller(r.botAPI, b, telegram.PollerOptions{
		BotID:       me.ID,
		PollTimeout: cfg.TelegramPollTimeout,
		MaxInFlight: cfg.TelegramMaxInFlight,
		Logger:      r.Logger.With("component", "telegram"),
	})
	return nil
}

// Run starts the rule watcher (when configured) and polls until ctx is done.
// Connect must have succeeded.
func (r *BuildResult) Run(ctx context.Context) error {
	if r.Poller == nil {
		return errors.New("app: Run called before Connect")
	}
	if r.Config.RulesFile != "" && r.Config.RulesWatch {
		go func() {
			err := rules.Watch(ctx, r.Config.RulesFile, r.Rules, r.Logger.With("component", "rules"), func(_ *rules.Table, err error) {
				r.Metrics.ObserveRulesReload(err)
			})
			if err != nil {
				r.Logger.Error("rules_watch_failed", "error", err)
			}
		}()
	}

	r.API.SetReady(true)
	defer r.API.SetReady(false)

	err := r.Poller.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("telegram polling stopped: %w", err)
	}
	return nil
}

func loadRules(path string) (*rules.Engine, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return rules.NewEngine(rules.Default()), nil
	}
	t, err := rules.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}
	return rules.NewEngine(t), nil
}
