package main

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/jdelaire/ares/adapters/gustats"
	"github.com/jdelaire/ares/adapters/telegram_notifier"
	"github.com/jdelaire/ares/adapters/telegram_receiver"
	"github.com/jdelaire/ares/core"
	"github.com/jdelaire/ares/core/metrics"
	"github.com/jdelaire/ares/core/ops"
	"github.com/jdelaire/ares/internal/config"
	"github.com/jdelaire/ares/internal/logging"
)

// app is the wired bot. It is built once per process; nothing in it is
// mutated while handling updates.
type app struct {
	cfg        *config.Config
	logger     zerolog.Logger
	bot        *tgbotapi.BotAPI
	notifier   *telegram_notifier.Notifier
	registry   *prometheus.Registry
	dispatcher *core.Dispatcher
	webhook    *core.Webhook
}

// loadConfig reads and validates the configuration and builds the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid config: %w", err)
	}
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	return cfg, logger, nil
}

func newApp() (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	token, err := cfg.ResolveToken()
	if err != nil {
		logger.Error().Err(err).Msg("no bot token")
		return nil, err
	}

	bot, notifier, err := telegram_notifier.Dial(token, cfg.TelegramEndpoint, cfg.TelegramTimeout)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram bot ready")

	m := metrics.New()
	promReg := prometheus.NewRegistry()
	if err := m.Register(promReg); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	promReg.MustRegister(collectors.NewGoCollector())

	stats := gustats.New(cfg.StatsURL, cfg.StatsTimeout)
	registry := ops.Default(stats, telegram_notifier.LibraryVersion())

	d := core.NewDispatcher(registry, notifier, logger, core.DispatcherOptions{
		ReplyErrors: cfg.ReplyErrors,
		Metrics:     m,
	})
	wh := core.NewWebhook(telegram_receiver.Decoder{}, d, notifier, logger, m)

	return &app{
		cfg:        cfg,
		logger:     logger,
		bot:        bot,
		notifier:   notifier,
		registry:   promReg,
		dispatcher: d,
		webhook:    wh,
	}, nil
}
