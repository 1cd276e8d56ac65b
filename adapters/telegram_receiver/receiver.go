package telegram_receiver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/jdelaire/ares/core"
)

const (
	longPollTimeout = 30
	errorBackoff    = 5 * time.Second
)

// Decoder reads Telegram webhook bodies.
type Decoder struct{}

// Decode implements core.Decoder. Only plain text messages are dispatched;
// edits, channel posts and callbacks are reported with ok=false.
func (Decoder) Decode(body []byte) (core.InboundMessage, bool, error) {
	var u tgbotapi.Update
	if err := json.Unmarshal(body, &u); err != nil {
		return core.InboundMessage{}, false, fmt.Errorf("decode update: %w", err)
	}
	msg, ok := toInbound(u)
	return msg, ok, nil
}

func toInbound(u tgbotapi.Update) (core.InboundMessage, bool) {
	m := u.Message
	if m == nil || m.Text == "" || m.Chat == nil {
		return core.InboundMessage{}, false
	}

	var userID int64
	if m.From != nil {
		userID = m.From.ID
	}

	return core.InboundMessage{
		UpdateID:  int64(u.UpdateID),
		ChatID:    m.Chat.ID,
		UserID:    userID,
		Text:      m.Text,
		Timestamp: time.Unix(int64(m.Date), 0),
	}, true
}

// UpdateSource is the subset of *tgbotapi.BotAPI used for long polling.
type UpdateSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// Receiver long-polls Telegram for inbound messages. It is the local
// alternative to a registered webhook.
type Receiver struct {
	source  UpdateSource
	handler core.MessageHandler
	logger  zerolog.Logger
	backoff time.Duration
	offset  int
}

// New creates a Telegram receiver.
func New(source UpdateSource, handler core.MessageHandler, logger zerolog.Logger) *Receiver {
	return &Receiver{
		source:  source,
		handler: handler,
		logger:  logger,
		backoff: errorBackoff,
	}
}

// WithBackoff overrides the delay after a failed poll (for testing).
func (r *Receiver) WithBackoff(d time.Duration) *Receiver {
	r.backoff = d
	return r
}

// Start begins the long-poll loop. Blocks until ctx is cancelled.
func (r *Receiver) Start(ctx context.Context) error {
	r.logger.Info().Msg("telegram receiver started")
	for {
		if err := ctx.Err(); err != nil {
			r.logger.Info().Msg("telegram receiver stopped")
			return nil
		}

		cfg := tgbotapi.NewUpdate(r.offset)
		cfg.Timeout = longPollTimeout
		updates, err := r.source.GetUpdates(cfg)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info().Msg("telegram receiver stopped")
				return nil
			}
			r.logger.Error().Err(err).Msg("poll error")
			select {
			case <-time.After(r.backoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, u := range updates {
			r.offset = u.UpdateID + 1
			if msg, ok := toInbound(u); ok {
				r.handler(msg)
			}
		}
	}
}
