package telegram_notifier

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jdelaire/ares/core"
)

const modulePath = "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// BotAPI abstracts the Telegram bot methods used here.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Notifier sends replies and registers webhooks via the Telegram Bot API.
type Notifier struct {
	bot BotAPI
}

// New wraps an existing bot.
func New(bot BotAPI) *Notifier {
	return &Notifier{bot: bot}
}

// Dial authenticates botToken against endpoint (a tgbotapi endpoint format
// such as tgbotapi.APIEndpoint) and returns the bot and a Notifier using it.
// An invalid token fails here, before any update is handled.
func Dial(botToken, endpoint string, timeout time.Duration) (*tgbotapi.BotAPI, *Notifier, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, nil, fmt.Errorf("telegram login: %w", err)
	}
	return bot, New(bot), nil
}

// Name identifies the notifier in logs.
func (n *Notifier) Name() string { return "telegram" }

// Send delivers notif.Text as a plain message to notif.ChatID.
func (n *Notifier) Send(ctx context.Context, notif core.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.bot.Send(tgbotapi.NewMessage(notif.ChatID, notif.Text)); err != nil {
		return fmt.Errorf("telegram send to %d: %w", notif.ChatID, err)
	}
	return nil
}

// SetWebhook implements core.Registrar. A refusal by the API is reported as
// false with a nil error; transport failures return the error.
func (n *Notifier) SetWebhook(ctx context.Context, url string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return false, fmt.Errorf("webhook url: %w", err)
	}
	resp, err := n.bot.Request(wh)
	switch {
	case resp != nil && !resp.Ok && resp.ErrorCode != 0:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("set webhook: %w", err)
	case resp == nil:
		return false, nil
	}
	return resp.Ok, nil
}

// DeleteWebhook removes the registered webhook so updates can be long-polled.
func (n *Notifier) DeleteWebhook(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// LibraryVersion returns the version of the Telegram bot library compiled
// into the binary, or "unknown" when build information is unavailable.
func LibraryVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range bi.Deps {
		if dep.Path != modulePath {
			continue
		}
		if dep.Replace != nil && dep.Replace.Version != "" {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return "unknown"
}
