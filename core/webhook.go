package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jdelaire/ares/core/metrics"
)

// Event is the transport-level request handed over by the HTTP or
// serverless layer.
type Event struct {
	Method string
	Body   string
	Host   string
	Stage  string
}

// Response is the transport-level result of a webhook operation.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

const (
	okMessage    = "ok"
	errorMessage = "Oops, something went wrong!"
)

// OKResponse acknowledges receipt.
func OKResponse() Response {
	return Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       jsonString(okMessage),
	}
}

// ErrorResponse reports a failed webhook operation.
func ErrorResponse() Response {
	return Response{
		StatusCode: http.StatusBadRequest,
		Body:       jsonString(errorMessage),
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// WebhookURL is the address registered with the messaging provider.
func WebhookURL(host, stage string) string {
	return fmt.Sprintf("https://%s/%s/", host, stage)
}

// Webhook translates transport events into dispatches and registration
// calls. Message receipt, not command success, decides the status code.
type Webhook struct {
	decoder    Decoder
	dispatcher *Dispatcher
	registrar  Registrar
	logger     zerolog.Logger
	metrics    metrics.Metrics
}

// NewWebhook creates a Webhook. registrar may be nil when only message
// handling is served.
func NewWebhook(decoder Decoder, dispatcher *Dispatcher, registrar Registrar, logger zerolog.Logger, m metrics.Metrics) *Webhook {
	return &Webhook{
		decoder:    decoder,
		dispatcher: dispatcher,
		registrar:  registrar,
		logger:     logger,
		metrics:    m,
	}
}

// HandleEvent processes one inbound webhook delivery. Only POSTs with a
// non-empty body reach the dispatcher.
func (w *Webhook) HandleEvent(ctx context.Context, ev Event) Response {
	log := w.logger.With().Str("invocation", uuid.NewString()).Logger()
	log.Info().Str("method", ev.Method).Int("body_bytes", len(ev.Body)).Msg("event")

	if ev.Method != http.MethodPost || ev.Body == "" {
		log.Warn().Str("method", ev.Method).Msg("rejected: expected POST with a body")
		return w.respond("webhook", ErrorResponse())
	}

	msg, ok, err := w.decoder.Decode([]byte(ev.Body))
	if err != nil {
		log.Error().Err(err).Msg("decode update")
		return w.respond("webhook", ErrorResponse())
	}
	if !ok {
		log.Debug().Msg("update carries no text message")
		return w.respond("webhook", OKResponse())
	}

	log.Info().Int64("update_id", msg.UpdateID).Int64("chat_id", msg.ChatID).Msg("message received")
	out := w.dispatcher.Dispatch(log.WithContext(ctx), msg)
	if !out.OK() {
		log.Error().Err(out.Err).Str("command", out.Command).Str("kind", out.Kind.String()).Msg("command failed")
	} else if out.Replied {
		log.Info().Str("command", out.Command).Msg("message sent")
	}
	return w.respond("webhook", OKResponse())
}

// Register points the provider at WebhookURL(ev.Host, ev.Stage).
func (w *Webhook) Register(ctx context.Context, ev Event) Response {
	url := WebhookURL(ev.Host, ev.Stage)
	log := w.logger.With().Str("url", url).Logger()

	if w.registrar == nil {
		log.Error().Msg("no registrar configured")
		return w.respond("set_webhook", ErrorResponse())
	}
	ok, err := w.registrar.SetWebhook(ctx, url)
	if err != nil {
		log.Error().Err(err).Msg("set webhook")
		return w.respond("set_webhook", ErrorResponse())
	}
	if !ok {
		log.Error().Msg("set webhook refused")
		return w.respond("set_webhook", ErrorResponse())
	}
	log.Info().Msg("webhook registered")
	return w.respond("set_webhook", OKResponse())
}

func (w *Webhook) respond(operation string, r Response) Response {
	metrics.Observe(w.metrics.Responses, 1, operation, strconv.Itoa(r.StatusCode))
	return r
}
