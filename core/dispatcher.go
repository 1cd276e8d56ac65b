package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jdelaire/ares/core/metrics"
	"github.com/jdelaire/ares/core/ops"
)

// DispatcherOptions tunes a Dispatcher.
type DispatcherOptions struct {
	// ReplyErrors sends "Error running /cmd: ..." to the chat when a handler fails.
	ReplyErrors bool
	Metrics     metrics.Metrics
}

// Dispatcher resolves inbound commands against the op registry, runs them
// and delivers the reply. It holds no per-message state.
type Dispatcher struct {
	ops      *ops.Registry
	notifier Notifier
	logger   zerolog.Logger
	opts     DispatcherOptions
	now      func() time.Time
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(opsReg *ops.Registry, notifier Notifier, logger zerolog.Logger, opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		ops:      opsReg,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Handle dispatches msg and discards the outcome.
func (d *Dispatcher) Handle(msg InboundMessage) {
	d.Dispatch(context.Background(), msg)
}

// Dispatch parses msg, resolves and executes its command, and sends the
// reply. Non-commands and unknown commands are successful no-ops. Handler
// failures, panics included, are returned in the Outcome and never escape.
func (d *Dispatcher) Dispatch(ctx context.Context, msg InboundMessage) Outcome {
	if !isCommand(msg.Text) {
		d.logger.Debug().Int64("chat_id", msg.ChatID).Msg("ignoring non-command message")
		return Outcome{}
	}

	cmd := ParseCommand(msg.Text)
	op := d.ops.Get(cmd.Name)
	if op == nil {
		d.logger.Debug().Str("command", cmd.Name).Int64("chat_id", msg.ChatID).Msg("unknown command")
		return Outcome{Command: cmd.Name}
	}

	out := Outcome{Command: cmd.Name, Handled: true}
	call := ops.Call{
		Command: cmd.Name,
		Args:    cmd.Args,
		ChatID:  msg.ChatID,
		UserID:  msg.UserID,
	}

	start := d.now()
	reply, err := d.execute(ctx, op, call)
	metrics.Observe(d.opts.Metrics.CommandLatency, d.now().Sub(start).Seconds(), cmd.Name)

	if err != nil {
		out.Kind, out.Err = classify(err), err
		d.logger.Error().Err(err).
			Str("op", cmd.Name).
			Str("kind", out.Kind.String()).
			Int64("chat_id", msg.ChatID).
			Msg("op failed")
		if d.opts.ReplyErrors {
			d.respond(ctx, msg.ChatID, fmt.Sprintf("Error running /%s: %s", cmd.Name, err))
		}
		metrics.Observe(d.opts.Metrics.Commands, 1, cmd.Name, out.Kind.String())
		return out
	}

	if reply == "" {
		d.logger.Debug().Str("op", cmd.Name).Msg("empty reply, nothing sent")
	} else if err := d.respond(ctx, msg.ChatID, reply); err != nil {
		out.Kind, out.Err = KindDelivery, err
	} else {
		out.Replied = true
	}
	metrics.Observe(d.opts.Metrics.Commands, 1, cmd.Name, out.Kind.String())
	return out
}

// execute checks the declared arity and runs op, converting a panic into an error.
func (d *Dispatcher) execute(ctx context.Context, op ops.Op, call ops.Call) (reply string, err error) {
	if err := ops.CheckArity(op, call); err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			reply, err = "", fmt.Errorf("panic in /%s: %v", call.Command, r)
		}
	}()
	return op.Execute(ctx, call)
}

func (d *Dispatcher) respond(ctx context.Context, chatID int64, text string) error {
	n := Notification{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Text:      text,
		Source:    "dispatcher",
		CreatedAt: d.now(),
	}
	if err := d.notifier.Send(ctx, n); err != nil {
		d.logger.Error().Err(err).Int64("chat_id", chatID).Str("notifier", d.notifier.Name()).Msg("failed to send response")
		return err
	}
	d.logger.Info().Str("id", n.ID).Int64("chat_id", chatID).Msg("reply sent")
	return nil
}
