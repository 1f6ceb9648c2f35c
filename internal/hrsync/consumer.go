package hrsync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mfrancani/patrimonio/internal/events"
	"github.com/mfrancani/patrimonio/internal/idgen"
)

// Consumer reads raw HR messages off the bus and feeds them through the
// parse, filter, and apply stages. Messages are processed one at a time;
// a failing message is logged and never takes the loop down.
type Consumer struct {
	engine  *Engine
	logger  *slog.Logger
	subject string
}

// NewConsumer returns a consumer for the given subject. An empty subject
// falls back to DefaultHRSubject.
func NewConsumer(engine *Engine, logger *slog.Logger, subject string) *Consumer {
	if subject == "" {
		subject = events.DefaultHRSubject
	}
	return &Consumer{engine: engine, logger: logger, subject: subject}
}

// Run subscribes to the HR subject and processes messages until the context
// is cancelled or the subscription channel closes.
func (c *Consumer) Run(ctx context.Context, sub events.Subscriber) error {
	ch, cancel, err := sub.Subscribe(c.subject)
	if err != nil {
		return fmt.Errorf("hrsync: subscribe %s: %w", c.subject, err)
	}
	defer cancel()

	c.logger.Info("hrsync: consumer started", "subject", c.subject)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("hrsync: consumer stopping")
			return nil
		case raw, ok := <-ch:
			if !ok {
				c.logger.Info("hrsync: subscription channel closed")
				return nil
			}
			c.Process(ctx, raw)
		}
	}
}

// Process runs one raw message through the pipeline. All failures are
// contained here; the caller never sees an error for a bad message.
func (c *Consumer) Process(ctx context.Context, raw []byte) {
	logger := c.logger.With("msg_id", idgen.EventID())

	env, err := ParseMessage(raw, logger)
	if err != nil {
		logger.Error("hrsync: dropping message", "error", err)
		return
	}
	if env == nil {
		return
	}

	logger = logger.With("event", env.Kind)

	if !env.Relevant() {
		logger.Info("hrsync: event out of scope, ignoring",
			"event_scope", env.EventScope, "update_scope", env.UpdateScope)
		return
	}

	out, err := c.engine.Apply(ctx, env)
	if err != nil {
		logger.Error("hrsync: apply failed", "error", err)
		return
	}
	logger.Info("hrsync: event processed", "outcome", out)
}
