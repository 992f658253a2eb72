package telegram

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"resume-bot/internal/conversation"
	"resume-bot/internal/shared/telemetry"
)

// Dispatcher accepts normalized events and reports whether the event was queued.
// The conversation controller implements it.
type Dispatcher interface {
	Dispatch(ev conversation.Event) bool
}

// Poller reads updates with getUpdates and hands them to a Dispatcher.
type Poller struct {
	client     *Client
	dispatcher Dispatcher
	log        *zap.Logger
	// Timeout is the long-poll timeout in seconds.
	Timeout int
	// Backoff is the pause after a failed poll.
	Backoff time.Duration
}

// NewPoller constructs a Poller with a 50s long-poll timeout.
func NewPoller(client *Client, dispatcher Dispatcher, log *zap.Logger) *Poller {
	return &Poller{client: client, dispatcher: dispatcher, log: telemetry.OrNop(log), Timeout: 50, Backoff: 3 * time.Second}
}

// Run polls until ctx is cancelled. Each update is dispatched exactly once; the offset
// moves past it before the next poll.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.client.DeleteWebhook(ctx); err != nil {
		p.log.Warn("telegram.poller.delete_webhook_failed", zap.Error(err))
	}
	p.log.Info("telegram.poller.started")

	var offset int64
	for {
		if ctx.Err() != nil {
			p.log.Info("telegram.poller.stopped")
			return nil
		}
		updates, err := p.client.GetUpdates(ctx, offset, p.Timeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				continue
			}
			p.log.Warn("telegram.poller.failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(p.Backoff):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			ev, ok := ToEvent(u)
			if !ok {
				continue
			}
			if !p.dispatcher.Dispatch(ev) {
				p.log.Warn("telegram.poller.dropped", zap.Int64("update_id", u.UpdateID))
			}
		}
	}
}
