package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher is the emit surface handed to services.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// ChannelPublisher hands events to the worker through a buffered channel.
// Emit never blocks a request: when the buffer is full the event is dropped
// and counted, which is acceptable for an advisory trail.
type ChannelPublisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewChannelPublisher(buffer int, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Inbox is the read side consumed by the worker.
func (p *ChannelPublisher) Inbox() <-chan Event { return p.inbox }

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action, "actor_id", event.ActorID)
	}
}

// NopPublisher discards events. Used by tests that do not assert on the trail.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) {}
