package audit

import (
	"context"
	"log/slog"
)

// Worker drains the publisher's inbox into one or more sinks. A sink failure
// is logged and skipped; the trail is advisory and must never wedge the
// pipeline behind a broken broker.
type Worker struct {
	inbox  <-chan Event
	sinks  []Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, logger *slog.Logger, sinks ...Sink) *Worker {
	return &Worker{inbox: inbox, sinks: sinks, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			for _, sink := range w.sinks {
				if err := sink.Append(ctx, event); err != nil {
					w.logger.ErrorContext(ctx, "audit sink append failed",
						"action", event.Action, "error", err)
				}
			}
		}
	}
}
