package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWorkerDrainsPublisherIntoSink(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := NewChannelPublisher(16, slog.Default())
	store := NewMemoryStore()
	worker := NewWorker(pub.Inbox(), slog.Default(), store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	pub.Emit(ctx, Event{Action: ActionRankingCreated, ActorID: "red", EntityType: "ranking", EntityID: "r1"})
	pub.Emit(ctx, Event{Action: ActionBoxFavorited, ActorID: "blue", EntityType: "box", EntityID: "b1"})

	require.Eventually(t, func() bool {
		events, err := store.ListByActor(ctx, "red")
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	events, err := store.ListByActor(ctx, "red")
	require.NoError(t, err)
	require.Equal(t, ActionRankingCreated, events[0].Action)
	require.False(t, events[0].Timestamp.IsZero())

	cancel()
	<-done
}

func TestEmitDropsWhenBufferFull(t *testing.T) {
	ctx := context.Background()
	pub := NewChannelPublisher(1, slog.Default())

	pub.Emit(ctx, Event{Action: ActionBoxCreated})
	pub.Emit(ctx, Event{Action: ActionBoxDeleted}) // buffer full, dropped

	require.Len(t, pub.Inbox(), 1)
}
