package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversToSubscriber(t *testing.T) {
	bus := NewBus()

	received := make(chan GiveawayClosedEvent, 1)
	bus.Subscribe(EventTypeGiveawayClosed, func(ctx context.Context, event Event) {
		received <- event.(GiveawayClosedEvent)
	})

	emitted := GiveawayClosedEvent{
		GiveawayID:  7,
		GuildID:     42,
		ChannelID:   555,
		WinnerCount: 2,
		EntryCount:  10,
	}
	bus.Emit(context.Background(), emitted)

	select {
	case event := <-received:
		assert.Equal(t, emitted, event)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		bus.Subscribe(EventTypeGiveawayCreated, func(ctx context.Context, event Event) {
			wg.Done()
		})
	}

	bus.Emit(context.Background(), GiveawayCreatedEvent{GiveawayID: 1})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not all subscribers received the event")
	}
}

func TestBus_IgnoresOtherEventTypes(t *testing.T) {
	bus := NewBus()

	received := make(chan bool, 1)
	bus.Subscribe(EventTypeGiveawayClosed, func(ctx context.Context, event Event) {
		received <- true
	})

	bus.Emit(context.Background(), ConnectionStatusChangedEvent{Nickname: "main"})

	select {
	case <-received:
		t.Fatal("handler received an event type it never subscribed to")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_RecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(EventTypeGiveawayClosed, func(ctx context.Context, event Event) {
		panic("handler bug")
	})

	received := make(chan bool, 1)
	bus.Subscribe(EventTypeGiveawayClosed, func(ctx context.Context, event Event) {
		received <- true
	})

	bus.Emit(context.Background(), GiveawayClosedEvent{GiveawayID: 7})

	// The panicking handler must not take down the others
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy handler did not run")
	}
}

func TestBus_EmitWithNoSubscribers(t *testing.T) {
	bus := NewBus()

	// Nothing to assert beyond not panicking
	bus.Emit(context.Background(), GiveawayCreatedEvent{GiveawayID: 1})
}
