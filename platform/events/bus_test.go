package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline_crm_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	seen := 0

	handler := HandlerFunc(func(ctx context.Context, event Event) error {
		mu.Lock()
		seen++
		mu.Unlock()
		wg.Done()
		return nil
	})
	bus.Subscribe("thing.happened", handler)
	bus.Subscribe("thing.happened", handler)

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "thing.happened"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, seen)
}

func TestPublishIgnoresOtherEventNames(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	called := make(chan struct{}, 1)
	bus.Subscribe("wanted", HandlerFunc(func(ctx context.Context, event Event) error {
		called <- struct{}{}
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "unwanted"})

	select {
	case <-called:
		t.Fatal("handler ran for an event it never subscribed to")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	failure := errors.New("handler broke")
	bus.Subscribe("sync.event", HandlerFunc(func(ctx context.Context, event Event) error {
		return failure
	}))
	bus.Subscribe("sync.event", HandlerFunc(func(ctx context.Context, event Event) error {
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "sync.event"})
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
}

func TestPublishRecoversPanickingHandler(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	survived := make(chan struct{})
	bus.Subscribe("panicky", HandlerFunc(func(ctx context.Context, event Event) error {
		panic("boom")
	}))
	bus.Subscribe("panicky", HandlerFunc(func(ctx context.Context, event Event) error {
		close(survived)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "panicky"})

	select {
	case <-survived:
	case <-time.After(2 * time.Second):
		t.Fatal("panic in one handler starved the others")
	}
}
