package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"tapnews/internal/model"

	"github.com/go-playground/assert/v2"
)

func TestLocal_DeliversToOwnerOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewLocal()
	alice, err := broker.Subscribe(ctx, "alice")
	assert.Equal(t, nil, err)
	bob, err := broker.Subscribe(ctx, "bob")
	assert.Equal(t, nil, err)

	broker.Publish(ctx, model.FavoriteEvent{Type: model.EventFavoriteSaved, OwnerID: "alice", URL: "https://example.com/a"})

	select {
	case ev := <-alice:
		assert.Equal(t, "https://example.com/a", ev.URL)
	case <-time.After(time.Second):
		t.Fatal("alice did not receive event")
	}

	select {
	case ev := <-bob:
		t.Fatalf("bob received %v", ev)
	default:
	}
}

func TestLocal_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	broker := NewLocal()

	ch, _ := broker.Subscribe(ctx, "alice")
	cancel()

	select {
	case _, ok := <-ch:
		assert.Equal(t, false, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}

	// publishing after the subscriber left must not panic
	assert.Equal(t, nil, broker.Publish(context.Background(), model.FavoriteEvent{OwnerID: "alice"}))
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(ctx context.Context, event model.FavoriteEvent) error {
	return f.err
}

func TestMulti_PublishesToAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewLocal()
	ch, _ := broker.Subscribe(ctx, "alice")
	boom := errors.New("kafka down")

	err := Multi{failingPublisher{err: boom}, broker}.Publish(ctx, model.FavoriteEvent{OwnerID: "alice"})

	assert.Equal(t, true, errors.Is(err, boom))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("local broker skipped after failing publisher")
	}
}

func TestKafka_FlushesWithoutWaitingForFullBatch(t *testing.T) {
	k := NewKafka("localhost:9092", "tapnews-favorites")
	defer k.Close()

	assert.Equal(t, 10*time.Millisecond, k.writer.BatchTimeout)
	assert.Equal(t, "tapnews-favorites", k.writer.Topic)
}
