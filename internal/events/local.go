package events

import (
	"context"
	"sync"

	"tapnews/internal/model"
)

const subscriberBuffer = 16

// Local is an in-process broker used when no Redis is configured and in tests.
type Local struct {
	mu   sync.Mutex
	subs map[string]map[chan model.FavoriteEvent]struct{}
}

func NewLocal() *Local {
	return &Local{subs: make(map[string]map[chan model.FavoriteEvent]struct{})}
}

func (l *Local) Publish(ctx context.Context, event model.FavoriteEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ch := range l.subs[event.OwnerID] {
		// slow subscribers only need to know something changed
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (l *Local) Subscribe(ctx context.Context, ownerID string) (<-chan model.FavoriteEvent, error) {
	ch := make(chan model.FavoriteEvent, subscriberBuffer)

	l.mu.Lock()
	if l.subs[ownerID] == nil {
		l.subs[ownerID] = make(map[chan model.FavoriteEvent]struct{})
	}
	l.subs[ownerID][ch] = struct{}{}
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subs[ownerID], ch)
		if len(l.subs[ownerID]) == 0 {
			delete(l.subs, ownerID)
		}
		close(ch)
		l.mu.Unlock()
	}()

	return ch, nil
}
