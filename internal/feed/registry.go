package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type session struct {
	aggregator *Aggregator
	lastSeen   time.Time
}

// Registry hands out one aggregator per reader session and forgets idle ones.
type Registry struct {
	source Source
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewRegistry(source Source, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// every aggregator gets its own random source
	opts.Rand = nil

	return &Registry{
		source:   source,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

func (r *Registry) Get(sessionID string) *Aggregator {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		opts := r.opts
		opts.Logger = r.logger.With("session", sessionID)
		s = &session{aggregator: NewAggregator(r.source, opts)}
		r.sessions[sessionID] = s
	}
	s.lastSeen = r.now()
	return s.aggregator
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions not used for longer than maxIdle and returns how many went.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > maxIdle {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.logger.Info("cleaned up idle feed sessions", "removed", n, "remaining", r.Len())
			}
		}
	}
}
