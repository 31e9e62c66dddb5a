package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"tapnews/internal/auth"
	"tapnews/internal/feed"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	identityKey     = "identity"
	SessionIDHeader = "X-Session-ID"
)

// Identify resolves the caller once per request and stores it on the context.
func Identify(provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, provider.Identify(c.Request))
		c.Next()
	}
}

func identityFrom(c *gin.Context) auth.Identity {
	v, _ := c.Get(identityKey)
	id, _ := v.(auth.Identity)
	return id
}

// sessionKey picks the feed session: explicit header, then user, then client IP.
func sessionKey(c *gin.Context) string {
	if s := strings.TrimSpace(c.GetHeader(SessionIDHeader)); s != "" {
		return "session:" + s
	}
	if id := identityFrom(c); id.Authenticated() {
		return "user:" + id.UserID
	}
	return "ip:" + c.ClientIP()
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateClient
	rps     rate.Limit
	burst   int
	now     func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rateClient),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		l.mu.Lock()
		client, ok := l.clients[ip]
		if !ok {
			client = &rateClient{limiter: rate.NewLimiter(l.rps, l.burst)}
			l.clients[ip] = client
		}
		client.lastSeen = l.now()
		l.mu.Unlock()

		if !client.limiter.Allow() {
			slog.Warn("rate limit exceeded", "ip", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": feed.Message(feed.ErrRateLimited)})
			return
		}
		c.Next()
	}
}

// Cleanup forgets clients not seen for maxIdle and returns how many were removed.
func (l *RateLimiter) Cleanup(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	removed := 0
	for ip, client := range l.clients {
		if client.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
			removed++
		}
	}
	return removed
}

func (l *RateLimiter) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Cleanup(maxIdle); n > 0 {
				slog.Info("cleaned up inactive clients", "count", n)
			}
		}
	}
}
