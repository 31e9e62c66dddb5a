package feed

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestRegistry_GetReusesSession(t *testing.T) {
	r := NewRegistry(&fakeSource{}, Options{})

	a := r.Get("alice")
	b := r.Get("alice")
	c := r.Get("bob")

	assert.Equal(t, true, a == b)
	assert.Equal(t, false, a == c)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SweepDropsIdleSessions(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(&fakeSource{}, Options{})
	r.now = func() time.Time { return now }

	r.Get("idle")
	now = now.Add(20 * time.Minute)
	r.Get("active")
	now = now.Add(15 * time.Minute)

	removed := r.Sweep(30 * time.Minute)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, r.Len())

	fresh := r.Get("idle")
	assert.Equal(t, StatusIdle, fresh.State().Status)
}
