package config

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "NEWS_COUNTRY", "FEED_PAGE_SIZE", "FEED_UPSTREAM_PAGE_SIZE", "FEED_SESSION_TTL", "FEED_KEYWORDS", "NEWS_API_RPS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "id", cfg.Country)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 20, cfg.UpstreamPageSize)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 1.0, cfg.NewsAPIRPS)
	assert.Equal(t, 0, len(cfg.Keywords))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NEWS_COUNTRY", "us")
	t.Setenv("FEED_PAGE_SIZE", "5")
	t.Setenv("FEED_UPSTREAM_PAGE_SIZE", "not-a-number")
	t.Setenv("FEED_SESSION_TTL", "10m")
	t.Setenv("FEED_KEYWORDS", "politics, economy,,tech ")
	t.Setenv("NEWS_API_RPS", "0.5")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "us", cfg.Country)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 20, cfg.UpstreamPageSize)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"politics", "economy", "tech"}, cfg.Keywords)
	assert.Equal(t, 0.5, cfg.NewsAPIRPS)
}
