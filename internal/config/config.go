package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	FrontendURL string

	NewsAPIKey     string
	NewsAPIBaseURL string
	NewsAPIRPS     float64
	NewsAPIBurst   int

	Country          string
	Language         string
	PageSize         int
	UpstreamPageSize int
	Keywords         []string
	SessionTTL       time.Duration

	KafkaBroker string
	KafkaTopic  string

	LLMProvider     string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	UserHeader        string
	APIRateLimitRPS   float64
	APIRateLimitBurst int
}

func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		FrontendURL: os.Getenv("FRONTEND_URL"),

		NewsAPIKey:     os.Getenv("NEWS_API_KEY"),
		NewsAPIBaseURL: getenv("NEWS_API_BASE_URL", "https://newsapi.org"),
		NewsAPIRPS:     parseFloatEnv("NEWS_API_RPS", 1),
		NewsAPIBurst:   parseIntEnv("NEWS_API_BURST", 2),

		Country:          getenv("NEWS_COUNTRY", "id"),
		Language:         getenv("NEWS_LANGUAGE", "id"),
		PageSize:         parseIntEnv("FEED_PAGE_SIZE", 10),
		UpstreamPageSize: parseIntEnv("FEED_UPSTREAM_PAGE_SIZE", 20),
		Keywords:         parseListEnv("FEED_KEYWORDS"),
		SessionTTL:       parseDurationEnv("FEED_SESSION_TTL", 30*time.Minute),

		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  getenv("KAFKA_TOPIC", "tapnews-favorites"),

		LLMProvider:     getenv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		UserHeader:        getenv("USER_ID_HEADER", "X-User-ID"),
		APIRateLimitRPS:   parseFloatEnv("API_RATE_LIMIT_RPS", 5),
		APIRateLimitBurst: parseIntEnv("API_RATE_LIMIT_BURST", 10),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func parseFloatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parseListEnv splits a comma separated value; empty entries are dropped.
func parseListEnv(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
