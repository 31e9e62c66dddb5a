package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tapnews/db"
	"tapnews/internal/auth"
	"tapnews/internal/config"
	"tapnews/internal/events"
	"tapnews/internal/favorites"
	"tapnews/internal/feed"
	"tapnews/internal/handler"
	"tapnews/internal/repository"
	"tapnews/pkg/llm"
	"tapnews/pkg/news"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		log.Fatalf("error migrating DB: %v", err)
	}

	var (
		publisher  favorites.Publisher
		subscriber favorites.Subscriber
	)

	if cfg.RedisURL != "" {
		redisClient, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer redisClient.Close()

		broker := events.NewRedis(redisClient, slog.Default())
		publisher, subscriber = broker, broker
	} else {
		slog.Warn("REDIS_URL not set, favorite updates are only shared within this process")
		broker := events.NewLocal()
		publisher, subscriber = broker, broker
	}

	if cfg.KafkaBroker != "" {
		audit := events.NewKafka(cfg.KafkaBroker, cfg.KafkaTopic)
		defer audit.Close()
		publisher = events.Multi{publisher, audit}
		slog.Info("publishing favorite events to kafka", "broker", cfg.KafkaBroker, "topic", cfg.KafkaTopic)
	}

	if cfg.NewsAPIKey == "" {
		slog.Warn("NEWS_API_KEY not set, upstream requests will be rejected")
	}
	newsClient := news.NewNewsAPIClient(cfg.NewsAPIKey, cfg.NewsAPIBaseURL, cfg.NewsAPIRPS, cfg.NewsAPIBurst)

	opts := feed.DefaultOptions()
	opts.LocalPageSize = cfg.PageSize
	opts.UpstreamPageSize = cfg.UpstreamPageSize
	opts.Country = cfg.Country
	opts.Language = cfg.Language
	if len(cfg.Keywords) > 0 {
		opts.Keywords = cfg.Keywords
	}
	opts.Logger = slog.Default()

	registry := feed.NewRegistry(newsClient, opts)
	go registry.Run(ctx, time.Minute, cfg.SessionTTL)

	favoriteRepo := repository.NewFavoriteRepository(database)
	favoriteService := favorites.NewService(favoriteRepo, publisher, subscriber, slog.Default())

	newsHandler := handler.NewNewsHandler(registry, newDigestClient(cfg))
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)
	healthHandler := handler.NewHealthHandler(favoriteRepo)

	limiter := handler.NewRateLimiter(cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	go limiter.Run(ctx, time.Minute, 5*time.Minute)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", cfg.UserHeader, handler.SessionIDHeader},
	}))

	r.GET("/health", healthHandler.GetHealth)

	api := r.Group("/", limiter.Middleware(), handler.Identify(auth.NewHeaderProvider(cfg.UserHeader)))
	api.GET("/news", newsHandler.GetNews)
	api.GET("/news/search", newsHandler.SearchNews)
	api.GET("/news/digest", newsHandler.GetDigest)
	api.GET("/favorites", favoriteHandler.GetFavorites)
	api.POST("/favorites", favoriteHandler.SaveFavorite)
	api.DELETE("/favorites", favoriteHandler.DeleteFavoriteByURL)
	api.DELETE("/favorites/:id", favoriteHandler.DeleteFavorite)
	api.GET("/favorites/stream", favoriteHandler.StreamFavorites)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("api server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("error starting server: %v", err)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}

func newDigestClient(cfg config.Config) llm.DigestClient {
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey != "" {
			return llm.NewAnthropicClient(cfg.AnthropicAPIKey)
		}
	default:
		if cfg.OpenAIAPIKey != "" {
			return llm.NewOpenAIClient(cfg.OpenAIAPIKey)
		}
	}
	slog.Warn("no LLM key configured, digest endpoint disabled", "provider", cfg.LLMProvider)
	return nil
}
