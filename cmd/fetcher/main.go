package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"tapnews/internal/config"
	"tapnews/internal/feed"
	"tapnews/pkg/news"

	"github.com/joho/godotenv"
)

// fetcher pages through the feed the same way a client session does and logs
// what each page returned. Useful for checking keys and country settings.
func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	pages := flag.Int("pages", 3, "number of pages to load")
	query := flag.String("q", "", "run a search after loading pages")
	flag.Parse()

	cfg := config.Load()
	if cfg.NewsAPIKey == "" {
		log.Fatal("NEWS_API_KEY environment variable is not set")
	}

	client := news.NewNewsAPIClient(cfg.NewsAPIKey, cfg.NewsAPIBaseURL, cfg.NewsAPIRPS, cfg.NewsAPIBurst)

	opts := feed.DefaultOptions()
	opts.LocalPageSize = cfg.PageSize
	opts.UpstreamPageSize = cfg.UpstreamPageSize
	opts.Country = cfg.Country
	opts.Language = cfg.Language
	if len(cfg.Keywords) > 0 {
		opts.Keywords = cfg.Keywords
	}
	opts.Logger = slog.Default()

	agg := feed.NewAggregator(client, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for page := 1; page <= *pages; page++ {
		st := agg.LoadPage(ctx, false)
		snap := agg.Snapshot()
		slog.Info("page loaded", "source", client.Name(), "page", page, "status", st.Status, "visible", len(st.Articles),
			"buffer", snap.BufferLen, "terminal", snap.Terminal, "message", st.Message)

		if st.Status == feed.StatusFailed || snap.Terminal {
			break
		}
	}

	if *query != "" {
		st := agg.Search(ctx, *query)
		slog.Info("search complete", "query", *query, "status", st.Status, "results", len(st.Articles), "message", st.Message)
		for _, a := range st.Articles {
			slog.Info("result", "title", a.Title, "source", a.Source, "url", a.URL)
		}
	}
}
