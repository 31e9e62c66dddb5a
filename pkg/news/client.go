package news

import (
	"context"
	"time"
)

type Article struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	Source      string
	PublishedAt time.Time
}

type HeadlinesQuery struct {
	Country  string
	PageSize int
}

type EverythingQuery struct {
	Query    string
	SortBy   string
	Language string
	PageSize int
}

// NewsClient is the upstream feed. Search is a free-text query across all
// languages; Everything is the keyword mode used for feed fallback.
type NewsClient interface {
	TopHeadlines(ctx context.Context, q HeadlinesQuery) ([]Article, error)
	Everything(ctx context.Context, q EverythingQuery) ([]Article, error)
	Search(ctx context.Context, query string, pageSize int) ([]Article, error)
	Name() string
}
