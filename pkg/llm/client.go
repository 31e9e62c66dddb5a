package llm

import (
	"context"
	"time"
)

type DigestInput struct {
	Title       string
	Description string
	Source      string
	PublishedAt time.Time
}

type DigestResult struct {
	Paragraph string
	Bullets   []string
	ModelUsed string
}

type DigestClient interface {
	Digest(ctx context.Context, articles []DigestInput) (*DigestResult, error)
}
