package events

import (
	"context"
	"errors"

	"tapnews/internal/model"
)

type Publisher interface {
	Publish(ctx context.Context, event model.FavoriteEvent) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event model.FavoriteEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
