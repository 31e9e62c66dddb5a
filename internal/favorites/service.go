package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tapnews/internal/auth"
	"tapnews/internal/feed"
	"tapnews/internal/model"
	"tapnews/pkg/news"

	"github.com/google/uuid"
)

var ErrInvalidArticle = errors.New("article url is required")

type Store interface {
	FindByOwnerAndURL(ctx context.Context, ownerID, url string) (*model.Favorite, error)
	// Insert writes fav unless the owner already has its URL; it reports whether
	// a row was written.
	Insert(ctx context.Context, fav *model.Favorite) (bool, error)
	Delete(ctx context.Context, ownerID, id string) error
	DeleteByURL(ctx context.Context, ownerID, url string) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Favorite, error)
}

type Publisher interface {
	Publish(ctx context.Context, event model.FavoriteEvent) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, ownerID string) (<-chan model.FavoriteEvent, error)
}

type Service struct {
	store      Store
	publisher  Publisher
	subscriber Subscriber
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

func NewService(store Store, publisher Publisher, subscriber Subscriber, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Save bookmarks article for the caller. An existing bookmark of the same URL is
// returned with created=false instead of writing a second one.
func (s *Service) Save(ctx context.Context, id auth.Identity, article news.Article) (model.Favorite, bool, error) {
	if !id.Authenticated() {
		return model.Favorite{}, false, feed.ErrUnauthenticated
	}
	if article.URL == "" {
		return model.Favorite{}, false, ErrInvalidArticle
	}

	existing, err := s.store.FindByOwnerAndURL(ctx, id.UserID, article.URL)
	if err != nil {
		return model.Favorite{}, false, fmt.Errorf("check favorite: %w", err)
	}
	if existing != nil {
		return *existing, false, nil
	}

	fav := model.Favorite{
		ID:          s.newID(),
		OwnerID:     id.UserID,
		Title:       article.Title,
		Description: article.Description,
		URL:         article.URL,
		ImageURL:    article.ImageURL,
		PublishedAt: article.PublishedAt,
		SavedAt:     s.now().UTC(),
	}

	created, err := s.store.Insert(ctx, &fav)
	if err != nil {
		return model.Favorite{}, false, fmt.Errorf("insert favorite: %w", err)
	}

	if !created {
		// lost a race with a concurrent save of the same url
		existing, err := s.store.FindByOwnerAndURL(ctx, id.UserID, article.URL)
		if err != nil {
			return model.Favorite{}, false, fmt.Errorf("check favorite: %w", err)
		}
		if existing != nil {
			return *existing, false, nil
		}
		return fav, false, nil
	}

	s.publish(ctx, model.FavoriteEvent{
		Type:       model.EventFavoriteSaved,
		OwnerID:    id.UserID,
		FavoriteID: fav.ID,
		URL:        fav.URL,
		At:         fav.SavedAt,
	})

	return fav, true, nil
}

// Remove deletes one of the caller's favorites. Removing a missing id is not an error.
func (s *Service) Remove(ctx context.Context, id auth.Identity, favoriteID string) error {
	if !id.Authenticated() {
		return feed.ErrUnauthenticated
	}
	// ids are uuids; anything else cannot name a stored favorite
	if _, err := uuid.Parse(favoriteID); err != nil {
		return nil
	}

	if err := s.store.Delete(ctx, id.UserID, favoriteID); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	s.publish(ctx, model.FavoriteEvent{
		Type:       model.EventFavoriteRemoved,
		OwnerID:    id.UserID,
		FavoriteID: favoriteID,
		At:         s.now().UTC(),
	})
	return nil
}

func (s *Service) RemoveByURL(ctx context.Context, id auth.Identity, url string) error {
	if !id.Authenticated() {
		return feed.ErrUnauthenticated
	}

	if err := s.store.DeleteByURL(ctx, id.UserID, url); err != nil {
		return fmt.Errorf("delete favorite by url: %w", err)
	}

	s.publish(ctx, model.FavoriteEvent{
		Type:    model.EventFavoriteRemoved,
		OwnerID: id.UserID,
		URL:     url,
		At:      s.now().UTC(),
	})
	return nil
}

// List returns the caller's favorites, newest publication first.
func (s *Service) List(ctx context.Context, id auth.Identity) ([]model.Favorite, error) {
	if !id.Authenticated() {
		return nil, feed.ErrUnauthenticated
	}

	favs, err := s.store.ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	sort.SliceStable(favs, func(i, j int) bool {
		return favs[i].PublishedAt.After(favs[j].PublishedAt)
	})
	return favs, nil
}

// Watch streams the caller's list: once immediately, then after every change.
// The channel is closed when ctx is done or the subscription ends.
func (s *Service) Watch(ctx context.Context, id auth.Identity) (<-chan []model.Favorite, error) {
	if !id.Authenticated() {
		return nil, feed.ErrUnauthenticated
	}
	if s.subscriber == nil {
		return nil, errors.New("favorite subscriptions are not configured")
	}

	events, err := s.subscriber.Subscribe(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("subscribe favorites: %w", err)
	}

	initial, err := s.List(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make(chan []model.Favorite, 1)
	out <- initial

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				favs, err := s.List(ctx, id)
				if err != nil {
					s.logger.Error("error loading favorites", "error", err, "owner_id", id.UserID)
					continue
				}
				select {
				case out <- favs:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *Service) publish(ctx context.Context, event model.FavoriteEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("error publishing favorite event", "error", err, "type", event.Type, "owner_id", event.OwnerID)
	}
}
