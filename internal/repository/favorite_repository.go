package repository

import (
	"context"
	"database/sql"
	"time"

	"tapnews/internal/model"
)

type FavoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) FindByOwnerAndURL(ctx context.Context, ownerID, url string) (*model.Favorite, error) {
	var f model.Favorite
	var publishedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, url, image_url, published_at, saved_at
		FROM favorite
		WHERE owner_id = $1 AND url = $2
	`, ownerID, url).Scan(&f.ID, &f.OwnerID, &f.Title, &f.Description, &f.URL, &f.ImageURL, &publishedAt, &f.SavedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	f.PublishedAt = publishedAt.Time
	return &f, nil
}

func (r *FavoriteRepository) Insert(ctx context.Context, fav *model.Favorite) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO favorite(id, owner_id, title, description, url, image_url, published_at, saved_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id, url) DO NOTHING
		RETURNING id
	`, fav.ID, fav.OwnerID, fav.Title, fav.Description, fav.URL, fav.ImageURL, nullTime(fav.PublishedAt), fav.SavedAt).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	fav.ID = id
	return true, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, ownerID, id string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM favorite WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	return err
}

func (r *FavoriteRepository) DeleteByURL(ctx context.Context, ownerID, url string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM favorite WHERE owner_id = $1 AND url = $2
	`, ownerID, url)
	return err
}

func (r *FavoriteRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, title, description, url, image_url, published_at, saved_at
		FROM favorite
		WHERE owner_id = $1
		ORDER BY published_at DESC NULLS LAST, saved_at DESC
	`, ownerID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		var publishedAt sql.NullTime
		err := rows.Scan(&f.ID, &f.OwnerID, &f.Title, &f.Description, &f.URL, &f.ImageURL, &publishedAt, &f.SavedAt)
		if err != nil {
			return nil, err
		}
		f.PublishedAt = publishedAt.Time
		favorites = append(favorites, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return favorites, nil
}

func (r *FavoriteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
