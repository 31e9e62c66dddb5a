package model

import "time"

// Favorite is a bookmarked article owned by one user. OwnerID+URL is unique.
type Favorite struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	SavedAt     time.Time
}

const (
	EventFavoriteSaved   = "saved"
	EventFavoriteRemoved = "removed"
)

type FavoriteEvent struct {
	Type       string    `json:"type"`
	OwnerID    string    `json:"owner_id"`
	FavoriteID string    `json:"favorite_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	At         time.Time `json:"at"`
}
