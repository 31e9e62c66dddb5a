package handler

import (
	"time"

	"tapnews/internal/feed"
	"tapnews/internal/model"
	"tapnews/pkg/news"
)

type ArticleResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

type StateResponse struct {
	Status   string            `json:"status"`
	Articles []ArticleResponse `json:"articles"`
	Message  string            `json:"message,omitempty"`
}

type FavoriteResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	PublishedAt string `json:"published_at"`
	SavedAt     string `json:"saved_at"`
}

type FavoritesResponse struct {
	Favorites []FavoriteResponse `json:"favorites"`
	Total     int                `json:"total"`
}

type SaveFavoriteRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url" binding:"required"`
	ImageURL    string    `json:"image_url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

type SaveFavoriteResponse struct {
	Favorite FavoriteResponse `json:"favorite"`
	Created  bool             `json:"created"`
	Message  string           `json:"message"`
}

type DigestResponse struct {
	Paragraph    string   `json:"paragraph"`
	Bullets      []string `json:"bullets"`
	ArticleCount int      `json:"article_count"`
	ModelUsed    string   `json:"model_used"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toArticleResponse(a news.Article) ArticleResponse {
	return ArticleResponse{
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		Source:      a.Source,
		PublishedAt: formatTime(a.PublishedAt),
	}
}

func toStateResponse(st feed.State) StateResponse {
	articles := make([]ArticleResponse, 0, len(st.Articles))
	for _, a := range st.Articles {
		articles = append(articles, toArticleResponse(a))
	}
	return StateResponse{
		Status:   string(st.Status),
		Articles: articles,
		Message:  st.Message,
	}
}

func toFavoriteResponse(f model.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		URL:         f.URL,
		ImageURL:    f.ImageURL,
		PublishedAt: formatTime(f.PublishedAt),
		SavedAt:     formatTime(f.SavedAt),
	}
}

func toFavoritesResponse(favs []model.Favorite) FavoritesResponse {
	res := FavoritesResponse{Favorites: make([]FavoriteResponse, 0, len(favs)), Total: len(favs)}
	for _, f := range favs {
		res.Favorites = append(res.Favorites, toFavoriteResponse(f))
	}
	return res
}

func (r SaveFavoriteRequest) article() news.Article {
	return news.Article{
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		ImageURL:    r.ImageURL,
		Source:      r.Source,
		PublishedAt: r.PublishedAt,
	}
}
