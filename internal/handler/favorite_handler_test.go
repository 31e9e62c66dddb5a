package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tapnews/internal/auth"
	"tapnews/internal/favorites"
	"tapnews/internal/feed"
	"tapnews/internal/model"
	"tapnews/pkg/news"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

type fakeFavorites struct {
	favs      []model.Favorite
	created   bool
	err       error
	saved     news.Article
	removedID string
	removedBy string
	callerID  string
	updates   chan []model.Favorite
}

func (f *fakeFavorites) identify(id auth.Identity) error {
	f.callerID = id.UserID
	if !id.Authenticated() {
		return feed.ErrUnauthenticated
	}
	return f.err
}

func (f *fakeFavorites) Save(ctx context.Context, id auth.Identity, article news.Article) (model.Favorite, bool, error) {
	if err := f.identify(id); err != nil {
		return model.Favorite{}, false, err
	}
	f.saved = article
	return model.Favorite{ID: "fav-1", OwnerID: id.UserID, Title: article.Title, URL: article.URL}, f.created, nil
}

func (f *fakeFavorites) Remove(ctx context.Context, id auth.Identity, favoriteID string) error {
	if err := f.identify(id); err != nil {
		return err
	}
	f.removedID = favoriteID
	return nil
}

func (f *fakeFavorites) RemoveByURL(ctx context.Context, id auth.Identity, url string) error {
	if err := f.identify(id); err != nil {
		return err
	}
	f.removedBy = url
	return nil
}

func (f *fakeFavorites) List(ctx context.Context, id auth.Identity) ([]model.Favorite, error) {
	if err := f.identify(id); err != nil {
		return nil, err
	}
	return f.favs, nil
}

func (f *fakeFavorites) Watch(ctx context.Context, id auth.Identity) (<-chan []model.Favorite, error) {
	if err := f.identify(id); err != nil {
		return nil, err
	}
	return f.updates, nil
}

func newFavoriteRouter(service FavoriteService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identify(auth.NewHeaderProvider("")))
	h := NewFavoriteHandler(service)
	r.GET("/favorites", h.GetFavorites)
	r.POST("/favorites", h.SaveFavorite)
	r.DELETE("/favorites/:id", h.DeleteFavorite)
	r.DELETE("/favorites", h.DeleteFavoriteByURL)
	r.GET("/favorites/stream", h.StreamFavorites)
	return r
}

func do(r *gin.Engine, method, target, user string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(auth.DefaultUserHeader, user)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGetFavorites_ReturnList(t *testing.T) {
	service := &fakeFavorites{favs: []model.Favorite{
		{ID: "1", Title: "Banjir", URL: "https://example.com/banjir", PublishedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
	}}
	r := newFavoriteRouter(service)

	w := do(r, "GET", "/favorites", "alice", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var res FavoritesResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "2026-03-01T08:00:00Z", res.Favorites[0].PublishedAt)
	assert.Equal(t, "alice", service.callerID)
}

func TestGetFavorites_Unauthenticated(t *testing.T) {
	r := newFavoriteRouter(&fakeFavorites{})

	w := do(r, "GET", "/favorites", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "Please login to save favorites"))
}

func TestGetFavorites_StoreError(t *testing.T) {
	r := newFavoriteRouter(&fakeFavorites{err: errors.New("connection reset")})

	w := do(r, "GET", "/favorites", "alice", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, strings.Contains(w.Body.String(), "connection reset"))
}

func TestSaveFavorite_Created(t *testing.T) {
	service := &fakeFavorites{created: true}
	r := newFavoriteRouter(service)
	body, _ := json.Marshal(SaveFavoriteRequest{Title: "Banjir", URL: "https://example.com/banjir"})

	w := do(r, "POST", "/favorites", "alice", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	var res SaveFavoriteResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, true, res.Created)
	assert.Equal(t, "Article added to favorites", res.Message)
	assert.Equal(t, "https://example.com/banjir", service.saved.URL)
}

func TestSaveFavorite_AlreadySaved(t *testing.T) {
	r := newFavoriteRouter(&fakeFavorites{created: false})
	body, _ := json.Marshal(SaveFavoriteRequest{Title: "Banjir", URL: "https://example.com/banjir"})

	w := do(r, "POST", "/favorites", "alice", body)

	assert.Equal(t, http.StatusOK, w.Code)
	var res SaveFavoriteResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, false, res.Created)
	assert.Equal(t, "Article is already in favorites", res.Message)
}

func TestSaveFavorite_MissingURL(t *testing.T) {
	service := &fakeFavorites{}
	r := newFavoriteRouter(service)

	w := do(r, "POST", "/favorites", "alice", []byte(`{"title":"no url"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "", service.callerID)
}

func TestSaveFavorite_Unauthenticated(t *testing.T) {
	r := newFavoriteRouter(&fakeFavorites{})
	body, _ := json.Marshal(SaveFavoriteRequest{URL: "https://example.com/banjir"})

	w := do(r, "POST", "/favorites", "", body)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteFavorite(t *testing.T) {
	service := &fakeFavorites{}
	r := newFavoriteRouter(service)

	w := do(r, "DELETE", "/favorites/fav-1", "alice", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "fav-1", service.removedID)
}

func TestDeleteFavoriteByURL(t *testing.T) {
	service := &fakeFavorites{}
	r := newFavoriteRouter(service)

	w := do(r, "DELETE", "/favorites?url=https%3A%2F%2Fexample.com%2Fbanjir", "alice", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.com/banjir", service.removedBy)

	w = do(r, "DELETE", "/favorites", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamFavorites_WritesEvents(t *testing.T) {
	updates := make(chan []model.Favorite, 2)
	updates <- nil
	updates <- []model.Favorite{{ID: "fav-1", URL: "https://example.com/banjir"}}
	close(updates)
	r := newFavoriteRouter(&fakeFavorites{updates: updates})

	w := do(r, "GET", "/favorites/stream", "alice", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), "event:favorites"))
	assert.Equal(t, true, strings.Contains(w.Body.String(), `"id":"fav-1"`))
}

func TestStreamFavorites_Unauthenticated(t *testing.T) {
	r := newFavoriteRouter(&fakeFavorites{})

	w := do(r, "GET", "/favorites/stream", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// uuidStore rejects ids Postgres could not cast to uuid.
type uuidStore struct{ deleted []string }

func (s *uuidStore) FindByOwnerAndURL(ctx context.Context, ownerID, url string) (*model.Favorite, error) {
	return nil, nil
}

func (s *uuidStore) Insert(ctx context.Context, fav *model.Favorite) (bool, error) {
	return true, nil
}

func (s *uuidStore) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(`pq: invalid input syntax for type uuid: "` + id + `"`)
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *uuidStore) DeleteByURL(ctx context.Context, ownerID, url string) error {
	return nil
}

func (s *uuidStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Favorite, error) {
	return nil, nil
}

func TestDeleteFavorite_MalformedIDIsNoContent(t *testing.T) {
	store := &uuidStore{}
	r := newFavoriteRouter(favorites.NewService(store, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil))))

	w := do(r, "DELETE", "/favorites/not-a-uuid", "alice", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	id := uuid.NewString()
	w = do(r, "DELETE", "/favorites/"+id, "alice", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{id}, store.deleted)
}
