package handler

import (
	"context"
	"log/slog"
	"net/http"

	"tapnews/internal/auth"
	"tapnews/internal/model"
	"tapnews/pkg/news"

	"github.com/gin-gonic/gin"
)

type FavoriteService interface {
	Save(ctx context.Context, id auth.Identity, article news.Article) (model.Favorite, bool, error)
	Remove(ctx context.Context, id auth.Identity, favoriteID string) error
	RemoveByURL(ctx context.Context, id auth.Identity, url string) error
	List(ctx context.Context, id auth.Identity) ([]model.Favorite, error)
	Watch(ctx context.Context, id auth.Identity) (<-chan []model.Favorite, error)
}

type FavoriteHandler struct {
	service FavoriteService
}

func NewFavoriteHandler(service FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	favs, err := h.service.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		slog.Error("error fetching favorites", "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFavoritesResponse(favs))
}

func (h *FavoriteHandler) SaveFavorite(c *gin.Context) {
	var req SaveFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fav, created, err := h.service.Save(c.Request.Context(), identityFrom(c), req.article())
	if err != nil {
		slog.Error("error saving favorite", "error", err, "url", req.URL)
		respondError(c, err)
		return
	}

	if !created {
		c.JSON(http.StatusOK, SaveFavoriteResponse{
			Favorite: toFavoriteResponse(fav),
			Message:  "Article is already in favorites",
		})
		return
	}

	c.JSON(http.StatusCreated, SaveFavoriteResponse{
		Favorite: toFavoriteResponse(fav),
		Created:  true,
		Message:  "Article added to favorites",
	})
}

func (h *FavoriteHandler) DeleteFavorite(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		slog.Error("error removing favorite", "error", err, "id", c.Param("id"))
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FavoriteHandler) DeleteFavoriteByURL(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	if err := h.service.RemoveByURL(c.Request.Context(), identityFrom(c), url); err != nil {
		slog.Error("error removing favorite", "error", err, "url", url)
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamFavorites pushes the caller's list as server-sent events until the
// client goes away.
func (h *FavoriteHandler) StreamFavorites(c *gin.Context) {
	ctx := c.Request.Context()

	updates, err := h.service.Watch(ctx, identityFrom(c))
	if err != nil {
		slog.Error("error watching favorites", "error", err)
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	for {
		select {
		case <-ctx.Done():
			return
		case favs, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("favorites", toFavoritesResponse(favs))
			c.Writer.Flush()
		}
	}
}
