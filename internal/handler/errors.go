package handler

import (
	"errors"
	"net/http"

	"tapnews/internal/favorites"
	"tapnews/internal/feed"

	"github.com/gin-gonic/gin"
)

func errorStatus(err error) int {
	var unexpected *feed.UnexpectedError
	switch {
	case errors.Is(err, feed.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, feed.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, feed.ErrNotFound), errors.Is(err, feed.ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, favorites.ErrInvalidArticle):
		return http.StatusBadRequest
	case errors.Is(err, feed.ErrUnauthorized), errors.Is(err, feed.ErrNetworkUnreachable), errors.As(err, &unexpected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Store failures keep their details out of
// the body.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	msg := feed.Message(feed.Classify(err))
	switch {
	case errors.Is(err, favorites.ErrInvalidArticle):
		msg = err.Error()
	case status == http.StatusInternalServerError:
		msg = "Database error"
	}
	c.JSON(status, gin.H{"error": msg})
}
