package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"tapnews/internal/feed"
	"tapnews/pkg/llm"

	"github.com/gin-gonic/gin"
)

type FeedSessions interface {
	Get(sessionID string) *feed.Aggregator
}

type NewsHandler struct {
	sessions FeedSessions
	digest   llm.DigestClient
}

// NewNewsHandler builds the feed endpoints. digest may be nil, in which case
// the digest endpoint reports itself unavailable.
func NewNewsHandler(sessions FeedSessions, digest llm.DigestClient) *NewsHandler {
	return &NewsHandler{sessions: sessions, digest: digest}
}

func (h *NewsHandler) GetNews(c *gin.Context) {
	reset, err := strconv.ParseBool(c.DefaultQuery("reset", "false"))
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", "reset", "value", c.Query("reset"), "default", false)
		reset = false
	}

	agg := h.sessions.Get(sessionKey(c))
	st := agg.LoadPage(c.Request.Context(), reset)
	writeState(c, st)
}

func (h *NewsHandler) SearchNews(c *gin.Context) {
	agg := h.sessions.Get(sessionKey(c))
	st := agg.Search(c.Request.Context(), c.Query("q"))
	writeState(c, st)
}

func (h *NewsHandler) GetDigest(c *gin.Context) {
	if h.digest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Digest is not configured"})
		return
	}

	agg := h.sessions.Get(sessionKey(c))
	articles := agg.State().Articles
	if len(articles) == 0 {
		articles = agg.LoadPage(c.Request.Context(), false).Articles
	}
	if len(articles) == 0 {
		respondError(c, feed.ErrNoResults)
		return
	}

	inputs := make([]llm.DigestInput, 0, len(articles))
	for _, a := range articles {
		inputs = append(inputs, llm.DigestInput{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source,
			PublishedAt: a.PublishedAt,
		})
	}

	result, err := h.digest.Digest(c.Request.Context(), inputs)
	if err != nil {
		slog.Error("error building digest", "error", err, "articles", len(inputs))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not build a digest right now. Please try again later."})
		return
	}

	c.JSON(http.StatusOK, DigestResponse{
		Paragraph:    result.Paragraph,
		Bullets:      result.Bullets,
		ArticleCount: len(inputs),
		ModelUsed:    result.ModelUsed,
	})
}

// writeState answers with the state body; failures keep the visible articles in
// the body but carry the mapped status code.
func writeState(c *gin.Context, st feed.State) {
	status := http.StatusOK
	if st.Status == feed.StatusFailed {
		status = errorStatus(st.Err)
	}
	c.JSON(status, toStateResponse(st))
}
