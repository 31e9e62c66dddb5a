package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const DefaultNewsAPIBaseURL = "https://newsapi.org"

// APIError is returned for any non-2xx answer or an envelope with status "error".
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("newsapi status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("newsapi status %d", e.StatusCode)
}

type NewsAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ NewsClient = (*NewsAPIClient)(nil)

func NewNewsAPIClient(apiKey, baseURL string, rps float64, burst int) *NewsAPIClient {
	if baseURL == "" {
		baseURL = DefaultNewsAPIBaseURL
	}
	if burst < 1 {
		burst = 1
	}

	return &NewsAPIClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *NewsAPIClient) Name() string {
	return "NewsAPI"
}

func (c *NewsAPIClient) TopHeadlines(ctx context.Context, q HeadlinesQuery) ([]Article, error) {
	params := url.Values{}
	params.Set("country", q.Country)
	params.Set("pageSize", strconv.Itoa(q.PageSize))

	articles, err := c.get(ctx, "/v2/top-headlines", params)
	if err != nil {
		return nil, fmt.Errorf("newsapi top-headlines: %w", err)
	}
	return articles, nil
}

func (c *NewsAPIClient) Everything(ctx context.Context, q EverythingQuery) ([]Article, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}

	articles, err := c.get(ctx, "/v2/everything", params)
	if err != nil {
		return nil, fmt.Errorf("newsapi everything: %w", err)
	}
	return articles, nil
}

func (c *NewsAPIClient) Search(ctx context.Context, query string, pageSize int) ([]Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(pageSize))

	articles, err := c.get(ctx, "/v2/everything", params)
	if err != nil {
		return nil, fmt.Errorf("newsapi search: %w", err)
	}
	return articles, nil
}

func (c *NewsAPIClient) get(ctx context.Context, path string, params url.Values) ([]Article, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw newsAPIResponse
	decodeErr := json.Unmarshal(body, &raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: raw.Code, Message: raw.Message}
		if decodeErr != nil {
			apiErr.Message = string(body)
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("decode: %w", decodeErr)
	}

	if raw.Status == "error" {
		return nil, &APIError{StatusCode: statusForCode(raw.Code), Code: raw.Code, Message: raw.Message}
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		// NewsAPI blanks out removed articles instead of dropping them.
		if item.URL == "" || item.Title == "[Removed]" {
			continue
		}

		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		articles = append(articles, Article{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			ImageURL:    item.URLToImage,
			Source:      item.Source.Name,
			PublishedAt: publishedAt,
		})
	}

	return articles, nil
}

func statusForCode(code string) int {
	switch code {
	case "rateLimited":
		return http.StatusTooManyRequests
	case "apiKeyDisabled", "apiKeyExhausted", "apiKeyInvalid", "apiKeyMissing":
		return http.StatusUnauthorized
	case "sourceDoesNotExist":
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
}

type newsAPISource struct {
	Name string `json:"name"`
}
