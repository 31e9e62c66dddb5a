package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const digestSystemPrompt = `You are a news editor. Given a list of news headlines and summaries, provide a short digest for a reader catching up on the day.

Rules for the paragraph:
- Single paragraph, concise and neutral
- Write in the language the headlines are written in

Rules for bullets:
- 3 to 5 bullet points
- Each bullet covers a distinct key event or theme
- Keep names, numbers and places exactly as given
- One sentence per bullet

Output as JSON only, no other text:
{
  "paragraph": "digest paragraph",
  "bullets": ["key event 1", "key event 2", "key event 3"]
}`

const maxDescriptionChars = 300

var ErrNoArticles = errors.New("no articles to digest")

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}

func formatArticlesForDigest(articles []DigestInput) string {
	var sb strings.Builder
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("%d. Headline: %s\n", i+1, a.Title))
		if a.Description != "" {
			sb.WriteString(fmt.Sprintf("   Summary: %s\n", truncate(a.Description, maxDescriptionChars)))
		}
		if a.Source != "" {
			sb.WriteString(fmt.Sprintf("   Source: %s\n", a.Source))
		}
		if !a.PublishedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("   Published: %s\n", a.PublishedAt.Format("2006-01-02 15:04")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func parseDigest(content, modelName string) (*DigestResult, error) {
	content = cleanJSONResponse(content)

	var parsed struct {
		Paragraph string   `json:"paragraph"`
		Bullets   []string `json:"bullets"`
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, content: %s", err, content)
	}

	return &DigestResult{
		Paragraph: parsed.Paragraph,
		Bullets:   parsed.Bullets,
		ModelUsed: modelName,
	}, nil
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
