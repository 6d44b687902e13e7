package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultWikipediaURL = "https://en.wikipedia.org"

// WikiClient fetches short topic summaries from the Wikipedia REST API.
type WikiClient struct {
	http    *http.Client
	baseURL string
}

func NewWikiClient(baseURL string) *WikiClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultWikipediaURL
	}
	return &WikiClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type wikiSummary struct {
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// PageURL is the article link used when the summary cannot be fetched.
func (c *WikiClient) PageURL(topic string) string {
	return c.baseURL + "/wiki/" + url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
}

// Summarize returns the first few sentences of the topic's article plus its
// page URL.
func (c *WikiClient) Summarize(ctx context.Context, topic string) (summary, pageURL string, err error) {
	endpoint := c.baseURL + "/api/rest_v1/page/summary/" +
		url.PathEscape(strings.ReplaceAll(topic, " ", "_"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", fmt.Errorf("create summary request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch summary: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("summary status %d", res.StatusCode)
	}

	var data wikiSummary
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return "", "", fmt.Errorf("decode summary: %w", err)
	}
	if data.Extract == "" {
		return "", "", fmt.Errorf("no summary for %q", topic)
	}

	pageURL = data.ContentURLs.Desktop.Page
	if pageURL == "" {
		pageURL = c.PageURL(topic)
	}
	return firstSentences(data.Extract, 3), pageURL, nil
}

// firstSentences keeps a spoken summary short: the lead of an article, not
// the whole thing.
func firstSentences(text string, n int) string {
	sentences := strings.SplitAfterN(text, ". ", n+1)
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	out := strings.TrimSpace(strings.Join(sentences, ""))
	if out != "" && !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}
