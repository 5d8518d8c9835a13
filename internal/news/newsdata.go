package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const newsdataEndpoint = "https://newsdata.io/api/1/news"

// newsdataMaxTopics caps the OR-query size; newsdata.io rejects long queries.
const newsdataMaxTopics = 3

// NewsdataClient fetches articles from newsdata.io. Pagination uses the
// nextPage continuation token returned by the API.
type NewsdataClient struct {
	apiKey     string
	topics     []string
	country    string
	language   string
	maxPages   int
	httpClient *http.Client

	sleep func(time.Duration)
}

func NewNewsdataClient(apiKey string, topics []string, country, language string, maxPages int, timeout time.Duration) *NewsdataClient {
	return &NewsdataClient{
		apiKey:     apiKey,
		topics:     topics,
		country:    country,
		language:   language,
		maxPages:   maxPages,
		httpClient: &http.Client{Timeout: timeout},
		sleep:      time.Sleep,
	}
}

func (c *NewsdataClient) Name() string {
	return "newsdata.io"
}

func (c *NewsdataClient) Fetch(ctx context.Context) ([]Article, error) {
	var all []Article
	nextPage := ""

	for page := 1; page <= c.maxPages; page++ {
		resp, err := c.fetchPage(ctx, nextPage)
		if err != nil {
			if len(all) > 0 {
				slog.Warn("newsdata page fetch failed, returning partial results", "page", page, "error", err)
				return all, nil
			}
			return nil, err
		}

		for _, item := range resp.Results {
			if item.Title == "" || item.Link == "" {
				continue
			}
			publishedAt, err := time.Parse("2006-01-02 15:04:05", item.PubDate)
			if err != nil {
				publishedAt = time.Time{}
			}
			all = append(all, Article{
				Title:       item.Title,
				Description: item.Description,
				URL:         item.Link,
				Source:      item.SourceID,
				PublishedAt: publishedAt,
			})
		}

		if resp.NextPage == "" || len(resp.Results) == 0 {
			break
		}
		nextPage = resp.NextPage
	}

	return all, nil
}

func (c *NewsdataClient) fetchPage(ctx context.Context, nextPage string) (*newsdataResponse, error) {
	reqURL := c.pageURL(nextPage)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		slog.Warn("newsdata rate limit hit, cooling down", "cooldown", rateLimitCooldown)
		c.sleep(rateLimitCooldown)
		resp, err = c.get(ctx, reqURL)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsdata: status %d", resp.StatusCode)
	}

	var raw newsdataResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsdata decode: %w", err)
	}
	if raw.Status != "success" {
		return nil, fmt.Errorf("newsdata: status %q", raw.Status)
	}
	return &raw, nil
}

func (c *NewsdataClient) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsdata fetch: %w", err)
	}
	return resp, nil
}

func (c *NewsdataClient) pageURL(nextPage string) string {
	topics := c.topics
	if len(topics) > newsdataMaxTopics {
		picked := make([]string, newsdataMaxTopics)
		for i, idx := range rand.Perm(len(topics))[:newsdataMaxTopics] {
			picked[i] = topics[idx]
		}
		topics = picked
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("q", strings.Join(topics, " OR "))
	if c.country != "" {
		q.Set("country", c.country)
	}
	q.Set("language", c.language)
	if nextPage != "" {
		q.Set("page", nextPage)
	}

	return newsdataEndpoint + "?" + q.Encode()
}

type newsdataResponse struct {
	Status   string `json:"status"`
	NextPage string `json:"nextPage"`
	Results  []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Link        string `json:"link"`
		PubDate     string `json:"pubDate"`
		SourceID    string `json:"source_id"`
	} `json:"results"`
}
