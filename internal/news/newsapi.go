package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const newsAPIEndpoint = "https://newsapi.org/v2/everything"

// rateLimitCooldown is how long we wait after an HTTP 429 before the single
// retry of that page.
const rateLimitCooldown = 60 * time.Second

// NewsAPIClient fetches articles from newsapi.org.
type NewsAPIClient struct {
	apiKey     string
	topics     []string
	domains    []string
	language   string
	windowDays int
	maxPages   int
	pageSize   int
	httpClient *http.Client

	sleep func(time.Duration) // overridable in tests
}

func NewNewsAPIClient(apiKey string, topics, domains []string, language string, windowDays, maxPages, pageSize int, timeout time.Duration) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:     apiKey,
		topics:     topics,
		domains:    domains,
		language:   language,
		windowDays: windowDays,
		maxPages:   maxPages,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		sleep:      time.Sleep,
	}
}

func (c *NewsAPIClient) Name() string {
	return "NewsAPI"
}

func (c *NewsAPIClient) Fetch(ctx context.Context) ([]Article, error) {
	var all []Article

	for page := 1; page <= c.maxPages; page++ {
		articles, err := c.fetchPage(ctx, page)
		if err != nil {
			if len(all) > 0 {
				// Keep what we already have.
				slog.Warn("newsapi page fetch failed, returning partial results", "page", page, "error", err)
				return all, nil
			}
			return nil, err
		}
		all = append(all, articles...)
		if len(articles) < c.pageSize {
			break
		}
	}

	return all, nil
}

func (c *NewsAPIClient) fetchPage(ctx context.Context, page int) ([]Article, error) {
	reqURL := c.pageURL(page)

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		slog.Warn("newsapi rate limit hit, cooling down", "cooldown", rateLimitCooldown)
		c.sleep(rateLimitCooldown)
		resp, err = c.get(ctx, reqURL)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi: status %d", resp.StatusCode)
	}

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}
	if raw.Status != "ok" {
		return nil, fmt.Errorf("newsapi: status %q: %s", raw.Status, raw.Message)
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		if item.Title == "" || item.URL == "" {
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
			Source:      item.Source.Name,
			PublishedAt: publishedAt,
		})
	}
	return articles, nil
}

func (c *NewsAPIClient) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	return resp, nil
}

func (c *NewsAPIClient) pageURL(page int) string {
	from := time.Now().AddDate(0, 0, -c.windowDays).Format("2006-01-02")

	q := url.Values{}
	q.Set("q", strings.Join(c.topics, " OR "))
	if len(c.domains) > 0 {
		q.Set("domains", strings.Join(c.domains, ","))
	}
	q.Set("language", c.language)
	q.Set("sortBy", "publishedAt")
	q.Set("from", from)
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("apiKey", c.apiKey)

	return newsAPIEndpoint + "?" + q.Encode()
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}
