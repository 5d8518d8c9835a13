// Package twitter posts tweets through the v2 API and splits long
// summaries into reply threads.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"positivebot/internal/retry"
)

const createTweetEndpoint = "https://api.twitter.com/2/tweets"

type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Client posts tweets with OAuth 1.0a user-context auth.
type Client struct {
	httpClient *http.Client
	endpoint   string
	retry      retry.RetryConfig
}

func NewClient(creds Credentials, timeout time.Duration, retryCfg retry.RetryConfig) *Client {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	httpClient := config.Client(oauth1.NoContext, token)
	httpClient.Timeout = timeout

	return &Client{httpClient: httpClient, endpoint: createTweetEndpoint, retry: retryCfg}
}

type createTweetRequest struct {
	Text  string    `json:"text"`
	Reply *replyRef `json:"reply,omitempty"`
}

type replyRef struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// CreateTweet posts one tweet, optionally as a reply, and returns its id.
// Transient failures are retried per the configured policy. The caller is
// responsible for keeping text within the platform limit.
func (c *Client) CreateTweet(ctx context.Context, text, inReplyTo string) (string, error) {
	payload := createTweetRequest{Text: text}
	if inReplyTo != "" {
		payload.Reply = &replyRef{InReplyToTweetID: inReplyTo}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal tweet: %w", err)
	}

	if c.retry.MaxAttempts <= 1 {
		return c.postTweet(ctx, body)
	}

	var id string
	err = retry.WithRetry(ctx, c.retry, func() error {
		var perr error
		id, perr = c.postTweet(ctx, body)
		return perr
	})
	return id, err
}

func (c *Client) postTweet(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twitter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("twitter API error: status %d: %s", resp.StatusCode, detail)
	}

	var parsed createTweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode tweet response: %w", err)
	}
	if parsed.Data.ID == "" {
		return "", fmt.Errorf("twitter API returned no tweet id")
	}
	return parsed.Data.ID, nil
}
