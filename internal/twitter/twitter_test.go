package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"positivebot/internal/retry"
)

func testClient(srv *httptest.Server, attempts int) *Client {
	return &Client{
		httpClient: srv.Client(),
		endpoint:   srv.URL,
		retry:      retry.RetryConfig{MaxAttempts: attempts, Delay: time.Millisecond},
	}
}

func TestCreateTweet(t *testing.T) {
	var got createTweetRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"id": "1234567890", "text": got.Text},
		})
	}))
	defer srv.Close()

	id, err := testClient(srv, 1).CreateTweet(context.Background(), "hello world", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "1234567890" {
		t.Errorf("id: got %q", id)
	}
	if got.Text != "hello world" {
		t.Errorf("text: got %q", got.Text)
	}
	if got.Reply != nil {
		t.Errorf("expected no reply ref, got %+v", got.Reply)
	}
}

func TestCreateTweetReply(t *testing.T) {
	var got createTweetRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"id": "2"},
		})
	}))
	defer srv.Close()

	if _, err := testClient(srv, 1).CreateTweet(context.Background(), "part two", "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Reply == nil || got.Reply.InReplyToTweetID != "1" {
		t.Errorf("expected reply to tweet 1, got %+v", got.Reply)
	}
}

func TestCreateTweetRetriesTransientFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]string{"id": "3"},
		})
	}))
	defer srv.Close()

	id, err := testClient(srv, 3).CreateTweet(context.Background(), "flaky", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "3" {
		t.Errorf("id: got %q", id)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestCreateTweetGivesUpAfterRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := testClient(srv, 2).CreateTweet(context.Background(), "rejected", ""); err == nil {
		t.Fatal("expected an error")
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestCreateTweetMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	if _, err := testClient(srv, 1).CreateTweet(context.Background(), "no id", ""); err == nil {
		t.Fatal("expected an error when the response has no tweet id")
	}
}
