// Package app wires the pipeline together and drives one
// fetch→score→select→publish pass.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"positivebot/internal/config"
	"positivebot/internal/ledger"
	"positivebot/internal/llm"
	"positivebot/internal/metrics"
	"positivebot/internal/news"
	"positivebot/internal/ratelimit"
	"positivebot/internal/retry"
	"positivebot/internal/scorer"
	"positivebot/internal/scraper"
	"positivebot/internal/storage"
	"positivebot/internal/summarizer"
	"positivebot/internal/twitter"
)

type App struct {
	cfg    *config.Config
	topics *config.Topics

	sources    []news.Source
	scorer     scorer.Scorer
	summarizer *summarizer.Summarizer
	ledger     *ledger.Ledger
	poster     twitter.Poster
	scraper    *scraper.Scraper

	gemini *llm.GeminiClient // non-nil when Gemini is the provider, for Close
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	topics, err := config.LoadTopics(cfg.TopicsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load topics config: %w", err)
	}

	a := &App{cfg: cfg, topics: topics}

	if cfg.NewsAPIKey != "" {
		a.sources = append(a.sources, news.NewNewsAPIClient(
			cfg.NewsAPIKey, topics.Topics, topics.Domains, cfg.NewsLanguage,
			cfg.NewsWindowDays, cfg.NewsMaxPages, cfg.NewsPageSize, cfg.RequestTimeout))
	}
	if cfg.NewsdataAPIKey != "" {
		a.sources = append(a.sources, news.NewNewsdataClient(
			cfg.NewsdataAPIKey, topics.Topics, "in", cfg.NewsLanguage,
			cfg.NewsMaxPages, cfg.RequestTimeout))
	}
	if len(topics.Feeds) > 0 {
		a.sources = append(a.sources, news.NewRSSSource(topics.Feeds))
	}

	var llmClient llm.Client
	switch cfg.LLMProvider {
	case "gemini":
		gc, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		a.gemini = gc
		llmClient = gc
	default:
		llmClient = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	}

	limiter := ratelimit.New(cfg.MaxLLMRequests)

	if cfg.ScorerStrategy == "lexical" {
		a.scorer = scorer.NewLexicalScorer()
	} else {
		a.scorer = scorer.NewModelScorer(llmClient, limiter, topics.Topics[0])
	}

	a.summarizer = summarizer.New(llmClient, limiter, retry.RetryConfig{
		MaxAttempts: cfg.SummaryRetries,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	})

	var store storage.Store
	var ledgerKey string
	if cfg.AzureConnectionString != "" {
		store, err = storage.NewAzureStore(cfg.AzureConnectionString, cfg.LedgerContainer)
		if err != nil {
			return nil, err
		}
		ledgerKey = cfg.LedgerBlobName
	} else {
		slog.Info("no blob storage configured, using local ledger file", "path", cfg.LedgerFilePath)
		store = storage.NewFileStore(".")
		ledgerKey = cfg.LedgerFilePath
	}
	a.ledger = ledger.New(store, ledgerKey, llmClient, cfg.SimilarityThreshold)

	a.poster = twitter.NewClient(twitter.Credentials{
		ConsumerKey:    cfg.TwitterConsumerKey,
		ConsumerSecret: cfg.TwitterConsumerSecret,
		AccessToken:    cfg.TwitterAccessToken,
		AccessSecret:   cfg.TwitterAccessSecret,
	}, cfg.RequestTimeout, retry.RetryConfig{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
	})

	if cfg.ScrapeFullText {
		a.scraper = scraper.New()
	}

	return a, nil
}

func (a *App) Close() {
	if a.gemini != nil {
		a.gemini.Close()
	}
}

// Run performs one pipeline pass. It never propagates a fault to the
// invoker: finding nothing to post is a successful run, and unexpected
// panics are caught and logged.
func (a *App) Run(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		metrics.Global.RecordRun(time.Since(start))
		if r := recover(); r != nil {
			slog.Error("run panicked", "panic", r)
			metrics.Global.SetError(fmt.Sprintf("panic: %v", r))
			err = nil
		}
	}()

	articles := news.FetchAll(ctx, a.sources, func(name string, ferr error) {
		slog.Error("news source failed", "source", name, "error", ferr)
	})
	metrics.Global.AddArticlesFetched(len(articles))
	slog.Info("articles fetched", "count", len(articles))
	if len(articles) == 0 {
		slog.Warn("no articles fetched, nothing to do")
		return nil
	}

	candidates := scorer.Select(ctx, articles, a.scorer,
		a.cfg.SentimentThreshold, a.cfg.RelevanceThreshold)
	metrics.Global.AddCandidatesSelected(len(candidates))
	if len(candidates) == 0 {
		slog.Info("no qualifying candidates found")
		return nil
	}

	for _, c := range candidates {
		if a.publish(ctx, c) {
			metrics.Global.IncrementThreadsPublished()
			return nil
		}
	}

	slog.Info("walked the whole candidate queue without publishing")
	return nil
}

// publish attempts one candidate end to end. Returns true on success so
// the driver stops; any failure moves on to the next-ranked candidate.
func (a *App) publish(ctx context.Context, c scorer.Candidate) bool {
	article := c.Article

	if a.ledger.IsDuplicate(ctx, article.Text()) {
		slog.Info("skipping duplicate candidate", "title", article.Title)
		metrics.Global.IncrementDuplicatesSkipped()
		return false
	}

	description := article.Description
	if a.scraper != nil {
		if body, err := a.scraper.ExtractText(ctx, article.URL); err == nil {
			description = body
		} else {
			slog.Debug("full-text extraction failed, using description", "url", article.URL, "error", err)
		}
	}

	summary, err := a.summarizer.Summarize(ctx, article.Title, description, a.cfg.SummaryTargetLength)
	if err != nil {
		slog.Error("summarization failed, trying next candidate", "title", article.Title, "error", err)
		metrics.Global.IncrementSummaryFailures()
		return false
	}

	tweetID, err := twitter.PostThread(ctx, a.poster, summary, article.URL, a.topics.Hashtags)
	if err != nil {
		slog.Error("posting failed, trying next candidate", "title", article.Title, "error", err)
		return false
	}
	metrics.Global.IncrementTweetsPosted()

	// Record only after the full thread went out. A chain that aborted
	// mid-thread leaves no entry and may partially repeat on a later run.
	if err := a.ledger.Save(ctx, summary); err != nil {
		slog.Error("failed to persist ledger entry", "error", err)
	}

	slog.Info("published", "title", article.Title, "tweet_id", tweetID)
	return true
}
